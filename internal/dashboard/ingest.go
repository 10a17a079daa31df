package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/sentiboard/internal/acquisition"
	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/monitoring"
	"github.com/spacesedan/sentiboard/internal/sentiment"
	"github.com/spacesedan/sentiboard/internal/session"
)

type ingestResponse struct {
	Keyword string `json:"keyword"`
	Source  string `json:"source"`
	Posts   int    `json:"posts"`
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess := s.sessionFor(w, r)

	req, err := parseFetchRequest(r)
	if err == nil && s.opts.Fetcher == nil {
		err = apperrors.Acquisition("Fetch", "Reddit API credentials are not configured", nil)
	}

	var posts []models.Post
	if err == nil {
		posts, err = s.opts.Fetcher.Fetch(r.Context(), req)
	}
	s.opts.Metrics.Acquisitions.WithLabelValues("reddit", monitoring.Result(err)).Inc()
	if err != nil {
		writeError(w, err)
		return
	}

	labeled := sentiment.LabelPosts(r.Context(), s.opts.Labeler, posts)
	s.store(r.Context(), sess, labeled, strings.TrimSpace(req.Keyword), "reddit")
	s.opts.Metrics.FetchDuration.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, ingestResponse{Keyword: sess.Keyword(), Source: "reddit", Posts: len(labeled)})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+64<<10)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperrors.Validation("Upload", "file is too large", err)
		} else {
			err = apperrors.Validation("Upload", "no file was uploaded", err)
		}
		s.opts.Metrics.Acquisitions.WithLabelValues("upload", monitoring.Result(err)).Inc()
		writeError(w, err)
		return
	}
	defer file.Close()

	rows, err := acquisition.LoadCSV(file, s.opts.MaxUploadBytes)
	s.opts.Metrics.Acquisitions.WithLabelValues("upload", monitoring.Result(err)).Inc()
	if err != nil {
		writeError(w, err)
		return
	}

	labeled := acquisition.LabelRows(r.Context(), s.opts.Labeler, rows)
	keyword := strings.TrimSpace(r.FormValue("keyword"))
	if keyword == "" {
		keyword = acquisition.UploadedKeyword
	}
	s.store(r.Context(), sess, labeled, keyword, "upload")

	writeJSON(w, http.StatusOK, ingestResponse{Keyword: keyword, Source: "upload", Posts: len(labeled)})
}

// store replaces the session collection and hands the posts to the archive.
// Archive failures are logged by the archiver and never reach the user.
func (s *Server) store(ctx context.Context, sess *session.Session, posts []models.LabeledPost, keyword, source string) {
	sess.Replace(posts, keyword, source)
	for _, p := range posts {
		s.opts.Metrics.PostsLabeled.WithLabelValues(string(p.Sentiment.Label), string(p.Sentiment.Source)).Inc()
	}
	slog.Info("[Dashboard] Session collection replaced",
		slog.String("session_id", sess.ID),
		slog.String("source", source),
		slog.Int("posts", len(posts)))

	_ = s.opts.Archiver.Archive(context.WithoutCancel(ctx), posts)
}

func parseFetchRequest(r *http.Request) (models.FetchRequest, error) {
	var req models.FetchRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, apperrors.Validation("Fetch", "request body is not valid JSON", err)
		}
		return req, nil
	}

	req.Keyword = r.FormValue("keyword")
	req.Subreddit = r.FormValue("subreddit")
	if raw := r.FormValue("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return req, apperrors.Validation("Fetch", "limit must be a whole number", err)
		}
		req.Limit = limit
	}
	return req, nil
}
