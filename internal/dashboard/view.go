package dashboard

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spacesedan/sentiboard/internal/acquisition"
	"github.com/spacesedan/sentiboard/internal/aggregation"
	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/export"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/monitoring"
	"github.com/spacesedan/sentiboard/internal/session"
)

type viewResponse struct {
	Keyword   string                `json:"keyword"`
	Source    string                `json:"source"`
	Summary   models.Summary        `json:"summary"`
	Trend     []models.TrendBucket  `json:"trend"`
	Histogram []models.HistogramBin `json:"histogram"`
	Posts     []models.LabeledPost  `json:"posts"`
}

// currentView applies the request's filters to the session collection.
func (s *Server) currentView(w http.ResponseWriter, r *http.Request) (*session.Session, models.AggregateView, error) {
	sess := s.sessionFor(w, r)
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		return sess, models.AggregateView{}, err
	}
	view, err := aggregation.Apply(sess.Posts(), criteria, s.opts.Presets)
	return sess, view, err
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	sess, view, err := s.currentView(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	granularity, err := parseGranularity(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	posts := view.Posts
	if posts == nil {
		posts = []models.LabeledPost{}
	}
	writeJSON(w, http.StatusOK, viewResponse{
		Keyword:   sess.Keyword(),
		Source:    sess.Source(),
		Summary:   aggregation.Summarize(view, sess.Keyword()),
		Trend:     aggregation.Trend(view.Posts, granularity),
		Histogram: aggregation.Histogram(view.Posts, aggregation.DefaultHistogramBins),
		Posts:     posts,
	})
}

func (s *Server) sectors(w http.ResponseWriter, r *http.Request) {
	sess, view, err := s.currentView(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	term := r.URL.Query().Get("term")
	if term == "" {
		term = sess.Keyword()
	}
	if term == acquisition.UploadedKeyword {
		term = ""
	}
	stats := aggregation.SectorBreakdown(view.Posts, s.opts.Presets, term)
	if stats == nil {
		stats = []models.SectorStat{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"term":    term,
		"sectors": stats,
		"presets": s.opts.Presets.Sectors,
	})
}

func (s *Server) focus(w http.ResponseWriter, r *http.Request) {
	_, view, err := s.currentView(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	keywords := splitList(q.Get("focus_keywords"))
	if name := q.Get("list"); name != "" {
		list, ok := s.opts.Presets.FocusList(name)
		if !ok {
			writeError(w, apperrors.Validation("Focus", "unknown focus list "+strconv.Quote(name), nil))
			return
		}
		keywords = append(keywords, list.Keywords...)
	}
	if len(keywords) == 0 {
		writeError(w, apperrors.Validation("Focus", "choose a focus list or enter focus keywords", nil))
		return
	}

	report := aggregation.Focus(view.Posts, keywords, q.Get("term"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matched": report != nil,
		"report":  report,
	})
}

func (s *Server) exportView(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	sess, view, err := s.currentView(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	now := s.now()
	summary := aggregation.Summarize(view, sess.Keyword())
	report := export.Report{
		View:            view,
		Summary:         summary,
		Recommendations: aggregation.Recommendations(summary),
		GeneratedAt:     now,
	}

	var buf bytes.Buffer
	err = export.Write(&buf, format, report)
	s.opts.Metrics.Exports.WithLabelValues(string(format), monitoring.Result(err)).Inc()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName(now)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
