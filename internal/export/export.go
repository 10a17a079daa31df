// Package export serializes a view to CSV, JSON or a printable PDF report,
// and parses the CSV and JSON forms back.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// Columns is the fixed field order shared by the CSV header and JSON objects.
var Columns = []string{
	"id", "title", "text", "author", "score", "num_comments", "created_at",
	"subreddit", "keyword", "url", "sentiment_label", "sentiment_score",
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	}
	return "", apperrors.Validation("Export", fmt.Sprintf("unsupported export format %q", s), nil)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// FileName is the download name for an export generated at t.
func (f Format) FileName(t time.Time) string {
	t = t.UTC()
	if f == FormatCSV {
		return fmt.Sprintf("reddit_sentiment_%s.csv", t.Format("2006-01-02"))
	}
	return fmt.Sprintf("reddit_report_%s.%s", t.Format("20060102_1504"), f)
}

// Report is everything a PDF needs; CSV and JSON only use View.Posts.
type Report struct {
	View            models.AggregateView
	Summary         models.Summary
	Recommendations []string
	GeneratedAt     time.Time
}

// Write serializes report in the requested format. Failures are export
// errors; the view itself is never touched.
func Write(w io.Writer, format Format, report Report) error {
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(w, report.View.Posts)
	case FormatJSON:
		err = WriteJSON(w, report.View.Posts)
	case FormatPDF:
		err = WritePDF(w, report, PDFOptions{Compress: true})
	default:
		_, err = ParseFormat(string(format))
		return err
	}
	if err != nil {
		slog.Error("[Export] Export failed",
			slog.String("format", string(format)),
			slog.Int("rows", len(report.View.Posts)),
			slog.String("error", err.Error()))
		if apperrors.KindOf(err) == "" {
			return apperrors.Export("Export", fmt.Sprintf("could not write %s", format), err)
		}
		return err
	}
	slog.Info("[Export] Export written",
		slog.String("format", string(format)),
		slog.Int("rows", len(report.View.Posts)))
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatPolarity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toRecord(p models.LabeledPost) []string {
	return []string{
		p.ID,
		p.Title,
		p.Body,
		p.Author,
		strconv.Itoa(p.Score),
		strconv.Itoa(p.NumComments),
		formatTime(p.CreatedAt),
		p.Subreddit,
		p.Keyword,
		p.URL,
		string(p.Sentiment.Label),
		formatPolarity(p.Sentiment.Score),
	}
}

// fromRecord rebuilds a post from values in Columns order.
func fromRecord(values []string) (models.LabeledPost, error) {
	if len(values) != len(Columns) {
		return models.LabeledPost{}, fmt.Errorf("expected %d fields, got %d", len(Columns), len(values))
	}
	score, err := strconv.Atoi(values[4])
	if err != nil {
		return models.LabeledPost{}, fmt.Errorf("score: %w", err)
	}
	numComments, err := strconv.Atoi(values[5])
	if err != nil {
		return models.LabeledPost{}, fmt.Errorf("num_comments: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, values[6])
	if err != nil {
		return models.LabeledPost{}, fmt.Errorf("created_at: %w", err)
	}
	label := models.Label(values[10])
	if !label.Valid() {
		return models.LabeledPost{}, fmt.Errorf("sentiment_label %q is not a known label", values[10])
	}
	polarity, err := strconv.ParseFloat(values[11], 64)
	if err != nil {
		return models.LabeledPost{}, fmt.Errorf("sentiment_score: %w", err)
	}

	return models.LabeledPost{
		Post: models.Post{
			ID:          values[0],
			Title:       values[1],
			Body:        values[2],
			Author:      values[3],
			Score:       score,
			NumComments: numComments,
			CreatedAt:   createdAt.UTC(),
			Subreddit:   values[7],
			Keyword:     values[8],
			URL:         values[9],
		},
		Sentiment: models.SentimentResult{Label: label, Score: polarity},
	}, nil
}
