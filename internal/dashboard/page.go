package dashboard

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/spacesedan/sentiboard/internal/aggregation"
	"github.com/spacesedan/sentiboard/internal/models"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Keyword      string
	Source       string
	PostCount    int
	RedditReady  bool
	Sectors      []aggregation.Sector
	Focus        []aggregation.Sector
	DefaultLimit int
	MaxLimit     int
	SortKeys     []models.SortKey
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	data := pageData{
		Keyword:      sess.Keyword(),
		Source:       sess.Source(),
		PostCount:    len(sess.Posts()),
		RedditReady:  s.opts.Fetcher != nil,
		Sectors:      s.opts.Presets.Sectors,
		Focus:        s.opts.Presets.Focus,
		DefaultLimit: models.DefaultFetchLimit,
		MaxLimit:     1000,
		SortKeys:     []models.SortKey{models.SortScore, models.SortComments, models.SortDate, models.SortSentiment},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		slog.Error("[Dashboard] Failed to render page", slog.String("error", err.Error()))
	}
}
