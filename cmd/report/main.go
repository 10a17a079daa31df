// Command report fetches or loads posts, labels them and writes one export
// without starting the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spacesedan/sentiboard/config"
	"github.com/spacesedan/sentiboard/internal/acquisition"
	"github.com/spacesedan/sentiboard/internal/aggregation"
	"github.com/spacesedan/sentiboard/internal/clients"
	"github.com/spacesedan/sentiboard/internal/export"
	"github.com/spacesedan/sentiboard/internal/logging"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
)

func main() {
	var (
		keyword   = flag.String("keyword", "", "Search keyword for a live Reddit fetch")
		subreddit = flag.String("subreddit", models.DefaultSubreddit, "Subreddit to search")
		limit     = flag.Int("limit", models.DefaultFetchLimit, "Number of posts to fetch (1-1000)")
		csvPath   = flag.String("csv", "", "Load posts from a CSV file instead of Reddit")
		fromDate  = flag.String("from", "", "First day to keep (YYYY-MM-DD)")
		toDate    = flag.String("to", "", "Last day to keep (YYYY-MM-DD)")
		minScore  = flag.Int("min-score", 0, "Minimum post score, applied only when set")
		sector    = flag.String("sector", "", "Sector preset to filter by")
		keywords  = flag.String("keywords", "", "Comma separated extra keywords")
		sortBy    = flag.String("sort", "", "Sort by score, comments, date or sentiment")
		format    = flag.String("format", "csv", "Export format: csv, json or pdf")
		out       = flag.String("out", "", "Output file (defaults to stdout)")
	)
	flag.Parse()

	config.LoadEnv(config.AppEnv(os.Getenv))
	cfg, err := config.Load()
	if err != nil {
		fail("Failed to load config", err)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exportFormat, err := export.ParseFormat(*format)
	if err != nil {
		fail("Invalid format", err)
	}

	presets := aggregation.DefaultPresets()
	if cfg.SectorPresetsFile != "" {
		if presets, err = aggregation.LoadPresets(cfg.SectorPresetsFile); err != nil {
			fail("Failed to load sector presets", err)
		}
	}

	criteria := models.FilterCriteria{
		Sector: *sector,
		Sort:   models.SortKey(strings.ToLower(*sortBy)),
	}
	if criteria.Start, err = parseDay(*fromDate); err != nil {
		fail("Invalid start date", err)
	}
	if criteria.End, err = parseDay(*toDate); err != nil {
		fail("Invalid end date", err)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "min-score" {
			criteria.MinScore = minScore
		}
	})
	for _, k := range strings.Split(*keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			criteria.Keywords = append(criteria.Keywords, k)
		}
	}

	labeler, err := sentiment.NewLabeler(cfg.Sentiment)
	if err != nil {
		fail("Failed to create labeler", err)
	}

	var posts []models.LabeledPost
	term := *keyword
	switch {
	case *csvPath != "":
		posts, err = loadFile(ctx, labeler, *csvPath, cfg.MaxUploadBytes)
		if term == "" {
			term = acquisition.UploadedKeyword
		}
	case *keyword != "":
		posts, err = fetchReddit(ctx, cfg, labeler, models.FetchRequest{Keyword: *keyword, Subreddit: *subreddit, Limit: *limit})
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fail("Failed to acquire posts", err)
	}

	view, err := aggregation.Apply(posts, criteria, presets)
	if err != nil {
		fail("Invalid filters", err)
	}
	summary := aggregation.Summarize(view, term)
	slog.Info("Report ready",
		slog.Int("posts", summary.Total),
		slog.Int("collection", summary.CollectionLen),
		slog.Float64("mean_polarity", summary.MeanPolarity))

	report := export.Report{
		View:            view,
		Summary:         summary,
		Recommendations: aggregation.Recommendations(summary),
		GeneratedAt:     time.Now(),
	}
	err = writeOutput(*out, os.Stdout, func(w io.Writer) error {
		return export.Write(w, exportFormat, report)
	})
	if err != nil {
		fail("Export failed", err)
	}
}

// writeOutput runs write against stdout, or against path when set. A file
// left behind by a failed write is removed so no partial report survives.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
		if err != nil {
			if rmErr := os.Remove(path); rmErr != nil {
				slog.Warn("Failed to remove partial output", slog.String("path", path), slog.Any("error", rmErr))
			}
		}
	}()
	return write(f)
}

func fetchReddit(ctx context.Context, cfg *config.Config, labeler sentiment.Labeler, req models.FetchRequest) ([]models.LabeledPost, error) {
	if cfg.Reddit.ClientID == "" || cfg.Reddit.ClientSecret == "" {
		return nil, fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET must be set for a live fetch")
	}
	reddit := clients.NewRedditClient(clients.RedditClientOptions{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
	})
	posts, err := acquisition.NewFetcher(reddit, cfg.Reddit.FetchTimeout).Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return sentiment.LabelPosts(ctx, labeler, posts), nil
}

func loadFile(ctx context.Context, labeler sentiment.Labeler, path string, maxBytes int64) ([]models.LabeledPost, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := acquisition.LoadCSV(f, maxBytes)
	if err != nil {
		return nil, err
	}
	return acquisition.LabelRows(ctx, labeler, rows), nil
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
