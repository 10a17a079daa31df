// Package archive optionally persists labeled posts after an ingestion.
// Archiving never blocks or fails the dashboard: errors are logged and
// reported back only for observability.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/sentiboard/internal/models"
)

type Sink interface {
	Name() string
	Archive(ctx context.Context, posts []models.LabeledPost) error
}

// Deduper remembers which posts were archived recently.
type Deduper interface {
	IsPostProcessed(ctx context.Context, id string) (bool, error)
	MarkProcessed(ctx context.Context, ids ...string) error
}

// Observer receives one call per sink write.
type Observer func(sink string, err error)

type Archiver struct {
	sinks   []Sink
	dedupe  Deduper
	timeout time.Duration
	observe Observer
}

// NewArchiver returns nil when there are no sinks; a nil *Archiver is a valid no-op.
func NewArchiver(sinks []Sink, dedupe Deduper, timeout time.Duration, observe Observer) *Archiver {
	if len(sinks) == 0 {
		return nil
	}
	return &Archiver{sinks: sinks, dedupe: dedupe, timeout: timeout, observe: observe}
}

// Archive writes posts not archived before to every sink, one attempt each.
// Posts are marked as archived only when every sink accepted them.
func (a *Archiver) Archive(ctx context.Context, posts []models.LabeledPost) error {
	if a == nil || len(posts) == 0 {
		return nil
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	fresh := a.unseen(ctx, posts)
	if len(fresh) == 0 {
		slog.Debug("[Archiver] All posts already archived", slog.Int("count", len(posts)))
		return nil
	}

	var errs []error
	for _, sink := range a.sinks {
		err := sink.Archive(ctx, fresh)
		if a.observe != nil {
			a.observe(sink.Name(), err)
		}
		if err != nil {
			slog.Error("[Archiver] Sink write failed",
				slog.String("sink", sink.Name()),
				slog.Int("count", len(fresh)),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if a.dedupe != nil {
		ids := make([]string, 0, len(fresh))
		for _, p := range fresh {
			ids = append(ids, p.ID)
		}
		if err := a.dedupe.MarkProcessed(ctx, ids...); err != nil {
			slog.Warn("[Archiver] Failed to record archived posts", slog.String("error", err.Error()))
		}
	}

	slog.Info("[Archiver] Archived posts",
		slog.Int("archived", len(fresh)),
		slog.Int("skipped", len(posts)-len(fresh)))
	return nil
}

func (a *Archiver) unseen(ctx context.Context, posts []models.LabeledPost) []models.LabeledPost {
	if a.dedupe == nil {
		return posts
	}
	fresh := make([]models.LabeledPost, 0, len(posts))
	for _, p := range posts {
		seen, err := a.dedupe.IsPostProcessed(ctx, p.ID)
		if err != nil {
			slog.Warn("[Archiver] Dedupe lookup failed, archiving anyway",
				slog.String("post_id", p.ID),
				slog.String("error", err.Error()))
		}
		if !seen {
			fresh = append(fresh, p)
		}
	}
	return fresh
}
