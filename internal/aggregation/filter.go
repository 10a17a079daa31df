// Package aggregation derives read-only views, trends and statistics from a
// labeled post collection. Every function here is pure.
package aggregation

import (
	"fmt"
	"sort"
	"time"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/utils"
)

// Apply filters and sorts posts into a view. Keyword sets (sector and extra
// keywords) are applied first, then the date range and minimum score, then a
// stable descending sort and the limit. posts is never modified.
func Apply(posts []models.LabeledPost, criteria models.FilterCriteria, presets Presets) (models.AggregateView, error) {
	if err := ValidateCriteria(criteria, presets); err != nil {
		return models.AggregateView{}, err
	}

	var sectorMatcher keywordMatcher
	if criteria.Sector != "" {
		sector, _ := presets.Sector(criteria.Sector)
		sectorMatcher = newKeywordMatcher(sector.Keywords)
	}
	extraMatcher := newKeywordMatcher(criteria.Keywords)

	start, end := dayStart(criteria.Start), dayStart(criteria.End)

	filtered := make([]models.LabeledPost, 0, len(posts))
	for _, p := range posts {
		text := p.Post.Text()
		if !sectorMatcher.empty() && !sectorMatcher.matches(text) {
			continue
		}
		if !extraMatcher.empty() && !extraMatcher.matches(text) {
			continue
		}
		day := dayStart(p.CreatedAt)
		if !start.IsZero() && day.Before(start) {
			continue
		}
		if !end.IsZero() && day.After(end) {
			continue
		}
		if criteria.MinScore != nil && p.Score < *criteria.MinScore {
			continue
		}
		filtered = append(filtered, p)
	}

	if less := descending(criteria.Sort); less != nil {
		sort.SliceStable(filtered, func(i, j int) bool {
			return less(filtered[i], filtered[j])
		})
	}

	if criteria.Limit > 0 && len(filtered) > criteria.Limit {
		filtered = filtered[:criteria.Limit]
	}

	return models.AggregateView{
		Criteria: criteria,
		Posts:    filtered,
		Total:    len(posts),
	}, nil
}

// ValidateCriteria checks field constraints and that a named sector exists.
func ValidateCriteria(criteria models.FilterCriteria, presets Presets) error {
	if err := utils.ValidateStruct(criteria); err != nil {
		return apperrors.Validation("Filter", err.Error(), nil)
	}
	if criteria.Sector != "" {
		if _, ok := presets.Sector(criteria.Sector); !ok {
			return apperrors.Validation("Filter", fmt.Sprintf("unknown sector %q", criteria.Sector), nil)
		}
	}
	return nil
}

func descending(key models.SortKey) func(a, b models.LabeledPost) bool {
	switch key {
	case models.SortScore:
		return func(a, b models.LabeledPost) bool { return a.Score > b.Score }
	case models.SortComments:
		return func(a, b models.LabeledPost) bool { return a.NumComments > b.NumComments }
	case models.SortDate:
		return func(a, b models.LabeledPost) bool { return a.CreatedAt.After(b.CreatedAt) }
	case models.SortSentiment:
		return func(a, b models.LabeledPost) bool { return a.Sentiment.Score > b.Sentiment.Score }
	default:
		return nil
	}
}

func dayStart(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
