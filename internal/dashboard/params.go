package dashboard

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
)

const dateLayout = "2006-01-02"

// parseCriteria reads the filter controls from query parameters.
func parseCriteria(q url.Values) (models.FilterCriteria, error) {
	var c models.FilterCriteria
	var err error

	if c.Start, err = parseDate(q, "start"); err != nil {
		return c, err
	}
	if c.End, err = parseDate(q, "end"); err != nil {
		return c, err
	}
	if raw := strings.TrimSpace(q.Get("min_score")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return c, apperrors.Validation("Filter", "min_score must be a whole number", err)
		}
		c.MinScore = &v
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if c.Limit, err = strconv.Atoi(raw); err != nil {
			return c, apperrors.Validation("Filter", "limit must be a whole number", err)
		}
	}
	c.Sector = strings.TrimSpace(q.Get("sector"))
	c.Sort = models.SortKey(strings.ToLower(strings.TrimSpace(q.Get("sort"))))
	c.Keywords = splitList(q.Get("keywords"))
	return c, nil
}

func parseDate(q url.Values, key string) (time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.Validation("Filter", fmt.Sprintf("%s must be a date like 2024-01-31", key), err)
	}
	return t, nil
}

func parseGranularity(q url.Values) (models.Granularity, error) {
	switch g := models.Granularity(strings.ToLower(q.Get("granularity"))); g {
	case "", models.GranularityDay:
		return models.GranularityDay, nil
	case models.GranularityWeek:
		return g, nil
	}
	return "", apperrors.Validation("Filter", "granularity must be day or week", nil)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
