package models

import (
	"strings"
	"time"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortScore     SortKey = "score"
	SortComments  SortKey = "comments"
	SortDate      SortKey = "date"
	SortSentiment SortKey = "sentiment"
)

// FilterCriteria is rebuilt from the dashboard controls on every interaction.
// Start and End are calendar days in UTC and both ends are inclusive; a zero
// value leaves that side unbounded. A nil MinScore keeps every score.
type FilterCriteria struct {
	Start    time.Time `json:"start,omitempty"`
	End      time.Time `json:"end,omitempty" validate:"omitempty,gtefield=Start"`
	MinScore *int      `json:"min_score,omitempty"`
	Sector   string    `json:"sector,omitempty" validate:"max=64"`
	Keywords []string  `json:"keywords,omitempty" validate:"omitempty,max=50,dive,required,max=64"`
	Sort     SortKey   `json:"sort,omitempty" validate:"omitempty,oneof=score comments date sentiment"`
	Limit    int       `json:"limit,omitempty" validate:"gte=0,lte=10000"`
}

// FetchRequest carries the live acquisition parameters.
type FetchRequest struct {
	Keyword   string `json:"keyword" validate:"required,max=512"`
	Subreddit string `json:"subreddit" validate:"omitempty,max=200,excludesall=/?#& "`
	Limit     int    `json:"limit" validate:"gte=1,lte=1000"`
}

const (
	DefaultSubreddit  = "all"
	DefaultFetchLimit = 100
)

func (r FetchRequest) WithDefaults() FetchRequest {
	r.Keyword = strings.TrimSpace(r.Keyword)
	r.Subreddit = strings.TrimPrefix(strings.TrimSpace(r.Subreddit), "r/")
	if r.Subreddit == "" {
		r.Subreddit = DefaultSubreddit
	}
	if r.Limit == 0 {
		r.Limit = DefaultFetchLimit
	}
	return r
}
