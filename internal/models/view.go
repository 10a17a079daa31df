package models

import "time"

// AggregateView is a read-only projection of a session's posts. It is
// recomputed for every interaction and never modified in place.
type AggregateView struct {
	Criteria FilterCriteria `json:"criteria"`
	Posts    []LabeledPost  `json:"posts"`
	Total    int            `json:"total"`
}

type LabelCount struct {
	Label   Label   `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type Summary struct {
	Keyword       string       `json:"keyword"`
	Total         int          `json:"total"`
	Labels        []LabelCount `json:"labels"`
	MeanPolarity  float64      `json:"mean_polarity"`
	MeanScore     float64      `json:"mean_score"`
	Earliest      time.Time    `json:"earliest,omitempty"`
	Latest        time.Time    `json:"latest,omitempty"`
	CollectionLen int          `json:"collection_size"`
}

// Count returns the number of posts with label l.
func (s Summary) Count(l Label) int {
	for _, lc := range s.Labels {
		if lc.Label == l {
			return lc.Count
		}
	}
	return 0
}

type Granularity string

const (
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

type PolarityStat struct {
	Count        int     `json:"count"`
	MeanPolarity float64 `json:"mean_polarity"`
}

type TrendBucket struct {
	Start   time.Time              `json:"start"`
	Overall PolarityStat           `json:"overall"`
	ByLabel map[Label]PolarityStat `json:"by_label"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type SectorStat struct {
	Sector       string  `json:"sector"`
	Posts        int     `json:"posts"`
	MeanPolarity float64 `json:"mean_polarity"`
}

type FocusReport struct {
	Keywords     []string      `json:"keywords"`
	PostCount    int           `json:"post_count"`
	MeanPolarity float64       `json:"mean_polarity"`
	TopKeywords  []string      `json:"top_keywords"`
	Samples      []LabeledPost `json:"samples"`
}
