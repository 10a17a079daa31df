package aggregation

import (
	"sort"
	"strings"
	"unicode"

	"github.com/spacesedan/sentiboard/internal/models"
)

const (
	DefaultTopKeywords = 10
	focusSampleSize    = 3
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "is": {}, "it": {}, "that": {}, "this": {},
	"for": {}, "with": {}, "are": {}, "was": {}, "you": {}, "but": {}, "not": {}, "have": {}, "has": {},
	"from": {}, "they": {}, "what": {}, "about": {}, "just": {}, "can": {}, "your": {}, "any": {},
	"ال": {}, "في": {}, "من": {}, "على": {}, "أن": {}, "هذا": {},
}

// SectorBreakdown counts the posts matching each sector and their mean
// polarity. When searchTerm is set a post must also mention it. Sectors with
// no matches are omitted; order follows the preset list.
func SectorBreakdown(posts []models.LabeledPost, presets Presets, searchTerm string) []models.SectorStat {
	term := newKeywordMatcher([]string{searchTerm})

	var stats []models.SectorStat
	for _, sector := range presets.Sectors {
		matcher := newKeywordMatcher(sector.Keywords)
		var count int
		var sum float64
		for _, p := range posts {
			text := p.Post.Text()
			if !matcher.matches(text) {
				continue
			}
			if !term.empty() && !term.matches(text) {
				continue
			}
			count++
			sum += p.Sentiment.Score
		}
		if count == 0 {
			continue
		}
		stats = append(stats, models.SectorStat{
			Sector:       sector.Name,
			Posts:        count,
			MeanPolarity: sum / float64(count),
		})
	}
	return stats
}

// Focus narrows posts to those mentioning searchTerm (when set) and any of
// keywords, then reports their count, mean polarity, most frequent words and
// the first few samples. A nil report means nothing matched.
func Focus(posts []models.LabeledPost, keywords []string, searchTerm string) *models.FocusReport {
	term := newKeywordMatcher([]string{searchTerm})
	matcher := newKeywordMatcher(keywords)

	var matched []models.LabeledPost
	var texts []string
	var sum float64
	for _, p := range posts {
		text := p.Post.Text()
		if !term.empty() && !term.matches(text) {
			continue
		}
		if !matcher.empty() && !matcher.matches(text) {
			continue
		}
		matched = append(matched, p)
		texts = append(texts, text)
		sum += p.Sentiment.Score
	}
	if len(matched) == 0 {
		return nil
	}

	samples := matched
	if len(samples) > focusSampleSize {
		samples = samples[:focusSampleSize]
	}
	return &models.FocusReport{
		Keywords:     keywords,
		PostCount:    len(matched),
		MeanPolarity: sum / float64(len(matched)),
		TopKeywords:  TopKeywords(texts, DefaultTopKeywords),
		Samples:      append([]models.LabeledPost(nil), samples...),
	}
}

// TopKeywords returns the n most frequent words longer than two characters,
// stop words excluded. Ties are broken by first appearance.
func TopKeywords(texts []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
		})
		for _, w := range words {
			if len([]rune(w)) <= 2 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
