package aggregation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// keywordMatcher reports whether text contains any keyword at the start of a
// word, ignoring case. "touris" matches "tourism" but "ai" does not match "said".
type keywordMatcher struct {
	keywords []string
}

func newKeywordMatcher(keywords []string) keywordMatcher {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return keywordMatcher{keywords: lowered}
}

func (m keywordMatcher) empty() bool {
	return len(m.keywords) == 0
}

func (m keywordMatcher) matches(text string) bool {
	lowered := strings.ToLower(text)
	for _, k := range m.keywords {
		if containsAtWordStart(lowered, k) {
			return true
		}
	}
	return false
}

func containsAtWordStart(text, keyword string) bool {
	offset := 0
	for {
		i := strings.Index(text[offset:], keyword)
		if i < 0 {
			return false
		}
		pos := offset + i
		if pos == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:pos])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) && !unicode.Is(unicode.Mn, prev) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		offset = pos + size
	}
}

// MatchesAny reports whether text contains any of keywords at a word start.
func MatchesAny(text string, keywords []string) bool {
	return newKeywordMatcher(keywords).matches(text)
}
