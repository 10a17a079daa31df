package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
)

// RemoveLinks keeps the text of markdown links and drops bare URLs.
func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders Reddit markdown and flattens the result to a
// single line of plain text.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := htmlTagPattern.ReplaceAllString(string(rendered), " ")
	plain = html.UnescapeString(plain)
	return strings.Join(strings.Fields(plain), " ")
}
