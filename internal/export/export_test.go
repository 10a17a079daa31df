package export

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
)

type triple struct {
	id    string
	label models.Label
	score float64
}

func triples(posts []models.LabeledPost) []triple {
	out := make([]triple, 0, len(posts))
	for _, p := range posts {
		out = append(out, triple{p.ID, p.Sentiment.Label, p.Sentiment.Score})
	}
	return out
}

func samplePosts() []models.LabeledPost {
	return []models.LabeledPost{
		{
			Post: models.Post{
				ID: "p1", Title: "I love this", Body: "line one\nline \"two\", with comma",
				Author: "gopher", Score: 10, NumComments: 3,
				CreatedAt: time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
				Subreddit: "golang", Keyword: "go", URL: "https://www.reddit.com/r/golang/comments/p1/",
			},
			Sentiment: models.SentimentResult{Label: models.LabelPositive, Score: 0.6369, Source: models.SourceVADER},
		},
		{
			Post: models.Post{
				ID: "p2", Title: "terrible experience", Score: -2,
				CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Subreddit: "rust", Keyword: "go",
			},
			Sentiment: models.SentimentResult{Label: models.LabelNegative, Score: -0.4767, Source: models.SourceVADER},
		},
		{
			Post: models.Post{
				ID: "p3", Title: "Café au lait à Casablanca", Score: 0,
				CreatedAt: time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC),
				Subreddit: "morocco", Keyword: "go",
			},
			Sentiment: models.SentimentResult{Label: models.LabelNeutral, Score: 1.0 / 3.0, Source: models.SourceUpload},
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	posts := samplePosts()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, posts))

	firstLine := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(Columns, ","), firstLine)

	parsed, err := ParseCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, triples(posts), triples(parsed))
	assert.Equal(t, posts[0].Body, parsed[0].Body)
	assert.Equal(t, posts[0].CreatedAt, parsed[0].CreatedAt)
}

func TestJSONRoundTrip(t *testing.T) {
	posts := samplePosts()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, posts))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"id"`), strings.Index(out, `"title"`))
	assert.Less(t, strings.Index(out, `"sentiment_label"`), strings.Index(out, `"sentiment_score"`))

	parsed, err := ParseJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, triples(posts), triples(parsed))
}

func TestEmptyViewExports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, nil))
	parsed, err := ParseCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestPDFContainsEveryRow(t *testing.T) {
	posts := samplePosts()
	posts[0].ID = "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	report := Report{
		View: models.AggregateView{Posts: posts, Total: 5},
		Summary: models.Summary{
			Keyword: "go", Total: 3, CollectionLen: 5,
			Labels: []models.LabelCount{
				{Label: models.LabelPositive, Count: 1, Percent: 33.3},
				{Label: models.LabelNeutral, Count: 1, Percent: 33.3},
				{Label: models.LabelNegative, Count: 1, Percent: 33.3},
			},
			Earliest: posts[0].CreatedAt,
			Latest:   posts[2].CreatedAt,
		},
		Recommendations: []string{"Keep watching."},
		GeneratedAt:     time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, report, PDFOptions{Compress: false}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	for _, p := range posts {
		assert.Contains(t, out, "("+p.ID+")")
		assert.Contains(t, out, "("+string(p.Sentiment.Label)+")")
	}
	assert.Contains(t, out, "Date range: 2024-01-01 to 2024-01-03")
}

func TestPDFWrapsLongIDs(t *testing.T) {
	posts := samplePosts()[:1]
	posts[0].ID = strings.Repeat("abcdefghij", 8)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Report{View: models.AggregateView{Posts: posts}}, PDFOptions{Compress: false}))

	var pieces []string
	for _, m := range regexp.MustCompile(`\(([a-j]+)\)Tj`).FindAllStringSubmatch(buf.String(), -1) {
		pieces = append(pieces, m[1])
	}
	assert.Greater(t, len(pieces), 1)
	assert.Equal(t, posts[0].ID, strings.Join(pieces, ""))
	assert.NotContains(t, buf.String(), "...")
}

func TestPDFRendersArabicWithEmbeddedFont(t *testing.T) {
	posts := samplePosts()[:1]
	posts[0].Title = "مراكش"

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Report{View: models.AggregateView{Posts: posts}}, PDFOptions{Compress: false}))
	out := buf.String()

	// Right-to-left text is drawn reversed, as UTF-16BE glyph codes.
	runes := []rune(posts[0].Title)
	var encoded []byte
	for i := len(runes) - 1; i >= 0; i-- {
		encoded = append(encoded, byte(runes[i]>>8), byte(runes[i]))
	}
	assert.Contains(t, out, "("+string(encoded)+")Tj")
	assert.Contains(t, out, "/FontFile2")
	assert.Contains(t, out, "(p1)")
}

func TestPDFLatinOnlyKeepsCoreFont(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Report{View: models.AggregateView{Posts: samplePosts()}}, PDFOptions{Compress: false}))
	assert.NotContains(t, buf.String(), "/FontFile2")
}

func TestPDFManyRowsPaginates(t *testing.T) {
	base := samplePosts()[0]
	posts := make([]models.LabeledPost, 0, 120)
	for i := 0; i < 120; i++ {
		p := base
		p.ID = "row" + strings.Repeat("x", i%5) + string(rune('a'+i%26))
		posts = append(posts, p)
	}

	var buf bytes.Buffer
	err := WritePDF(&buf, Report{View: models.AggregateView{Posts: posts}}, PDFOptions{Compress: false})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Page 3/")
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), Report{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestWriteFailureIsExportError(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatJSON, FormatPDF} {
		err := Write(failingWriter{}, f, Report{View: models.AggregateView{Posts: samplePosts()}})
		require.Error(t, err, f)
		assert.True(t, apperrors.Is(err, apperrors.KindExport), f)
	}
}

func TestFileNames(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "reddit_sentiment_2024-03-09.csv", FormatCSV.FileName(at))
	assert.Equal(t, "reddit_report_20240309_1405.pdf", FormatPDF.FileName(at))
	assert.Equal(t, "reddit_report_20240309_1405.json", FormatJSON.FileName(at))

	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
}
