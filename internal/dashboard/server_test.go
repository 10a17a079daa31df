package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/export"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
)

type fakeFetcher struct {
	posts []models.Post
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, req models.FetchRequest) ([]models.Post, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

// wordLabeler scores "good" as positive and "bad" as negative.
type wordLabeler struct{}

func (wordLabeler) Label(_ context.Context, text string) models.SentimentResult {
	score := 0.0
	switch {
	case strings.Contains(text, "good"):
		score = 0.6
	case strings.Contains(text, "bad"):
		score = -0.6
	}
	return models.SentimentResult{Label: sentiment.Classify(score), Score: score, Source: models.SourceVADER}
}

func samplePosts() []models.Post {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	return []models.Post{
		{ID: "a", Title: "good housing news", Score: 10, NumComments: 3, CreatedAt: day(1), Subreddit: "realestate", Keyword: "housing"},
		{ID: "b", Title: "bad rent prices", Score: 50, NumComments: 9, CreatedAt: day(2), Subreddit: "realestate", Keyword: "housing"},
		{ID: "c", Title: "housing market update", Score: 5, NumComments: 1, CreatedAt: day(5), Subreddit: "economy", Keyword: "housing"},
	}
}

func newTestServer(t *testing.T, fetcher PostFetcher) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := NewServer(Options{Fetcher: fetcher, Labeler: wordLabeler{}})
	srv.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, newClient(t)
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postFetch(t *testing.T, client *http.Client, base string, body string) *http.Response {
	t.Helper()
	resp, err := client.Post(base+"/fetch", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	ts, client := newTestServer(t, nil)

	resp, err := client.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["reddit"])
}

func TestIndexSetsSessionCookie(t *testing.T) {
	ts, client := newTestServer(t, &fakeFetcher{})

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	page, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(page), "Reddit Sentiment Dashboard")
	assert.Contains(t, string(page), `<option value="Real Estate">`)

	u, _ := url.Parse(ts.URL)
	cookies := client.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, SESSION_COOKIE, cookies[0].Name)
}

func TestFetchAndView(t *testing.T) {
	fetcher := &fakeFetcher{posts: samplePosts()}
	ts, client := newTestServer(t, fetcher)

	resp := postFetch(t, client, ts.URL, `{"keyword":"housing","limit":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ingest := decode[ingestResponse](t, resp)
	assert.Equal(t, 3, ingest.Posts)
	assert.Equal(t, "housing", ingest.Keyword)
	assert.Equal(t, 1, fetcher.calls)

	resp, err := client.Get(ts.URL + "/api/view?sort=score")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[viewResponse](t, resp)

	require.Len(t, view.Posts, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{view.Posts[0].ID, view.Posts[1].ID, view.Posts[2].ID})
	assert.Equal(t, 3, view.Summary.Total)
	assert.Equal(t, 1, view.Summary.Count(models.LabelPositive))
	assert.Equal(t, 1, view.Summary.Count(models.LabelNegative))
	assert.Equal(t, 1, view.Summary.Count(models.LabelNeutral))
	assert.Len(t, view.Trend, 3)
	assert.Len(t, view.Histogram, 20)
}

func TestViewFilters(t *testing.T) {
	ts, client := newTestServer(t, &fakeFetcher{posts: samplePosts()})
	postFetch(t, client, ts.URL, `{"keyword":"housing"}`).Body.Close()

	resp, err := client.Get(ts.URL + "/api/view?start=2024-03-01&end=2024-03-02&min_score=20")
	require.NoError(t, err)
	view := decode[viewResponse](t, resp)

	require.Len(t, view.Posts, 1)
	assert.Equal(t, "b", view.Posts[0].ID)
	assert.Equal(t, 3, view.Summary.CollectionLen)
}

func TestViewRejectsBadFilters(t *testing.T) {
	ts, client := newTestServer(t, &fakeFetcher{posts: samplePosts()})

	tests := []struct {
		name  string
		query string
	}{
		{name: "bad date", query: "start=03/01/2024"},
		{name: "end before start", query: "start=2024-03-05&end=2024-03-01"},
		{name: "bad min score", query: "min_score=ten"},
		{name: "unknown sort", query: "sort=upvotes"},
		{name: "bad granularity", query: "granularity=month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Get(ts.URL + "/api/view?" + tt.query)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[errorResponse](t, resp)
			assert.Equal(t, apperrors.KindValidation, body.Kind)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestFetchFailures(t *testing.T) {
	t.Run("no credentials", func(t *testing.T) {
		ts, client := newTestServer(t, nil)
		resp := postFetch(t, client, ts.URL, `{"keyword":"housing"}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		body := decode[errorResponse](t, resp)
		assert.Equal(t, apperrors.KindAcquisition, body.Kind)
	})

	t.Run("reddit error keeps previous collection", func(t *testing.T) {
		fetcher := &fakeFetcher{posts: samplePosts()}
		ts, client := newTestServer(t, fetcher)
		postFetch(t, client, ts.URL, `{"keyword":"housing"}`).Body.Close()

		fetcher.err = apperrors.Acquisition("RedditClient", "Reddit rate limit reached", nil)
		resp := postFetch(t, client, ts.URL, `{"keyword":"rent"}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		body := decode[errorResponse](t, resp)
		assert.Contains(t, body.Error, "rate limit")

		resp, err := client.Get(ts.URL + "/api/view")
		require.NoError(t, err)
		view := decode[viewResponse](t, resp)
		assert.Len(t, view.Posts, 3)
		assert.Equal(t, "housing", view.Keyword)
	})

	t.Run("invalid json", func(t *testing.T) {
		ts, client := newTestServer(t, &fakeFetcher{})
		resp := postFetch(t, client, ts.URL, `{"keyword":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func uploadCSV(t *testing.T, client *http.Client, base, content string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "posts.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := client.Post(base+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestUpload(t *testing.T) {
	ts, client := newTestServer(t, nil)

	csvData := "text,score,created_at,subreddit,sentiment_score\n" +
		"good times,4,2024-03-01,morocco,\n" +
		"mixed feelings,-2,2024-03-02,morocco,-0.4\n"
	resp := uploadCSV(t, client, ts.URL, csvData)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ingest := decode[ingestResponse](t, resp)
	assert.Equal(t, 2, ingest.Posts)
	assert.Equal(t, "upload", ingest.Source)

	resp, err := client.Get(ts.URL + "/api/view")
	require.NoError(t, err)
	view := decode[viewResponse](t, resp)
	require.Len(t, view.Posts, 2)
	assert.Equal(t, models.LabelPositive, view.Posts[0].Sentiment.Label)
	assert.Equal(t, models.LabelNegative, view.Posts[1].Sentiment.Label)
	assert.Equal(t, models.SourceUpload, view.Posts[1].Sentiment.Source)
}

func TestUploadRejectsMissingColumns(t *testing.T) {
	ts, client := newTestServer(t, nil)

	resp := uploadCSV(t, client, ts.URL, "text,score\nhello,1\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Equal(t, apperrors.KindValidation, body.Kind)
	assert.Contains(t, body.Error, "created_at")
}

func TestSessionsAreIsolated(t *testing.T) {
	ts, alice := newTestServer(t, &fakeFetcher{posts: samplePosts()})
	bob := newClient(t)

	postFetch(t, alice, ts.URL, `{"keyword":"housing"}`).Body.Close()

	resp, err := bob.Get(ts.URL + "/api/view")
	require.NoError(t, err)
	view := decode[viewResponse](t, resp)
	assert.Empty(t, view.Posts)

	resp, err = alice.Post(ts.URL+"/session/end", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = alice.Get(ts.URL + "/api/view")
	require.NoError(t, err)
	view = decode[viewResponse](t, resp)
	assert.Empty(t, view.Posts)
}

func TestExport(t *testing.T) {
	ts, client := newTestServer(t, &fakeFetcher{posts: samplePosts()})
	postFetch(t, client, ts.URL, `{"keyword":"housing"}`).Body.Close()

	t.Run("csv round trip", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/export/csv?min_score=6")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, export.FormatCSV.ContentType(), resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

		posts, err := export.ParseCSV(resp.Body)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "a", posts[0].ID)
		assert.Equal(t, "b", posts[1].ID)
	})

	t.Run("json", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/export/json")
		require.NoError(t, err)
		defer resp.Body.Close()

		posts, err := export.ParseJSON(resp.Body)
		require.NoError(t, err)
		assert.Len(t, posts, 3)
	})

	t.Run("pdf", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/export/pdf")
		require.NoError(t, err)
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)

		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	})

	t.Run("unknown format", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/export/xlsx")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSectorsAndFocus(t *testing.T) {
	ts, client := newTestServer(t, &fakeFetcher{posts: samplePosts()})
	postFetch(t, client, ts.URL, `{"keyword":"housing"}`).Body.Close()

	resp, err := client.Get(ts.URL + "/api/sectors")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sectors := decode[struct {
		Term    string              `json:"term"`
		Sectors []models.SectorStat `json:"sectors"`
	}](t, resp)
	assert.Equal(t, "housing", sectors.Term)

	resp, err = client.Get(ts.URL + "/api/focus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/api/focus?focus_keywords=rent")
	require.NoError(t, err)
	focus := decode[struct {
		Matched bool                `json:"matched"`
		Report  *models.FocusReport `json:"report"`
	}](t, resp)
	assert.True(t, focus.Matched)
	require.NotNil(t, focus.Report)
	assert.Equal(t, 1, focus.Report.PostCount)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, client := newTestServer(t, &fakeFetcher{posts: samplePosts()})
	postFetch(t, client, ts.URL, `{"keyword":"housing"}`).Body.Close()

	resp, err := client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(data), "sentiboard_posts_labeled_total")
	assert.Contains(t, string(data), `route="/fetch"`)
}

func TestMetricsGroupUnknownPaths(t *testing.T) {
	ts, client := newTestServer(t, &fakeFetcher{posts: samplePosts()})
	for _, path := range []string{"/wp-admin/a1", "/wp-admin/a2", "/.env"} {
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	resp, err := client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(data), `route="unmatched"`)
	assert.NotContains(t, string(data), "wp-admin")
	assert.NotContains(t, string(data), ".env")
}
