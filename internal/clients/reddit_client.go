package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
)

const (
	REDDIT_AUTH_URL  = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL   = "https://oauth.reddit.com"
	REDDIT_PAGE_SIZE = 100
)

type RedditClientOptions struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	// AuthURL and APIURL default to Reddit's production endpoints.
	AuthURL string
	APIURL  string

	BreakerFailures uint32
	BreakerCooldown time.Duration

	// HTTPClient is the base client used for both token and API requests.
	HTTPClient *http.Client
}

// RedditClient searches Reddit through an app-only OAuth2 token. It never
// retries: every failure is returned to the caller as an acquisition error.
type RedditClient struct {
	apiURL  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

func NewRedditClient(opts RedditClientOptions) *RedditClient {
	if opts.AuthURL == "" {
		opts.AuthURL = REDDIT_AUTH_URL
	}
	if opts.APIURL == "" {
		opts.APIURL = REDDIT_API_URL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = USER_AGENT
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 3
	}
	if opts.BreakerCooldown == 0 {
		opts.BreakerCooldown = time.Minute
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: DEFAULT_HTTP_TIMEOUT}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	baseWithUA := &http.Client{
		Timeout:   base.Timeout,
		Transport: &userAgentTransport{base: transport, userAgent: opts.UserAgent},
	}

	oauthConf := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.AuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseWithUA)

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "reddit",
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("[RedditClient] Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &RedditClient{
		apiURL:  opts.APIURL,
		client:  oauthConf.Client(ctx),
		breaker: breaker,
	}
}

// SearchPosts requests one page of search results for query in subreddit.
// Use subreddit "all" to search site-wide.
func (rc *RedditClient) SearchPosts(ctx context.Context, subreddit, query string, limit int, after string) (*models.RedditAPIResponse, error) {
	if limit <= 0 || limit > REDDIT_PAGE_SIZE {
		limit = REDDIT_PAGE_SIZE
	}

	parsedUrl, err := url.Parse(fmt.Sprintf("%s/r/%s/search", rc.apiURL, url.PathEscape(subreddit)))
	if err != nil {
		return nil, apperrors.Acquisition("RedditClient", "invalid subreddit", err)
	}
	queryParams := parsedUrl.Query()
	queryParams.Set("q", query)
	queryParams.Set("sort", "relevance")
	queryParams.Set("type", "link")
	queryParams.Set("raw_json", "1")
	queryParams.Set("limit", strconv.Itoa(limit))
	if subreddit != models.DefaultSubreddit {
		queryParams.Set("restrict_sr", "true")
	}
	if after != "" {
		queryParams.Set("after", after)
	}
	parsedUrl.RawQuery = queryParams.Encode()

	result, err := rc.breaker.Execute(func() (interface{}, error) {
		return rc.doSearch(ctx, parsedUrl.String())
	})
	if err != nil {
		return nil, toAcquisitionError(ctx, err)
	}
	return result.(*models.RedditAPIResponse), nil
}

func (rc *RedditClient) doSearch(ctx context.Context, searchURL string) (*models.RedditAPIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, MAX_ERROR_BODY_PREVIEW))
		slog.Warn("[RedditClient] Search request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(preview)))
		return nil, &statusError{code: resp.StatusCode}
	}

	var page models.RedditAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("[RedditClient] failed to decode search response: %w", &decodeError{err: err})
	}

	slog.Debug("[RedditClient] Search page received",
		slog.Int("posts", len(page.Data.Children)),
		slog.Duration("elapsed", time.Since(start)))
	return &page, nil
}

// countsAsHealthy keeps caller-side mistakes such as an unknown subreddit
// from tripping the breaker. Auth, rate limit and server errors still count.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *statusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return false
	}
	return statusErr.code >= 400 && statusErr.code < 500
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("reddit responded with status %d", e.code)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func toAcquisitionError(ctx context.Context, err error) error {
	const op = "RedditClient"

	var statusErr *statusError
	var retrieveErr *oauth2.RetrieveError
	var decodeErr *decodeError

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.Acquisition(op, "Reddit requests are paused after repeated failures", err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.Acquisition(op, "Reddit did not respond in time", err)
	case errors.Is(err, context.Canceled):
		return apperrors.Acquisition(op, "the fetch was cancelled", err)
	case errors.As(err, &retrieveErr):
		return apperrors.Acquisition(op, "Reddit rejected the API credentials", err)
	case errors.As(err, &statusErr):
		switch {
		case statusErr.code == http.StatusUnauthorized || statusErr.code == http.StatusForbidden:
			return apperrors.Acquisition(op, "Reddit rejected the API credentials", err)
		case statusErr.code == http.StatusTooManyRequests:
			return apperrors.Acquisition(op, "Reddit rate limit reached", err)
		case statusErr.code == http.StatusNotFound:
			return apperrors.Acquisition(op, "subreddit not found", err)
		case statusErr.code >= 500:
			return apperrors.Acquisition(op, "Reddit is currently unavailable", err)
		default:
			return apperrors.Acquisition(op, "unexpected response from Reddit", err)
		}
	case errors.As(err, &decodeErr):
		return apperrors.Acquisition(op, "could not read Reddit's response", err)
	default:
		return apperrors.Acquisition(op, "could not reach Reddit", err)
	}
}
