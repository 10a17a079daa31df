// Package acquisition turns Reddit search results and uploaded CSV files into
// a uniform collection of posts.
package acquisition

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/clients"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/utils"
)

const REDDIT_BASE_URL = "https://www.reddit.com"

// PostSearcher is the Reddit search call the fetcher depends on.
type PostSearcher interface {
	SearchPosts(ctx context.Context, subreddit, query string, limit int, after string) (*models.RedditAPIResponse, error)
}

// Fetcher runs one bounded Reddit search per call. Nothing is retried.
type Fetcher struct {
	searcher PostSearcher
	timeout  time.Duration
}

func NewFetcher(searcher PostSearcher, timeout time.Duration) *Fetcher {
	return &Fetcher{searcher: searcher, timeout: timeout}
}

// Fetch pages through search results until req.Limit posts are collected or
// Reddit runs out. Duplicate ids are dropped, first occurrence wins.
func (f *Fetcher) Fetch(ctx context.Context, req models.FetchRequest) ([]models.Post, error) {
	req = req.WithDefaults()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("Fetcher", err.Error(), nil)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	posts := make([]models.Post, 0, req.Limit)
	seen := make(map[string]struct{}, req.Limit)
	after := ""

	for len(posts) < req.Limit {
		pageSize := min(req.Limit-len(posts), clients.REDDIT_PAGE_SIZE)
		page, err := f.searcher.SearchPosts(ctx, req.Subreddit, req.Keyword, pageSize, after)
		if err != nil {
			slog.Error("[Fetcher] Reddit search failed",
				slog.String("keyword", req.Keyword),
				slog.String("subreddit", req.Subreddit),
				slog.Int("collected", len(posts)),
				slog.String("error", err.Error()))
			return nil, err
		}

		for _, child := range page.Data.Children {
			if len(posts) == req.Limit {
				break
			}
			post := postFromChild(child.Data, req.Keyword)
			if _, dup := seen[post.ID]; dup || post.ID == "" {
				continue
			}
			seen[post.ID] = struct{}{}
			posts = append(posts, post)
		}

		if page.Data.After == "" || len(page.Data.Children) == 0 {
			break
		}
		after = page.Data.After
	}

	slog.Info("[Fetcher] Fetched posts",
		slog.String("keyword", req.Keyword),
		slog.String("subreddit", req.Subreddit),
		slog.Int("count", len(posts)),
		slog.Duration("elapsed", time.Since(start)))
	return posts, nil
}

func postFromChild(data models.RedditAPIChildData, keyword string) models.Post {
	url := data.URL
	if data.Permalink != "" {
		url = REDDIT_BASE_URL + data.Permalink
	}
	return models.Post{
		ID:          data.ID,
		Title:       data.Title,
		Body:        data.Selftext,
		Author:      data.Author,
		Score:       data.Score,
		NumComments: data.NumComments,
		CreatedAt:   time.Unix(int64(data.CreatedUTC), 0).UTC(),
		Subreddit:   data.Subreddit,
		Keyword:     keyword,
		URL:         url,
	}
}
