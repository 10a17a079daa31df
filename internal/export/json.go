package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
)

// row mirrors Columns; field order here is the JSON key order.
type row struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Text           string  `json:"text"`
	Author         string  `json:"author"`
	Score          int     `json:"score"`
	NumComments    int     `json:"num_comments"`
	CreatedAt      string  `json:"created_at"`
	Subreddit      string  `json:"subreddit"`
	Keyword        string  `json:"keyword"`
	URL            string  `json:"url"`
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"`
}

func WriteJSON(w io.Writer, posts []models.LabeledPost) error {
	rows := make([]row, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, row{
			ID:             p.ID,
			Title:          p.Title,
			Text:           p.Body,
			Author:         p.Author,
			Score:          p.Score,
			NumComments:    p.NumComments,
			CreatedAt:      formatTime(p.CreatedAt),
			Subreddit:      p.Subreddit,
			Keyword:        p.Keyword,
			URL:            p.URL,
			SentimentLabel: string(p.Sentiment.Label),
			SentimentScore: p.Sentiment.Score,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return apperrors.Export("JSONExport", "could not encode rows", err)
	}
	return nil
}

// ParseJSON reads a file produced by WriteJSON.
func ParseJSON(r io.Reader) ([]models.LabeledPost, error) {
	var rows []row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, apperrors.Validation("JSONParse", "could not decode rows", err)
	}

	posts := make([]models.LabeledPost, 0, len(rows))
	for i, r := range rows {
		p, err := fromRecord([]string{
			r.ID, r.Title, r.Text, r.Author,
			fmt.Sprint(r.Score), fmt.Sprint(r.NumComments), r.CreatedAt,
			r.Subreddit, r.Keyword, r.URL,
			r.SentimentLabel, formatPolarity(r.SentimentScore),
		})
		if err != nil {
			return nil, apperrors.Validation("JSONParse", fmt.Sprintf("row %d", i+1), err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}
