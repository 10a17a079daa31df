package models

import "time"

type Label string

const (
	LabelPositive Label = "Positive"
	LabelNeutral  Label = "Neutral"
	LabelNegative Label = "Negative"
)

// Labels lists the closed label set in display order.
var Labels = []Label{LabelPositive, LabelNeutral, LabelNegative}

func (l Label) Valid() bool {
	switch l {
	case LabelPositive, LabelNeutral, LabelNegative:
		return true
	}
	return false
}

// Post is one Reddit submission or uploaded row. It is never modified after ingestion.
type Post struct {
	ID          string    `json:"id" dynamodbav:"post_id"`
	Title       string    `json:"title" dynamodbav:"title,omitempty"`
	Body        string    `json:"text" dynamodbav:"text,omitempty"`
	Author      string    `json:"author" dynamodbav:"author,omitempty"`
	Score       int       `json:"score" dynamodbav:"score"`
	NumComments int       `json:"num_comments" dynamodbav:"num_comments"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	Subreddit   string    `json:"subreddit" dynamodbav:"subreddit"`
	Keyword     string    `json:"keyword" dynamodbav:"keyword"`
	URL         string    `json:"url" dynamodbav:"url,omitempty"`
}

// Text is what gets labeled: the title followed by the body.
func (p Post) Text() string {
	switch {
	case p.Title == "":
		return p.Body
	case p.Body == "":
		return p.Title
	}
	return p.Title + " " + p.Body
}

type SentimentSource string

const (
	SourceVADER       SentimentSource = "vader"
	SourceHuggingFace SentimentSource = "huggingface"
	SourceOpenAI      SentimentSource = "openai"
	SourceUpload      SentimentSource = "upload"
	SourceFallback    SentimentSource = "fallback"
)

// SentimentResult annotates exactly one Post.
type SentimentResult struct {
	Label  Label           `json:"sentiment_label" dynamodbav:"sentiment_label"`
	Score  float64         `json:"sentiment_score" dynamodbav:"sentiment_score"`
	Source SentimentSource `json:"sentiment_source" dynamodbav:"sentiment_source"`
}

type LabeledPost struct {
	Post
	Sentiment SentimentResult `json:"sentiment" dynamodbav:"sentiment"`
}
