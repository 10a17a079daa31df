package models

type RedditAPIResponse struct {
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Kind string             `json:"kind"`
	Data RedditAPIChildData `json:"data"`
}

type RedditAPIChildData struct {
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
}
