package models

type SentimentAnalysisRequest struct {
	Inputs string `json:"inputs"`
}

// HuggingFaceLabelScore is one entry of a text-classification response.
type HuggingFaceLabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
