package models

// OpenAIPolarityResponse is the JSON object the model is instructed to return.
type OpenAIPolarityResponse struct {
	Polarity float64 `json:"polarity"`
}
