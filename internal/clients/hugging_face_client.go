package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/sentiboard/internal/models"
)

const HF_DEFAULT_ENDPOINT = "https://api-inference.huggingface.co/models/cardiffnlp/twitter-roberta-base-sentiment-latest"

// HuggingFaceClient calls a text-classification inference endpoint. Requests
// are made exactly once; failures are returned to the caller.
type HuggingFaceClient struct {
	endpoint string
	token    string
	Client   *http.Client
}

func NewHuggingFaceClient(endpoint, token string, timeout time.Duration) *HuggingFaceClient {
	if endpoint == "" {
		endpoint = HF_DEFAULT_ENDPOINT
	}
	if timeout <= 0 {
		timeout = DEFAULT_HTTP_TIMEOUT
	}
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("endpoint", endpoint),
		slog.Duration("timeout", timeout))
	return &HuggingFaceClient{
		endpoint: endpoint,
		token:    token,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Classify returns the label scores for a single input text. Both the nested
// ([[...]]) and flat ([...]) response shapes are accepted.
func (h *HuggingFaceClient) Classify(ctx context.Context, text string) ([]models.HuggingFaceLabelScore, error) {
	start := time.Now()

	var raw json.RawMessage
	if err := h.postJSON(ctx, models.SentimentAnalysisRequest{Inputs: text}, &raw); err != nil {
		return nil, err
	}

	var nested [][]models.HuggingFaceLabelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		slog.Debug("[HuggingFaceClient] Classification received",
			slog.Duration("elapsed", time.Since(start)))
		return nested[0], nil
	}

	var flat []models.HuggingFaceLabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(raw))
		return nil, fmt.Errorf("[HuggingFaceClient] failed to unmarshal response: %w", err)
	}
	slog.Debug("[HuggingFaceClient] Classification received",
		slog.Duration("elapsed", time.Since(start)))
	return flat, nil
}

func (h *HuggingFaceClient) postJSON(ctx context.Context, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("[HuggingFaceClient] Request rejected",
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return fmt.Errorf("[HuggingFaceClient] endpoint responded with status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to unmarshal response: %w", err)
	}
	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > MAX_ERROR_BODY_PREVIEW {
		raw = raw[:MAX_ERROR_BODY_PREVIEW]
	}
	return slog.String("raw_response", raw)
}
