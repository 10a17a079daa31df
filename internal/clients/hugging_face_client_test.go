package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiboard/internal/models"
)

func TestHuggingFaceClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "nested", body: `[[{"label":"positive","score":0.9},{"label":"negative","score":0.1}]]`},
		{name: "flat", body: `[{"label":"positive","score":0.9},{"label":"negative","score":0.1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
				var req models.SentimentAnalysisRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "great day", req.Inputs)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewHuggingFaceClient(server.URL, "hf-token", time.Second)
			scores, err := client.Classify(context.Background(), "great day")
			require.NoError(t, err)
			require.Len(t, scores, 2)
			assert.Equal(t, "positive", scores[0].Label)
			assert.InDelta(t, 0.9, scores[0].Score, 1e-9)
		})
	}
}

func TestHuggingFaceClassifyStatusError(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer server.Close()

	client := NewHuggingFaceClient(server.URL, "", time.Second)
	_, err := client.Classify(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, 1, hits)
}
