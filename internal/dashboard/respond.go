package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/spacesedan/sentiboard/internal/apperrors"
)

type errorResponse struct {
	Error string         `json:"error"`
	Kind  apperrors.Kind `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[Dashboard] Failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		slog.Error("[Dashboard] Request failed", slog.String("error", err.Error()))
	} else {
		slog.Warn("[Dashboard] Request rejected", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorResponse{
		Error: apperrors.UserMessage(err),
		Kind:  apperrors.KindOf(err),
	})
}
