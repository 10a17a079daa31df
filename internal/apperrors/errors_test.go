package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("[Dashboard] fetch: %w", Acquisition("RedditClient", "could not reach Reddit", cause))

	assert.Equal(t, KindAcquisition, KindOf(err))
	assert.True(t, Is(err, KindAcquisition))
	assert.False(t, Is(err, KindValidation))
	assert.ErrorIs(t, err, cause)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindExport))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "could not reach Reddit. Please try again in a moment.",
		UserMessage(Acquisition("RedditClient", "could not reach Reddit", nil)))
	assert.Equal(t, "missing required columns: score",
		UserMessage(Validation("CSVLoader", "missing required columns: score", nil)))
	assert.Equal(t, "Export failed: pdf rendering failed",
		UserMessage(Export("Exporter", "pdf rendering failed", errors.New("boom"))))
	assert.Empty(t, UserMessage(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("x", "bad", nil)))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Acquisition("x", "down", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Export("x", "bad", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("other")))
}

func TestErrorString(t *testing.T) {
	err := Export("CSVExporter", "write failed", errors.New("disk full"))
	assert.Equal(t, "[CSVExporter] write failed: disk full", err.Error())
}
