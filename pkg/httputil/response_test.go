package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusInternalServerError, map[string]string{"error": "no_match"})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "no_match", result["error"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteError(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteError(rec, http.StatusBadGateway, "body_file_error", "failed to read data.txt")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var result map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "body_file_error", result["error"])
	assert.Equal(t, "failed to read data.txt", result["message"])
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remote string
		want   string
	}{
		{"127.0.0.1:51234", "127.0.0.1"},
		{"[::1]:8080", "::1"},
		{"no-port", "no-port"},
	}
	for _, tt := range tests {
		r := &http.Request{RemoteAddr: tt.remote}
		assert.Equal(t, tt.want, ClientIP(r), tt.remote)
	}
}
