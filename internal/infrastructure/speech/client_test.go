package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/infrastructure/config"
)

func newTestClient(endpoint string) *Client {
	return NewClient(config.SpeechConfig{
		Endpoint: endpoint,
		APIKey:   "test-key",
		Timeout:  2 * time.Second,
	})
}

func TestClient_Transcribe(t *testing.T) {
	t.Run("returns transcript from backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "media-123", req["media_ref"])

			json.NewEncoder(w).Encode(map[string]string{"transcript": "invoice John fifty thousand for consulting"})
		}))
		defer server.Close()

		transcript, err := newTestClient(server.URL).Transcribe(context.Background(), "media-123")

		require.NoError(t, err)
		assert.Equal(t, "invoice John fifty thousand for consulting", transcript)
	})

	t.Run("backend error status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]map[string]string{
				"error": {"message": "model unavailable"},
			})
		}))
		defer server.Close()

		transcript, err := newTestClient(server.URL).Transcribe(context.Background(), "media-123")

		assert.Error(t, err)
		assert.Empty(t, transcript)
		assert.Contains(t, err.Error(), "model unavailable")
	})

	t.Run("empty transcript is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"transcript": ""})
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Transcribe(context.Background(), "media-123")

		assert.Error(t, err)
	})

	t.Run("unconfigured endpoint is an error", func(t *testing.T) {
		_, err := newTestClient("").Transcribe(context.Background(), "media-123")
		assert.Error(t, err)
	})

	t.Run("empty media reference is an error", func(t *testing.T) {
		_, err := newTestClient("http://localhost:1").Transcribe(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := newTestClient(server.URL).Transcribe(ctx, "media-123")

		assert.Error(t, err)
	})
}
