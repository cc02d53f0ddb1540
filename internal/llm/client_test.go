package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	t.Run("returns first candidate text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models/gemma-3-27b-it:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Contents, 1)
			assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)

			json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]any{{"text": "hi there"}}}},
				},
			})
		}))
		defer server.Close()

		client := NewClientWithBaseURL(server.URL, "test-key", "gemma-3-27b-it")
		text, err := client.Complete(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, "hi there", text)
	})

	t.Run("missing api key", func(t *testing.T) {
		client := NewClient("", "gemma-3-27b-it")
		_, err := client.Complete(context.Background(), "hello")
		assert.Error(t, err)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClientWithBaseURL(server.URL, "test-key", "gemma-3-27b-it")
		_, err := client.Complete(context.Background(), "hello")
		assert.Error(t, err)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
		}))
		defer server.Close()

		client := NewClientWithBaseURL(server.URL, "test-key", "gemma-3-27b-it")
		_, err := client.Complete(context.Background(), "hello")
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		client := NewClientWithBaseURL("http://127.0.0.1:1", "test-key", "gemma-3-27b-it")
		_, err := client.Complete(context.Background(), "hello")
		assert.Error(t, err)
	})
}
