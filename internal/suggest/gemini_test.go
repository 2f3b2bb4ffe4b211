package suggest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		assert.NoError(t, json.Unmarshal(body, &payload))
		assert.Contains(t, payload, "generationConfig")

		w.WriteHeader(status)
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGeminiBackend(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, "```json\n{\"guess\": \"IPA\"}\n```")
	defer srv.Close()

	g, err := NewGeminiBackend(GeminiConfig{APIKey: "secret", Model: "test-model", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), Request{Prompt: "beer", Schema: guessSchema})
	require.NoError(t, err)
	assert.JSONEq(t, `{"guess": "IPA"}`, out)
}

func TestGeminiBackend_Errors(t *testing.T) {
	srv := geminiServer(t, http.StatusTooManyRequests, "{}")
	defer srv.Close()
	g, err := NewGeminiBackend(GeminiConfig{APIKey: "secret", Model: "test-model", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)

	prose := geminiServer(t, http.StatusOK, "I think you mean pizza")
	defer prose.Close()
	g, err = NewGeminiBackend(GeminiConfig{APIKey: "secret", Model: "test-model", BaseURL: prose.URL})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = NewGeminiBackend(GeminiConfig{Model: "m"})
	assert.Error(t, err)
	_, err = NewGeminiBackend(GeminiConfig{APIKey: "k"})
	assert.Error(t, err)
}
