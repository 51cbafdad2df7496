package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", "test-model", 2*time.Second)
	c.apiURL = srv.URL
	return c
}

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestAsk_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write(completionBody(t, "BTC looks ready for a breakout."))
	})

	answer, err := c.Ask(context.Background(), "analyze BTC", "en")
	require.NoError(t, err)
	assert.Equal(t, "BTC looks ready for a breakout.", answer)
}

func TestAsk_ArabicAnswerFiltered(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(completionBody(t, "**اختراق** محتمل عند 64000$ 🚀"))
	})

	answer, err := c.Ask(context.Background(), "حلل BTC", "ar")
	require.NoError(t, err)
	assert.NotContains(t, answer, "*")
	assert.NotContains(t, answer, "🚀")
	assert.Contains(t, answer, "اختراق")
	assert.Contains(t, answer, "64000$")
}

func TestAsk_ProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Ask(context.Background(), "analyze BTC", "en")
	require.Error(t, err)
}

func TestAsk_EmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Ask(context.Background(), "analyze BTC", "en")
	require.Error(t, err)
}
