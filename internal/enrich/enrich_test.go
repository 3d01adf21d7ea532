package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codariq/sentidoc/config"
)

func newChatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func newClient(cfg config.InsightConfig) *Client {
	c := New(cfg)
	c.httpClient.Timeout = 5 * time.Second
	return c
}

func TestSummarize(t *testing.T) {
	srv := newChatServer(t, "a short summary")
	defer srv.Close()

	c := newClient(config.InsightConfig{
		OpenAIBaseURL: srv.URL,
		OpenAIModel:   "gpt-3.5-turbo",
		OpenAIKey:     "test-key",
	})

	summary, err := c.Summarize(context.Background(), "long document text")
	require.NoError(t, err)
	assert.Equal(t, "a short summary", summary)
}

func TestDefine(t *testing.T) {
	srv := newChatServer(t, "a word meaning")
	defer srv.Close()

	c := newClient(config.InsightConfig{
		OpenAIBaseURL: srv.URL,
		OpenAIModel:   "gpt-3.5-turbo",
		OpenAIKey:     "test-key",
	})

	def, err := c.Define(context.Background(), "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, "a word meaning", def)
}

func TestChatWithoutKey(t *testing.T) {
	c := newClient(config.InsightConfig{OpenAIBaseURL: "http://unused"})

	_, err := c.Summarize(context.Background(), "text")
	assert.Error(t, err)
}

func TestChatUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newClient(config.InsightConfig{OpenAIBaseURL: srv.URL, OpenAIKey: "test-key"})

	_, err := c.Summarize(context.Background(), "text")
	assert.Error(t, err)
}

func TestSearchArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "weather", r.URL.Query().Get("q"))
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))
		assert.Equal(t, "cx-id", r.URL.Query().Get("cx"))

		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"link": "https://example.com/a"},
				{"link": "https://example.com/b"},
			},
		})
	}))
	defer srv.Close()

	c := newClient(config.InsightConfig{GoogleAPIKey: "g-key", GoogleCX: "cx-id"})
	c.searchBaseURL = srv.URL

	links, err := c.SearchArticles(context.Background(), "weather")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, links)
}

func TestSearchArticlesUnconfigured(t *testing.T) {
	c := newClient(config.InsightConfig{})

	_, err := c.SearchArticles(context.Background(), "weather")
	assert.Error(t, err)
}
