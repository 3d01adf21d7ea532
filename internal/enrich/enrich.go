// Package enrich calls the external insight services: an OpenAI-compatible
// chat endpoint for document summaries and keyword definitions, and Google
// Custom Search for related articles.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/codariq/sentidoc/config"
)

const defaultSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

// Client talks to the insight backends. All methods are safe for concurrent
// use.
type Client struct {
	httpClient *http.Client

	baseURL string
	apiKey  string
	model   string

	googleKey     string
	googleCX      string
	searchBaseURL string
}

// New creates a client from the insight configuration.
func New(cfg config.InsightConfig) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       cfg.OpenAIBaseURL,
		apiKey:        cfg.OpenAIKey,
		model:         cfg.OpenAIModel,
		googleKey:     cfg.GoogleAPIKey,
		googleCX:      cfg.GoogleCX,
		searchBaseURL: defaultSearchBaseURL,
	}
}

// Summarize asks the model for a summary of the document text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	return c.chat(ctx, "Summarize the following document:\n\n"+text)
}

// Define asks the model for a definition of a single keyword.
func (c *Client) Define(ctx context.Context, word string) (string, error) {
	return c.chat(ctx, fmt.Sprintf("Define the word: %s.", word))
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai api key not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an intelligent assistant."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat request failed: status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}
	return out.Choices[0].Message.Content, nil
}

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// SearchArticles returns article links for a keyword via Google Custom
// Search.
func (c *Client) SearchArticles(ctx context.Context, word string) ([]string, error) {
	if c.googleKey == "" || c.googleCX == "" {
		return nil, fmt.Errorf("google search not configured")
	}

	q := url.Values{}
	q.Set("key", c.googleKey)
	q.Set("cx", c.googleCX)
	q.Set("q", word)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("article search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article search failed: status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	links := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		links = append(links, item.Link)
	}
	return links, nil
}
