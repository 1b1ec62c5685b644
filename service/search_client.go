package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studiotributario-backend/models"
)

// SearchClient sends a full conversation to the conversational search endpoint
// and returns the assistant reply.
type SearchClient interface {
	Complete(ctx context.Context, token string, turns []models.ConversationTurn) (string, error)
}

const (
	DefaultSearchURL         = "https://api.perplexity.ai/chat/completions"
	DefaultSearchModel       = "sonar-pro"
	DefaultSearchTemperature = 0.1
	DefaultSearchTimeout     = 45 * time.Second
)

// PerplexityClient calls an OpenAI-compatible chat completions API
type PerplexityClient struct {
	url         string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewPerplexityClient creates a search client. Zero values fall back to the defaults.
func NewPerplexityClient(url, model string, temperature float64, timeout time.Duration) *PerplexityClient {
	if url == "" {
		url = DefaultSearchURL
	}
	if model == "" {
		model = DefaultSearchModel
	}
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	return &PerplexityClient{
		url:         url,
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string                    `json:"model"`
	Messages    []models.ConversationTurn `json:"messages"`
	Temperature float64                   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts the conversation. Every failure is reported as ErrSearchUnavailable.
func (c *PerplexityClient) Complete(ctx context.Context, token string, turns []models.ConversationTurn) (string, error) {
	if token == "" {
		return "", ErrMissingCredential
	}

	jsonData, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    turns,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %w", ErrSearchUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", ErrSearchUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", ErrSearchUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrSearchUnavailable, resp.StatusCode, truncate(string(bodyBytes), 300))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %w", ErrSearchUnavailable, err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrSearchUnavailable)
	}

	content := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty reply", ErrSearchUnavailable)
	}
	return content, nil
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
