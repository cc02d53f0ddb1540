package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dahui-ai/assistant-server-go/internal/config"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Models maps supported model ids to display names.
var Models = map[string]string{
	"gemma-3-27b-it": "Gemma 3 27B (recommended)",
	"gemma-3-9b-it":  "Gemma 3 9B (faster)",
	"gemma-3-2b-it":  "Gemma 3 2B (fastest)",
}

// Client calls the hosted Gemini generateContent endpoint. Callers treat any
// error as soft: the chat path substitutes a fallback reply rather than
// surfacing transport or API failures to end users.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: config.LLMRequestTimeout,
		},
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(baseURL, apiKey, model string) *Client {
	c := NewClient(apiKey, model)
	c.baseURL = baseURL
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete sends prompt to the model and returns the first candidate text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("llm: api key not configured")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Str("model", c.model).Dur("elapsed", elapsed).Msg("llm request error")
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("model", c.model).Dur("elapsed", elapsed).Msg("llm request rejected")
		return "", fmt.Errorf("llm request failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		log.Warn().Str("model", c.model).Msg("llm returned no candidates")
		return "", fmt.Errorf("llm returned empty response")
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	log.Info().Str("model", c.model).Int("length", len(text)).Dur("elapsed", elapsed).Msg("llm response received")
	return text, nil
}
