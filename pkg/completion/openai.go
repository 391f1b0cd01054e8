package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/pkg/llm"
)

// DefaultOpenAIURL is the OpenAI API base.
const DefaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI calls an OpenAI-compatible /chat/completions endpoint. Groq,
// OpenRouter and most hosted gateways speak the same protocol.
type OpenAI struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
	maxTokens   *int
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewOpenAI creates an OpenAI-compatible client.
func NewOpenAI(cfg Config, logger *zap.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}

	c := &OpenAI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
	}
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		c.temperature = &t
	}
	if cfg.MaxTokens > 0 {
		n := cfg.MaxTokens
		c.maxTokens = &n
	}
	return c, nil
}

// Complete sends req and returns the first choice's content.
func (c *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	body := llm.CompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, llm.System(req.System))
	}
	body.Messages = append(body.Messages, llm.User(req.Prompt))
	if req.JSON {
		body.ResponseFormat = &llm.ResponseFormat{Type: "json_object"}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr llm.APIError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", &StatusError{StatusCode: httpResp.StatusCode, Body: apiErr.Error.Message}
		}
		return "", &StatusError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}

	var resp llm.CompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.model)
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("received completion",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.String("content_preview", Preview(content, 100)),
	)

	return content, nil
}
