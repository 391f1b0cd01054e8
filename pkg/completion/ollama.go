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

// DefaultOllamaURL is where a local Ollama listens by default.
const DefaultOllamaURL = "http://localhost:11434"

// Ollama calls an Ollama-compatible /api/chat endpoint without streaming.
type Ollama struct {
	baseURL    string
	model      string
	options    *llm.Options
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOllama creates an Ollama client.
func NewOllama(cfg Config, logger *zap.Logger) (*Ollama, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	opts := &llm.Options{}
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		opts.Temperature = &t
	}
	if cfg.MaxTokens > 0 {
		n := cfg.MaxTokens
		opts.NumPredict = &n
	}

	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   cfg.Model,
		options: opts,
		httpClient: &http.Client{
			// local models can be slow; per-request timeouts come from the context
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}, nil
}

// Complete sends req as a single non-streaming chat turn.
func (o *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	streaming := false
	chat := llm.ChatRequest{
		Model:   o.model,
		Stream:  &streaming,
		Options: o.options,
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, llm.System(req.System))
	}
	chat.Messages = append(chat.Messages, llm.User(req.Prompt))
	if req.JSON {
		chat.Format = "json"
	}

	body, err := json.Marshal(chat)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.baseURL + "/api/chat"
	o.logger.Debug("sending chat request",
		zap.String("url", url),
		zap.String("model", o.model),
		zap.Int("body_size", len(body)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr llm.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return "", &StatusError{StatusCode: httpResp.StatusCode, Body: apiErr.Error}
		}
		return "", &StatusError{StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}

	var resp llm.ChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	o.logger.Debug("received chat response",
		zap.String("model", resp.Model),
		zap.Int("eval_count", resp.EvalCount),
		zap.String("content_preview", Preview(resp.Message.Content, 100)),
	)

	return resp.Message.Content, nil
}
