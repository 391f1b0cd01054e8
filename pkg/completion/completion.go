// Package completion adapts remote chat models to the single call the
// generators need: send a prompt, get text back.
package completion

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Request is one call to the external generation service.
type Request struct {
	// System is the instruction context (persona, topic, scenario type).
	System string
	// Prompt is the user turn, including the output-shape contract.
	Prompt string
	// JSON asks the service for a JSON object response where it supports that.
	JSON bool
	// Timeout bounds the call. Zero means the client default.
	Timeout time.Duration
}

// Completer is the external generation collaborator. Implementations return
// the raw text payload or an error; they do not retry.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to Completer.
type Func func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Kind names a provider protocol.
type Kind string

const (
	KindOllama Kind = "ollama"
	KindOpenAI Kind = "openai"
)

// Config selects and configures a provider.
type Config struct {
	Kind              Kind    `toml:"kind"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	APIKey            string  `toml:"api_key"`
	Temperature       float64 `toml:"temperature"`
	MaxTokens         int     `toml:"max_tokens"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
}

// New builds the Completer described by cfg, rate limited when
// RequestsPerMinute is set.
func New(cfg Config, logger *zap.Logger) (Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		c   Completer
		err error
	)

	switch Kind(strings.ToLower(string(cfg.Kind))) {
	case KindOllama, "":
		c, err = NewOllama(cfg, logger)
	case KindOpenAI:
		c, err = NewOpenAI(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RequestsPerMinute > 0 {
		c = NewRateLimited(c, cfg.RequestsPerMinute)
		logger.Info("rate limiting enabled", zap.Int("requests_per_minute", cfg.RequestsPerMinute))
	}
	return c, nil
}

// StatusError is returned when the service answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, Preview(e.Body, 200))
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Preview flattens s onto one line and cuts it to at most maxLen bytes,
// never splitting a rune.
func Preview(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
