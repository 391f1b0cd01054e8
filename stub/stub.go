// Package stub provides an offline chat model server for dry runs. It speaks
// the Ollama /api/chat and OpenAI /chat/completions protocols and answers
// with canned NPC dialogue, optionally failing a fraction of requests.
package stub

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/llm"
)

// DefaultModel is reported when the config names none.
const DefaultModel = "dialogen-stub"

// Server is the stub chat model server.
type Server struct {
	config Config
	logger *zap.Logger
	server *fiber.App

	mu  sync.Mutex
	rng *rand.Rand

	served atomic.Int64
	failed atomic.Int64
}

// Stats counts answered and deliberately failed chat requests.
type Stats struct {
	Served int64 `json:"served"`
	Failed int64 `json:"failed"`
}

// New creates a new stub Server.
func New(config Config, logger *zap.Logger) *Server {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		server: app,
		rng:    rand.New(rand.NewSource(seed)),
	}

	app.Post("/api/chat", s.handleOllamaChat)
	app.Post("/chat/completions", s.handleOpenAIChat)
	app.Post("/v1/chat/completions", s.handleOpenAIChat)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	app.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.Stats())
	})

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting stub server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("model", s.config.Model),
		zap.Float64("failure_rate", s.config.FailureRate),
		zap.Duration("latency", s.config.Latency),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// Handler exposes the routes as a net/http handler, for embedding the stub
// in an httptest server.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.server)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}

// Stats returns the request counters.
func (s *Server) Stats() Stats {
	return Stats{Served: s.served.Load(), Failed: s.failed.Load()}
}

// handleOllamaChat answers an Ollama chat request without streaming.
func (s *Server) handleOllamaChat(c *fiber.Ctx) error {
	start := time.Now()

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "messages are required"})
	}

	if s.shouldFail() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "stub: simulated overload"})
	}

	content := s.answer(req.Messages, strings.EqualFold(req.Format, "json"))
	s.logger.Debug("answered chat request",
		zap.String("api", "ollama"),
		zap.Int("message_count", len(req.Messages)),
		zap.String("content_preview", completion.Preview(content, 100)),
	)

	return c.JSON(llm.ChatResponse{
		Model:         s.modelFor(req.Model),
		CreatedAt:     time.Now().UTC(),
		Message:       llm.Message{Role: "assistant", Content: content},
		Done:          true,
		TotalDuration: time.Since(start).Nanoseconds(),
		EvalCount:     len(strings.Fields(content)),
	})
}

// handleOpenAIChat answers an OpenAI-compatible chat completion request.
func (s *Server) handleOpenAIChat(c *fiber.Ctx) error {
	var req llm.CompletionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(apiError("invalid request body", "invalid_request_error"))
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(apiError("messages are required", "invalid_request_error"))
	}

	if s.shouldFail() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(apiError("stub: simulated overload", "server_error"))
	}

	asJSON := req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object"
	content := s.answer(req.Messages, asJSON)
	s.logger.Debug("answered chat request",
		zap.String("api", "openai"),
		zap.Int("message_count", len(req.Messages)),
		zap.String("content_preview", completion.Preview(content, 100)),
	)

	completionTokens := len(strings.Fields(content))
	return c.JSON(llm.CompletionResponse{
		ID:    "chatcmpl-" + uuid.NewString(),
		Model: s.modelFor(req.Model),
		Choices: []llm.Choice{{
			Message:      llm.Message{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
		Usage: llm.Usage{CompletionTokens: completionTokens, TotalTokens: completionTokens},
	})
}

func (s *Server) answer(messages []llm.Message, asJSON bool) string {
	if s.config.Latency > 0 {
		time.Sleep(s.config.Latency)
	}
	s.served.Add(1)

	prompt := lastUserContent(messages)
	if asJSON {
		return jsonDialogue(prompt)
	}
	return textDialogue(prompt)
}

func (s *Server) shouldFail() bool {
	if s.config.FailureRate <= 0 {
		return false
	}
	s.mu.Lock()
	fail := s.rng.Float64() < s.config.FailureRate
	s.mu.Unlock()

	if fail {
		s.failed.Add(1)
	}
	return fail
}

func (s *Server) modelFor(requested string) string {
	if requested != "" {
		return requested
	}
	return s.config.Model
}

func lastUserContent(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return messages[len(messages)-1].Content
}

func apiError(message, kind string) llm.APIError {
	var e llm.APIError
	e.Error.Message = message
	e.Error.Type = kind
	return e
}
