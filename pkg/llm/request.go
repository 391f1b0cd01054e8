package llm

// ChatRequest represents a chat completion request (Ollama-compatible).
type ChatRequest struct {
	Model    string    `json:"model"`            // Model name (e.g., "llama3", "gemma2")
	Messages []Message `json:"messages"`         // Conversation history
	Stream   *bool     `json:"stream,omitempty"` // Ollama streams unless told otherwise
	Format   string    `json:"format,omitempty"` // Response format ("json" for JSON mode)

	Options *Options `json:"options,omitempty"`
}
