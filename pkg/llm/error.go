// Package llm holds the wire types for the chat completion APIs dialogen talks
// to: the Ollama-compatible /api/chat endpoint and the OpenAI-compatible
// /chat/completions endpoint.
package llm

// ErrorResponse is the error body returned by Ollama-compatible servers.
type ErrorResponse struct {
	Error string `json:"error"`
}
