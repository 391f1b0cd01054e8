package llm

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: "system", Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: "user", Content: content}
}
