package llm

// Options contains model inference parameters.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)
	TopP        *float64 `json:"top_p,omitempty"`       // Nucleus sampling threshold
	Seed        *int     `json:"seed,omitempty"`        // Random seed for reproducibility

	NumPredict *int `json:"num_predict,omitempty"` // Max tokens to generate
}
