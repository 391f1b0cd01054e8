package stub

import "time"

// Config is the stub server configuration.
type Config struct {
	// Address to listen on (e.g., ":11435")
	ListenAddr string

	// Model name echoed back in responses.
	Model string

	// FailureRate is the fraction of chat requests answered with a 503,
	// between 0 and 1.
	FailureRate float64

	// Latency is added before every chat response.
	Latency time.Duration

	// Seed drives failure injection. Zero seeds from the clock.
	Seed int64
}
