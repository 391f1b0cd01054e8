package dataset

import (
	"strings"
	"unicode/utf8"
)

// Default length band, in characters.
const (
	DefaultMinLength = 10
	DefaultMaxLength = 500
)

// QualityOptions is the accepted [MinLength, MaxLength] band for both sides.
type QualityOptions struct {
	MinLength int
	MaxLength int
}

// DefaultQuality returns the default length band.
func DefaultQuality() QualityOptions {
	return QualityOptions{MinLength: DefaultMinLength, MaxLength: DefaultMaxLength}
}

// FilterQuality keeps examples whose input and output are non-blank, inside
// the length band, and not an echo of each other.
func FilterQuality(examples []TrainingExample, opts QualityOptions) []TrainingExample {
	out := make([]TrainingExample, 0, len(examples))
	for _, ex := range examples {
		if !acceptable(ex, opts) {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func acceptable(ex TrainingExample, opts QualityOptions) bool {
	if strings.TrimSpace(ex.Input) == "" || strings.TrimSpace(ex.Output) == "" {
		return false
	}
	if !inBand(ex.Input, opts) || !inBand(ex.Output, opts) {
		return false
	}
	return normalize(ex.Input) != normalize(ex.Output)
}

func inBand(s string, opts QualityOptions) bool {
	n := utf8.RuneCountInString(s)
	if n < opts.MinLength {
		return false
	}
	return opts.MaxLength <= 0 || n <= opts.MaxLength
}
