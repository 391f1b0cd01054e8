package dataset

import "unicode/utf8"

// Stats summarises a dataset.
type Stats struct {
	Total           int            `json:"total_examples"`
	Categories      map[string]int `json:"scenario_types"`
	Sources         map[string]int `json:"sources"`
	AvgInputLength  float64        `json:"avg_input_length"`
	AvgOutputLength float64        `json:"avg_output_length"`
}

// ComputeStats counts examples per category and source and averages the
// input and output lengths in characters.
func ComputeStats(examples []TrainingExample) Stats {
	stats := Stats{
		Total:      len(examples),
		Categories: make(map[string]int),
		Sources:    make(map[string]int),
	}
	if len(examples) == 0 {
		return stats
	}

	var inputLen, outputLen int
	for _, ex := range examples {
		stats.Categories[orUnknown(ex.Category)]++
		stats.Sources[orUnknown(ex.Source)]++
		inputLen += utf8.RuneCountInString(ex.Input)
		outputLen += utf8.RuneCountInString(ex.Output)
	}
	stats.AvgInputLength = float64(inputLen) / float64(len(examples))
	stats.AvgOutputLength = float64(outputLen) / float64(len(examples))
	return stats
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
