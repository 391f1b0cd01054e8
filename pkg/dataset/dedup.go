package dataset

type pairKey struct {
	input  string
	output string
}

// Deduplicate drops every example whose normalized (input, output) pair was
// already kept. The first occurrence wins and keeps its position.
func Deduplicate(examples []TrainingExample) []TrainingExample {
	seen := make(map[pairKey]struct{}, len(examples))
	out := make([]TrainingExample, 0, len(examples))
	for _, ex := range examples {
		key := pairKey{input: normalize(ex.Input), output: normalize(ex.Output)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ex)
	}
	return out
}
