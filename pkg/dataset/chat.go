package dataset

// ChatRecord is the single-text format used for causal LM fine-tuning.
type ChatRecord struct {
	Text     string `json:"text"`
	Category string `json:"scenario_type"`
	Source   string `json:"source"`
}

// ToChatText renders each example as a Human/Assistant transcript.
func ToChatText(examples []TrainingExample) []ChatRecord {
	out := make([]ChatRecord, 0, len(examples))
	for _, ex := range examples {
		out = append(out, ChatRecord{
			Text:     "### Human:\n" + ex.Input + "\n\n### Assistant:\n" + ex.Output,
			Category: orUnknown(ex.Category),
			Source:   orUnknown(ex.Source),
		})
	}
	return out
}
