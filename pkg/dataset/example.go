// Package dataset turns generated scenarios into training examples and
// cleans, deduplicates and rebalances them.
//
// Every transform returns a new slice and leaves its input untouched.
package dataset

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/dialogen/pkg/scenario"
)

// TrainingExample is one flattened exchange plus the context it came from.
type TrainingExample struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`

	Category         string `json:"scenario_type"`
	Persona          string `json:"persona,omitempty"`
	Topic            string `json:"topic,omitempty"`
	Source           string `json:"source"`
	InstructionStyle string `json:"instruction_style,omitempty"`
}

// InstructionStyle selects how the instruction text is phrased.
type InstructionStyle string

const (
	// StyleGeneric is the same short instruction for every example.
	StyleGeneric InstructionStyle = "generic"
	// StylePersona names the persona, topic and scenario type.
	StylePersona InstructionStyle = "persona"
)

// GenericInstruction is the instruction used by StyleGeneric.
const GenericInstruction = "Respond to the player's message in a friendly, conversational way. You are a helpful NPC."

// Instruction renders the instruction for one example.
func Instruction(style InstructionStyle, persona, topic, category string) string {
	if style != StylePersona || persona == "" {
		return GenericInstruction
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, an NPC in a game world.", persona)
	if topic != "" {
		fmt.Fprintf(&b, " The conversation is about %s.", topic)
	}
	if category != "" {
		fmt.Fprintf(&b, " Scenario: %s.", strings.ReplaceAll(category, "_", " "))
	}
	b.WriteString(" Respond to the player's message in character, in a friendly, conversational way.")
	return b.String()
}

// FlattenOptions carries the provenance tags stamped on every example.
type FlattenOptions struct {
	Source string
	Style  InstructionStyle
}

// Flatten emits one example per exchange, in scenario then exchange order.
func Flatten(scenarios []*scenario.Scenario, opts FlattenOptions) []TrainingExample {
	style := opts.Style
	if style == "" {
		style = StyleGeneric
	}

	var out []TrainingExample
	for _, s := range scenarios {
		if s == nil {
			continue
		}
		instruction := Instruction(style, s.Persona, s.Topic, s.Category)
		for _, ex := range s.Exchanges {
			out = append(out, TrainingExample{
				Instruction:      instruction,
				Input:            ex.Player,
				Output:           ex.NPC,
				Category:         s.Category,
				Persona:          s.Persona,
				Topic:            s.Topic,
				Source:           opts.Source,
				InstructionStyle: string(style),
			})
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
