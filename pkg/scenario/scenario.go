// Package scenario holds generated dialogue scenarios and turns raw model
// output into them.
package scenario

import (
	"strings"

	"github.com/papercomputeco/dialogen/pkg/combo"
)

// Exchange is one player turn and the NPC's reply.
type Exchange struct {
	Player string `json:"player"`
	NPC    string `json:"npc"`
}

// Valid reports whether both sides are non-empty after trimming.
func (e Exchange) Valid() bool {
	return strings.TrimSpace(e.Player) != "" && strings.TrimSpace(e.NPC) != ""
}

// Scenario is the parsed result of one successful generation task.
// Exchanges keep conversational order.
type Scenario struct {
	Category  string     `json:"category"`
	Persona   string     `json:"persona"`
	Topic     string     `json:"topic"`
	Exchanges []Exchange `json:"exchanges"`
}

// New builds a Scenario for c from already-validated exchanges.
func New(c combo.Combination, exchanges []Exchange) *Scenario {
	return &Scenario{
		Category:  c.Category,
		Persona:   c.Persona,
		Topic:     c.Topic,
		Exchanges: exchanges,
	}
}

// Combination returns the combination the scenario was generated for.
func (s *Scenario) Combination() combo.Combination {
	return combo.Combination{Category: s.Category, Persona: s.Persona, Topic: s.Topic}
}
