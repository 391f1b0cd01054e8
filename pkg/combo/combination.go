// Package combo enumerates the (category, persona, topic) request space and
// tracks which combinations have already produced a scenario.
package combo

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Combination identifies one generation request configuration.
type Combination struct {
	Category string `json:"category"`
	Persona  string `json:"persona"`
	Topic    string `json:"topic"`
}

// String returns the canonical form used for hashing.
func (c Combination) String() string {
	return strings.Join([]string{c.Category, c.Persona, c.Topic}, "|")
}

// Key returns the SHA-256 hex digest of the canonical form.
// It is only a membership shortcut, the Combination itself stays the ground truth.
func (c Combination) Key() string {
	h := sha256.Sum256([]byte(c.String()))
	return hex.EncodeToString(h[:])
}

// Catalog holds the closed lists the combination space is built from.
type Catalog struct {
	Categories []string
	Personas   []string
	Topics     []string
}

// Size is |categories| x |personas| x |topics|.
func (c Catalog) Size() int {
	return len(c.Categories) * len(c.Personas) * len(c.Topics)
}

// Empty reports whether any of the lists has no entries.
func (c Catalog) Empty() bool {
	return c.Size() == 0
}

// At returns the combination for the given indexes into the three lists.
func (c Catalog) At(category, persona, topic int) Combination {
	return Combination{
		Category: c.Categories[category],
		Persona:  c.Personas[persona],
		Topic:    c.Topics[topic],
	}
}
