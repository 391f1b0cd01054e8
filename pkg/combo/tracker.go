package combo

// Tracker remembers which combinations already produced a scenario.
// It is not safe for concurrent use; Selector serialises access to it.
type Tracker struct {
	seen map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// IsDuplicate reports whether c has been marked generated.
func (t *Tracker) IsDuplicate(c Combination) bool {
	_, ok := t.seen[c.Key()]
	return ok
}

// MarkGenerated records c. Marks are never removed.
func (t *Tracker) MarkGenerated(c Combination) {
	t.seen[c.Key()] = struct{}{}
}

// Len returns the number of marked combinations.
func (t *Tracker) Len() int {
	return len(t.seen)
}
