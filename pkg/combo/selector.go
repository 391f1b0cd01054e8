package combo

import (
	"errors"
	"math/rand"
	"sync"
)

// DefaultMaxAttempts bounds random probing before a slot gives up.
const DefaultMaxAttempts = 50

// ErrCombinationExhausted is returned when no unused combination was found
// within the attempt bound.
var ErrCombinationExhausted = errors.New("combination space exhausted")

// Selector draws unused combinations at random. All tracker access goes
// through its mutex, so Claim is a single check-then-reserve critical section.
type Selector struct {
	catalog     Catalog
	maxAttempts int

	mu       sync.Mutex
	rng      *rand.Rand
	tracker  *Tracker
	inFlight map[string]struct{}
}

// NewSelector creates a selector over catalog. A maxAttempts of zero or less
// uses DefaultMaxAttempts.
func NewSelector(catalog Catalog, tracker *Tracker, rng *rand.Rand, maxAttempts int) *Selector {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Selector{
		catalog:     catalog,
		maxAttempts: maxAttempts,
		rng:         rng,
		tracker:     tracker,
		inFlight:    make(map[string]struct{}),
	}
}

// Claim picks a combination that is neither generated nor held by another
// task and reserves it for the caller.
func (s *Selector) Claim() (Combination, error) {
	if s.catalog.Empty() {
		return Combination{}, ErrCombinationExhausted
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		c := s.catalog.At(
			s.rng.Intn(len(s.catalog.Categories)),
			s.rng.Intn(len(s.catalog.Personas)),
			s.rng.Intn(len(s.catalog.Topics)),
		)
		if s.tracker.IsDuplicate(c) {
			continue
		}
		key := c.Key()
		if _, busy := s.inFlight[key]; busy {
			continue
		}
		s.inFlight[key] = struct{}{}
		return c, nil
	}

	return Combination{}, ErrCombinationExhausted
}

// Commit marks a claimed combination as generated.
func (s *Selector) Commit(c Combination) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, c.Key())
	s.tracker.MarkGenerated(c)
}

// Release gives a claimed combination back without marking it.
func (s *Selector) Release(c Combination) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, c.Key())
}

// IsDuplicate reports whether c has been committed.
func (s *Selector) IsDuplicate(c Combination) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tracker.IsDuplicate(c)
}

// Generated returns how many combinations have been committed.
func (s *Selector) Generated() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tracker.Len()
}
