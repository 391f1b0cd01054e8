package generate_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/config"
	"github.com/papercomputeco/dialogen/pkg/generate"
	"github.com/papercomputeco/dialogen/pkg/retry"
)

const validScenario = `{"exchanges": [{"player": "Any work for a sellsword?", "npc": "The mill needs guarding tonight."}]}`

// fakeCompleter records concurrency and call counts and answers through respond.
type fakeCompleter struct {
	respond func(req completion.Request) (string, error)
	delay   time.Duration

	calls    atomic.Int64
	inFlight atomic.Int64
	peak     atomic.Int64

	mu       sync.Mutex
	requests []completion.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req completion.Request) (string, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.respond(req)
}

func always(response string) func(completion.Request) (string, error) {
	return func(completion.Request) (string, error) { return response, nil }
}

func testCatalog(categories, personas, topics int) config.Catalog {
	var catalog config.Catalog
	for i := 0; i < categories; i++ {
		catalog.Categories = append(catalog.Categories, config.Category{
			Name:        fmt.Sprintf("category_%d", i),
			Description: fmt.Sprintf("Generate scenario type %d.", i),
		})
	}
	for i := 0; i < personas; i++ {
		catalog.Personas = append(catalog.Personas, fmt.Sprintf("persona %d", i))
	}
	for i := 0; i < topics; i++ {
		catalog.Topics = append(catalog.Topics, fmt.Sprintf("topic %d", i))
	}
	return catalog
}

func fastRetry(attempts int) *retry.Controller {
	return retry.New(retry.Config{MaxAttempts: attempts, Unit: time.Millisecond}, nil)
}

func newPrompts(catalog config.Catalog) *generate.PromptBuilder {
	prompts, err := generate.NewPromptBuilder(config.Default().Prompt, catalog)
	Expect(err).NotTo(HaveOccurred())
	return prompts
}
