package generate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/retry"
)

// DefaultConcurrency is the admission cap on in-flight tasks.
const DefaultConcurrency = 3

// runner owns what every task shares: the admission gate, the retry policy
// and the completer.
type runner struct {
	gate      *semaphore.Weighted
	completer completion.Completer
	retry     *retry.Controller
	timeout   time.Duration
	logger    *zap.Logger
}

func newRunner(concurrency int, completer completion.Completer, ctrl *retry.Controller, timeout time.Duration, logger *zap.Logger) (*runner, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctrl == nil {
		ctrl = retry.New(retry.Config{AttemptTimeout: timeout}, logger)
	}
	return &runner{
		gate:      semaphore.NewWeighted(int64(concurrency)),
		completer: completer,
		retry:     ctrl,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

type task func(ctx context.Context, slot int) Outcome

// run starts n tasks and waits for every one of them. A task only runs once
// it holds a gate slot, and a panicking task becomes a failed outcome.
func (r *runner) run(ctx context.Context, n int, fn task) []Outcome {
	if n <= 0 {
		return []Outcome{}
	}
	outcomes := make([]Outcome, n)

	var wg sync.WaitGroup
	for slot := 0; slot < n; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			outcomes[slot] = r.guarded(ctx, slot, fn)
		}(slot)
	}
	wg.Wait()

	return outcomes
}

func (r *runner) guarded(ctx context.Context, slot int, fn task) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("task panicked", zap.Int("slot", slot), zap.Any("panic", p))
			out = Outcome{Slot: slot, Err: fmt.Errorf("task panicked: %v", p), Reason: ReasonPanic}
		}
	}()

	if err := r.gate.Acquire(ctx, 1); err != nil {
		return Outcome{Slot: slot, Err: err, Reason: ReasonCancelled}
	}
	defer r.gate.Release(1)

	if err := ctx.Err(); err != nil {
		return Outcome{Slot: slot, Err: err, Reason: ReasonCancelled}
	}

	out = fn(ctx, slot)
	out.Slot = slot
	return out
}

// complete calls the completer under the retry policy.
func (r *runner) complete(ctx context.Context, req completion.Request) (string, error) {
	if req.Timeout == 0 {
		req.Timeout = r.timeout
	}
	return retry.Do(ctx, r.retry, func(ctx context.Context) (string, error) {
		return r.completer.Complete(ctx, req)
	})
}

// classify tags a failure returned by complete.
func classify(ctx context.Context, err error) (Reason, int) {
	attempts := 0
	var retryErr *retry.Error
	if errors.As(err, &retryErr) {
		attempts = retryErr.Attempts
	}

	switch {
	case ctx.Err() != nil:
		return ReasonCancelled, attempts
	case retryErr != nil && retryErr.Timeout, retryErr == nil && retry.IsTimeout(err):
		return ReasonTimeout, attempts
	default:
		return ReasonTransport, attempts
	}
}
