package completion

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited spaces out calls to the wrapped Completer.
type RateLimited struct {
	next    Completer
	limiter *rate.Limiter
}

// NewRateLimited allows requestsPerMinute calls per minute, with no burst.
func NewRateLimited(next Completer, requestsPerMinute int) *RateLimited {
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// Complete waits for a token, then delegates.
func (r *RateLimited) Complete(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	return r.next.Complete(ctx, req)
}
