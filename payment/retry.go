package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryOptions bounds intent creation
type RetryOptions struct {
	// Timeout applies to each attempt.
	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries uint64
	// InitialInterval is the first backoff delay; defaults to 200ms.
	InitialInterval time.Duration
}

// RetryingGateway wraps a Gateway so intent creation gets a per-attempt timeout
// and bounded exponential retry. Rejections and cancellation are not retried.
type RetryingGateway struct {
	Gateway
	opts RetryOptions
}

func NewRetryingGateway(gw Gateway, opts RetryOptions) *RetryingGateway {
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 200 * time.Millisecond
	}
	return &RetryingGateway{Gateway: gw, opts: opts}
}

func (g *RetryingGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	var intent *Intent
	attempts := 0

	operation := func() error {
		attempts++
		attemptCtx := ctx
		if g.opts.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
			defer cancel()
		}

		in, err := g.Gateway.CreateIntent(attemptCtx, req)
		if err != nil {
			if errors.Is(err, ErrRejected) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		intent = in
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = g.opts.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, g.opts.MaxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("create payment intent after %d attempt(s): %w", attempts, err)
	}
	return intent, nil
}
