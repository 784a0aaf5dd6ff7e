package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyGateway fails the first failures calls with err
type flakyGateway struct {
	RazorpayGateway
	failures int
	err      error
	calls    int
	block    bool
}

func (g *flakyGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	g.calls++
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.calls <= g.failures {
		return nil, g.err
	}
	return &Intent{ID: "pi_ok", ClientSecret: "secret", AmountMinor: req.AmountMinor, Currency: req.Currency}, nil
}

func fastRetry(gw Gateway, retries uint64) *RetryingGateway {
	return NewRetryingGateway(gw, RetryOptions{
		Timeout:         50 * time.Millisecond,
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
	})
}

func TestRetryingGatewayRecoversFromTransientErrors(t *testing.T) {
	inner := &flakyGateway{failures: 2, err: errors.New("connection reset")}

	intent, err := fastRetry(inner, 3).CreateIntent(context.Background(), IntentRequest{AmountMinor: 2598, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "pi_ok", intent.ID)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingGatewayGivesUpAfterMaxRetries(t *testing.T) {
	inner := &flakyGateway{failures: 10, err: errors.New("connection reset")}

	_, err := fastRetry(inner, 2).CreateIntent(context.Background(), IntentRequest{AmountMinor: 100, Currency: "usd"})
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingGatewayDoesNotRetryRejections(t *testing.T) {
	inner := &flakyGateway{failures: 10, err: ErrRejected}

	_, err := fastRetry(inner, 5).CreateIntent(context.Background(), IntentRequest{AmountMinor: 100, Currency: "usd"})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryingGatewayTimesOutEachAttempt(t *testing.T) {
	inner := &flakyGateway{block: true}

	start := time.Now()
	_, err := fastRetry(inner, 1).CreateIntent(context.Background(), IntentRequest{AmountMinor: 100, Currency: "usd"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, inner.calls)
	assert.Less(t, time.Since(start), 2*time.Second)
}
