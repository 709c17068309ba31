package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Default retry settings
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// RetryPolicy retries transport failures with exponential backoff and jitter.
// Invalid replies, blocked content and configuration errors are returned
// immediately.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRetryPolicy builds a policy, substituting defaults for invalid values.
func NewRetryPolicy(maxRetries int, baseDelay time.Duration) *RetryPolicy {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Do runs call until it succeeds, fails permanently, or attempts run out.
// Only errors wrapping ErrTransport are retried. Context cancellation ends the
// loop with an ErrTransport error.
func (p *RetryPolicy) Do(
	ctx context.Context,
	logger *slog.Logger,
	call func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}

		body, err := call(ctx)
		if err == nil {
			return body, nil
		}

		if !errors.Is(err, ErrTransport) {
			logger.WarnContext(ctx, "permanent error from language model, not retrying",
				"attempt", attempt+1,
				"error", err)
			return nil, err
		}

		if attempt >= p.MaxRetries {
			logger.WarnContext(ctx, "maximum retry attempts reached",
				"max_retries", p.MaxRetries,
				"error", err)
			return nil, fmt.Errorf("exceeded maximum retry attempts (%d): %w", p.MaxRetries, err)
		}

		delay := p.backoff(attempt)
		logger.InfoContext(ctx, "retrying language model call after delay",
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
		}
	}
}

// backoff computes baseDelay * 2^attempt * (0.5 + rand[0, 0.5)).
func (p *RetryPolicy) backoff(attempt int) time.Duration {
	p.mu.Lock()
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	jitter := 0.5 + p.rng.Float64()*0.5
	p.mu.Unlock()

	return time.Duration(float64(p.BaseDelay) * math.Pow(2, float64(attempt)) * jitter)
}
