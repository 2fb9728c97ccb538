package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
)

// RetryProvider retries transient failures a bounded number of times with
// exponential backoff. Provider 5xx and 429 answers and transport errors are
// transient; other 4xx answers and configuration errors are not.
type RetryProvider struct {
	provider   Provider
	maxRetries int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewRetryProvider wraps provider. maxRetries <= 0 disables retries.
func NewRetryProvider(provider Provider, maxRetries int, backoff time.Duration) Provider {
	if maxRetries <= 0 {
		return provider
	}
	return &RetryProvider{
		provider:   provider,
		maxRetries: maxRetries,
		backoff:    backoff,
		sleep:      sleepCtx,
	}
}

func (r *RetryProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	delay := r.backoff
	for attempt := 0; ; attempt++ {
		resp, err := r.provider.Complete(ctx, req)
		if err == nil || attempt >= r.maxRetries || !Retryable(err) {
			return resp, err
		}

		zerolog.Ctx(ctx).Warn().Err(err).
			Str("provider", r.provider.Name()).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("transient provider failure, retrying")

		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
}

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		if e.Kind != apperr.KindProvider {
			return false
		}
		return e.Status >= 500 || e.Status == http.StatusTooManyRequests
	}
	// Unclassified errors come from the transport.
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
