package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// retrying re-attempts transient failures (rate limit, timeout) with
// exponential backoff: 1s, 2s, 4s. Auth errors, malformed responses and
// helper crashes surface immediately.
type retrying struct {
	inner  Provider
	logger *zap.Logger
	sleep  func(time.Duration)
}

func withRetry(p Provider, logger *zap.Logger) Provider {
	return &retrying{inner: p, logger: logger, sleep: time.Sleep}
}

func (r *retrying) Name() string { return r.inner.Name() }

func (r *retrying) Describe(ctx context.Context, png []byte) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := initialDelay << (attempt - 1)
			r.logger.Debug("retrying provider request",
				zap.String("provider", r.inner.Name()),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay))
			r.sleep(delay)
		}
		text, err := r.inner.Describe(ctx, png)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !Retryable(err) {
			return "", err
		}
	}
	return "", lastErr
}
