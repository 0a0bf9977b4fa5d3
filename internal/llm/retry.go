package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 10 * time.Second
)

// RetryPolicy bounds each attempt with Timeout and retries transient
// failures up to MaxRetries times with jittered exponential backoff.
type RetryPolicy struct {
	MaxRetries      int
	Timeout         time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Do runs fn until it succeeds, fails permanently, or retries run out.
func (p RetryPolicy) Do(ctx context.Context, log zerolog.Logger, op string, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultInitialInterval
	}
	b.MaxInterval = p.MaxInterval
	if b.MaxInterval <= 0 {
		b.MaxInterval = defaultMaxInterval
	}
	b.MaxElapsedTime = 0

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		attemptCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}

		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("llm call failed, retrying")
	}

	return backoff.RetryNotify(operation, policy, notify)
}

// isRetryable reports whether err is worth another attempt. Client errors
// other than rate limiting are final.
func isRetryable(err error) bool {
	if errors.Is(err, ErrEmptyText) || errors.Is(err, ErrWrongDimensions) || errors.Is(err, ErrEmptyResponse) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	if code == 0 {
		return true
	}
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
