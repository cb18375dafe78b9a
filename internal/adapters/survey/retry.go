package survey

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"
)

// retryPolicy decides which survey calls are repeated and how long to wait
// between attempts. Waits double from Backoff up to MaxBackoff; a Retry-After
// header on a 429 or 503 overrides the computed wait, still capped.
type retryPolicy struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{Attempts: 4, Backoff: 200 * time.Millisecond, MaxBackoff: 5 * time.Second}
}

// retryable reports whether err is worth another attempt.
func (p retryPolicy) retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// delay is the wait before attempt+1.
func (p retryPolicy) delay(attempt int, err error) time.Duration {
	d := p.Backoff << (attempt - 1)
	var he *httpStatusError
	if errors.As(err, &he) && he.RetryAfter > 0 {
		d = he.RetryAfter
	}
	if p.MaxBackoff > 0 && (d > p.MaxBackoff || d <= 0) {
		d = p.MaxBackoff
	}
	return d
}

// run calls fn until it succeeds, fails permanently, runs out of attempts or
// ctx ends. onRetry sees each error that is about to be retried.
func (p retryPolicy) run(ctx context.Context, fn func() error, onRetry func(attempt int, err error)) error {
	attempts := max(p.Attempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts || !p.retryable(err) {
			return err
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}

		timer := time.NewTimer(p.delay(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// parseRetryAfter reads a delay-seconds Retry-After value. HTTP dates are
// ignored.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
