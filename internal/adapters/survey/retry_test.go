package survey

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryPolicyRetryable(t *testing.T) {
	p := defaultRetryPolicy()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"too many requests", &httpStatusError{Code: http.StatusTooManyRequests}, true},
		{"bad gateway", &httpStatusError{Code: http.StatusBadGateway}, true},
		{"not found", &httpStatusError{Code: http.StatusNotFound}, false},
		{"network", timeoutErr{}, true},
		{"other", errors.New("decode"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.retryable(tt.err))
		})
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	p := retryPolicy{Attempts: 5, Backoff: 100 * time.Millisecond, MaxBackoff: time.Second}
	busy := &httpStatusError{Code: http.StatusServiceUnavailable}

	assert.Equal(t, 100*time.Millisecond, p.delay(1, busy))
	assert.Equal(t, 400*time.Millisecond, p.delay(3, busy))
	assert.Equal(t, time.Second, p.delay(5, busy))

	throttled := &httpStatusError{Code: http.StatusTooManyRequests, RetryAfter: 700 * time.Millisecond}
	assert.Equal(t, 700*time.Millisecond, p.delay(1, throttled))

	throttled.RetryAfter = time.Minute
	assert.Equal(t, time.Second, p.delay(1, throttled))
}

func TestRetryPolicyRun(t *testing.T) {
	p := retryPolicy{Attempts: 3, Backoff: time.Millisecond}
	busy := &httpStatusError{Code: http.StatusServiceUnavailable}

	calls, retries := 0, 0
	err := p.run(context.Background(), func() error {
		calls++
		return busy
	}, func(int, error) { retries++ })
	assert.ErrorIs(t, err, busy)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)

	calls = 0
	err = p.run(context.Background(), func() error {
		calls++
		if calls == 2 {
			return nil
		}
		return busy
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicyRunStopsOnCancel(t *testing.T) {
	p := retryPolicy{Attempts: 10, Backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := p.run(ctx, func() error {
		calls++
		cancel()
		return &httpStatusError{Code: http.StatusBadGateway}
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
