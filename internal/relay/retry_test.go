package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/horde-relay/internal/horde"
)

type timeoutErr struct{ timeout bool }

func (e timeoutErr) Error() string   { return "net" }
func (e timeoutErr) Timeout() bool   { return e.timeout }
func (e timeoutErr) Temporary() bool { return e.timeout }

var _ net.Error = timeoutErr{}

func TestExponentialRetryPolicy_ShouldRetry(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(2)
	tests := []struct {
		name    string
		err     error
		attempt int
		want    bool
	}{
		{name: "nil error", err: nil, attempt: 1, want: false},
		{name: "over budget", err: errors.New("x"), attempt: 3, want: false},
		{name: "unknown error", err: errors.New("x"), attempt: 2, want: true},
		{name: "canceled", err: fmt.Errorf("wrap: %w", context.Canceled), attempt: 1, want: false},
		{name: "deadline", err: context.DeadlineExceeded, attempt: 1, want: false},
		{name: "malformed", err: fmt.Errorf("check: %w", horde.ErrMalformedResponse), attempt: 1, want: false},
		{name: "rate limited", err: &horde.StatusError{Code: 429}, attempt: 1, want: true},
		{name: "server error", err: &horde.StatusError{Code: 503}, attempt: 1, want: true},
		{name: "client error", err: &horde.StatusError{Code: 404}, attempt: 1, want: false},
		{name: "net timeout", err: timeoutErr{timeout: true}, attempt: 1, want: true},
		{name: "net non-timeout", err: timeoutErr{timeout: false}, attempt: 1, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, p.ShouldRetry(tt.err, tt.attempt))
		})
	}
}

func TestExponentialRetryPolicy_BackoffBounded(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(10)
	for attempt := 1; attempt <= 10; attempt++ {
		d := p.Backoff(attempt)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 5*time.Second)
	}
	require.GreaterOrEqual(t, p.Backoff(1), 250*time.Millisecond)
}
