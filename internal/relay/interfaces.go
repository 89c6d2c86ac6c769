package relay

import (
	"context"
	"time"

	"github.com/JakeFAU/horde-relay/internal/horde"
)

// Horde is the subset of the remote network the relay drives.
type Horde interface {
	Submit(ctx context.Context, apiKey string, req horde.GenerationRequest) (horde.AsyncResponse, error)
	Check(ctx context.Context, jobID string) (horde.CheckResponse, error)
	Status(ctx context.Context, jobID string) (horde.StatusResponse, error)
	Cancel(ctx context.Context, jobID string) error
}

// Preferences resolves the model a caller key generates with.
type Preferences interface {
	Get(key string) string
}

// Clock supplies time and poll timers (useful for testing).
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RetryPolicy decides whether a failed remote read is retried.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}
