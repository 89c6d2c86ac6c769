package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/horde-relay/internal/horde"
	"github.com/JakeFAU/horde-relay/internal/metrics"
)

var (
	// ErrTimeout is returned when a job does not settle within the wait budget.
	ErrTimeout = errors.New("generation timed out")
	// ErrJobFaulted is returned when the remote network reports the job failed.
	ErrJobFaulted = errors.New("generation faulted")
	// ErrJobImpossible is returned when no remote worker can serve the job.
	ErrJobImpossible = errors.New("generation not possible")
)

const (
	defaultPollInterval  = time.Second
	defaultMaxWait       = 10 * time.Minute
	defaultCancelTimeout = 5 * time.Second
)

// Config controls Relay behavior.
type Config struct {
	PollInterval  time.Duration
	MaxWait       time.Duration
	CancelTimeout time.Duration
}

// Relay submits generations and waits for them to settle.
type Relay struct {
	horde  Horde
	prefs  Preferences
	clock  Clock
	retry  RetryPolicy
	cfg    Config
	logger *zap.Logger
}

// New constructs a Relay.
func New(
	hordeClient Horde,
	prefs Preferences,
	clock Clock,
	retry RetryPolicy,
	cfg Config,
	logger *zap.Logger,
) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.CancelTimeout <= 0 {
		cfg.CancelTimeout = defaultCancelTimeout
	}
	return &Relay{
		horde:  hordeClient,
		prefs:  prefs,
		clock:  clock,
		retry:  retry,
		cfg:    cfg,
		logger: logger,
	}
}

// GenerateImage submits req on behalf of callerKey and blocks until the job
// settles, ctx ends, or the wait budget runs out. It returns the first
// generation's image reference, or "" when the job produced none.
func (r *Relay) GenerateImage(ctx context.Context, req ImageRequest, callerKey string) (string, error) {
	start := r.clock.Now()
	metrics.IncInFlight()
	defer metrics.DecInFlight()

	image, polls, err := r.generate(ctx, req, callerKey)
	metrics.ObserveRelayJob(outcome(image, err), polls, r.clock.Now().Sub(start))
	return image, err
}

func (r *Relay) generate(parent context.Context, req ImageRequest, callerKey string) (string, int, error) {
	ctx, cancel := context.WithTimeoutCause(parent, r.cfg.MaxWait, ErrTimeout)
	defer cancel()

	payload := BuildGenerationRequest(req, r.prefs.Get(callerKey))
	r.logger.Info("submitting generation",
		zap.String("model", payload.Models[0]),
		zap.String("sampler", payload.Params.SamplerName),
		zap.Bool("karras", payload.Params.Karras),
		zap.Any("payload", payload),
	)

	job, err := r.horde.Submit(ctx, callerKey, payload)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, contextErr(ctx)
		}
		return "", 0, fmt.Errorf("submit generation: %w", err)
	}
	logger := r.logger.With(zap.String("job_id", job.ID))
	logger.Info("generation accepted", zap.Float64("kudos", job.Kudos), zap.String("message", job.Message))

	polls, err := r.waitDone(ctx, job.ID, logger)
	if err != nil {
		r.cancelRemote(parent, job.ID, logger)
		return "", polls, err
	}

	status, err := r.fetchStatus(ctx, job.ID, logger)
	if err != nil {
		return "", polls, err
	}
	logger.Info("generation finished", zap.Int("generations", len(status.Generations)), zap.Int("polls", polls))
	if len(status.Generations) == 0 {
		return "", polls, nil
	}
	return status.Generations[0].Img, polls, nil
}

// waitDone polls the check endpoint until the job is done and returns the
// number of check calls made.
func (r *Relay) waitDone(ctx context.Context, jobID string, logger *zap.Logger) (int, error) {
	polls := 0
	failures := 0
	for {
		if err := r.sleep(ctx, r.cfg.PollInterval); err != nil {
			return polls, err
		}
		polls++
		check, err := r.horde.Check(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return polls, contextErr(ctx)
			}
			failures++
			if !r.retry.ShouldRetry(err, failures) {
				return polls, fmt.Errorf("check job %s: %w", jobID, err)
			}
			metrics.ObserveRemoteRetry("check")
			logger.Warn("check failed, retrying", zap.Int("attempt", failures), zap.Error(err))
			if err := r.sleep(ctx, r.retry.Backoff(failures)); err != nil {
				return polls, err
			}
			continue
		}
		failures = 0

		logger.Info("generation check",
			zap.Bool("done", check.Done),
			zap.Bool("faulted", check.Faulted),
			zap.Int("wait_time", check.WaitTime),
			zap.Int("queue_position", check.QueuePosition),
			zap.Int("waiting", check.Waiting),
			zap.Int("processing", check.Processing),
			zap.Int("finished", check.Finished),
		)
		switch {
		case check.Faulted:
			return polls, fmt.Errorf("job %s: %w", jobID, ErrJobFaulted)
		case !check.Possible():
			return polls, fmt.Errorf("job %s: %w", jobID, ErrJobImpossible)
		case check.Done:
			return polls, nil
		}
	}
}

func (r *Relay) fetchStatus(ctx context.Context, jobID string, logger *zap.Logger) (horde.StatusResponse, error) {
	for attempt := 1; ; attempt++ {
		status, err := r.horde.Status(ctx, jobID)
		if err == nil {
			return status, nil
		}
		if ctx.Err() != nil {
			return horde.StatusResponse{}, contextErr(ctx)
		}
		if !r.retry.ShouldRetry(err, attempt) {
			return horde.StatusResponse{}, fmt.Errorf("fetch job %s: %w", jobID, err)
		}
		metrics.ObserveRemoteRetry("status")
		logger.Warn("status fetch failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		if err := r.sleep(ctx, r.retry.Backoff(attempt)); err != nil {
			return horde.StatusResponse{}, err
		}
	}
}

// cancelRemote stops an abandoned job. It runs detached from the caller so
// it still fires after a disconnect.
func (r *Relay) cancelRemote(parent context.Context, jobID string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), r.cfg.CancelTimeout)
	defer cancel()
	if err := r.horde.Cancel(ctx, jobID); err != nil {
		logger.Warn("cancel remote job failed", zap.Error(err))
		return
	}
	logger.Info("remote job canceled")
}

func (r *Relay) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return contextErr(ctx)
	case <-r.clock.After(d):
		return nil
	}
}

// contextErr maps the wait budget expiring to ErrTimeout and passes caller
// cancellation through.
func contextErr(ctx context.Context) error {
	if cause := context.Cause(ctx); errors.Is(cause, ErrTimeout) {
		return ErrTimeout
	}
	return ctx.Err()
}

func outcome(image string, err error) string {
	switch {
	case err == nil && image != "":
		return metrics.OutcomeSucceeded
	case err == nil:
		return metrics.OutcomeEmpty
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case errors.Is(err, ErrJobFaulted):
		return metrics.OutcomeFaulted
	case errors.Is(err, ErrJobImpossible):
		return metrics.OutcomeImpossible
	default:
		return metrics.OutcomeError
	}
}
