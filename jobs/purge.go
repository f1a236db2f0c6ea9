package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// CompletedPurger deletes completed tasks older than the retention window.
type CompletedPurger interface {
	PurgeCompleted(ctx context.Context, retention time.Duration) (int64, error)
}

// PurgeJob wires the purge handler to the task service.
type PurgeJob struct {
	purger CompletedPurger
	logger *slog.Logger
}

// NewPurgeJob constructs a PurgeJob.
func NewPurgeJob(purger CompletedPurger, logger *slog.Logger) *PurgeJob {
	return &PurgeJob{purger: purger, logger: logger}
}

// Handle processes TaskPurgeCompleted tasks. The delete is idempotent, so a
// retried run after a partial failure is harmless.
func (j *PurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PurgeCompletedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Retention <= 0 {
		return asynq.SkipRetry
	}

	purged, err := j.purger.PurgeCompleted(ctx, payload.Retention)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("purge completed tasks", slog.Any("error", err))
		}
		return err
	}
	if j.logger != nil {
		j.logger.Info("purged completed tasks",
			slog.Int64("count", purged),
			slog.Duration("retention", payload.Retention),
		)
	}
	return nil
}
