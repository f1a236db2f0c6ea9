// Package jobs contains background task definitions and the Asynq worker.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPurgeCompleted removes completed tasks past the retention window.
	TaskPurgeCompleted = "tasks:purge_completed"
)

// PurgeCompletedPayload carries the retention window for a purge run.
type PurgeCompletedPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewPurgeCompletedTask constructs an Asynq task for the purge job.
func NewPurgeCompletedTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(PurgeCompletedPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPurgeCompleted, data), nil
}
