package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurger struct {
	purged    int64
	err       error
	retention time.Duration
	calls     int
}

func (s *stubPurger) PurgeCompleted(ctx context.Context, retention time.Duration) (int64, error) {
	s.calls++
	s.retention = retention
	return s.purged, s.err
}

func TestPurgeJobHandle(t *testing.T) {
	purger := &stubPurger{purged: 7}
	job := NewPurgeJob(purger, nil)

	task, err := NewPurgeCompletedTask(720 * time.Hour)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, 720*time.Hour, purger.retention)
}

func TestPurgeJobSkipsBadPayload(t *testing.T) {
	purger := &stubPurger{}
	job := NewPurgeJob(purger, nil)

	bad := asynq.NewTask(TaskPurgeCompleted, []byte("not json"))
	assert.ErrorIs(t, job.Handle(context.Background(), bad), asynq.SkipRetry)
	assert.Zero(t, purger.calls)
}

func TestPurgeJobSkipsNonPositiveRetention(t *testing.T) {
	purger := &stubPurger{}
	job := NewPurgeJob(purger, nil)

	task, err := NewPurgeCompletedTask(0)
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
	assert.Zero(t, purger.calls)
}

func TestPurgeJobPropagatesPurgerError(t *testing.T) {
	purgeErr := errors.New("deadlock detected")
	job := NewPurgeJob(&stubPurger{err: purgeErr}, nil)

	task, err := NewPurgeCompletedTask(time.Hour)
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), purgeErr)
}
