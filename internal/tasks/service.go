package tasks

import (
	"context"
	"log/slog"
	"time"
)

// Service handles task business logic on top of the repository and the
// optional list cache.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
}

// NewService builds a Service instance. Cache may be nil.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns all tasks owned by the user.
func (s *Service) List(ctx context.Context, userID string) ([]Task, error) {
	return s.cache.FetchList(ctx, userID, func(ctx context.Context) ([]Task, error) {
		return s.repo.ListByUser(ctx, userID)
	})
}

// Create stores a new task for the user.
func (s *Service) Create(ctx context.Context, userID, title string, description *string) (*Task, error) {
	task, err := s.repo.Create(ctx, userID, title, description)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return task, nil
}

// Get fetches a single task.
func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	return s.repo.FindByID(ctx, id)
}

// Replace overwrites every mutable field of the task.
func (s *Service) Replace(ctx context.Context, id int64, title string, description *string, complete bool) (*Task, error) {
	task, err := s.repo.Replace(ctx, id, title, description, complete)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, task.UserID)
	return task, nil
}

// Apply updates only the fields present in the patch.
func (s *Service) Apply(ctx context.Context, id int64, patch Patch) (*Task, error) {
	task, err := s.repo.Apply(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, task.UserID)
	return task, nil
}

// Delete removes the task owned by ownerID.
func (s *Service) Delete(ctx context.Context, id int64, ownerID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

// PurgeCompleted deletes completed tasks untouched for the retention window
// and reports how many were removed.
func (s *Service) PurgeCompleted(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return s.repo.DeleteCompletedBefore(ctx, cutoff)
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Bump(ctx, userID); err != nil && s.logger != nil {
		s.logger.Warn("task cache bump", slog.String("user_id", userID), slog.Any("error", err))
	}
}
