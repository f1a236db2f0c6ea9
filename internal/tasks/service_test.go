package tasks

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/taskvault/taskvault/testing"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	tasks  map[int64]*Task
	nextID int64

	// Error injection
	findErr error
	listErr error

	// Call tracking
	findCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{tasks: make(map[int64]*Task), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, userID, title string, description *string) (*Task, error) {
	for _, t := range m.tasks {
		if t.UserID == userID && t.Title == title {
			return nil, ErrDuplicate
		}
	}
	now := time.Now().UTC()
	task := &Task{
		ID:          m.nextID,
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.tasks[task.ID] = task
	m.nextID++
	copied := *task
	return &copied, nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*Task, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *mockRepository) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	list := make([]Task, 0)
	for _, t := range m.tasks {
		if t.UserID == userID {
			list = append(list, *t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *mockRepository) Replace(ctx context.Context, id int64, title string, description *string, complete bool) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, t := range m.tasks {
		if t.ID != id && t.UserID == task.UserID && t.Title == title {
			return nil, ErrDuplicate
		}
	}
	task.Title = title
	task.Description = description
	task.Complete = complete
	task.UpdatedAt = time.Now().UTC()
	copied := *task
	return &copied, nil
}

func (m *mockRepository) Apply(ctx context.Context, id int64, patch Patch) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Complete != nil {
		task.Complete = *patch.Complete
	}
	task.UpdatedAt = time.Now().UTC()
	copied := *task
	return &copied, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	for id, t := range m.tasks {
		if t.Complete && t.UpdatedAt.Before(cutoff) {
			delete(m.tasks, id)
			purged++
		}
	}
	return purged, nil
}

var _ RepositoryPort = (*mockRepository)(nil)

// ============================================================================
// SERVICE TESTS
// ============================================================================

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestServiceCreateAndGet(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	task, err := svc.Create(context.Background(), "user123", "Write report", strptr("quarterly numbers"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, "user123", task.UserID)
	assert.False(t, task.Complete)
	require.NotNil(t, task.Description)
	assert.Equal(t, "quarterly numbers", *task.Description)

	fetched, err := svc.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, fetched.Title)
}

func TestServiceCreateDuplicateTitle(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "user123", "Write report", nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "user123", "Write report", nil)
	assert.ErrorIs(t, err, ErrDuplicate)

	// The same title is fine for a different user.
	_, err = svc.Create(context.Background(), "user456", "Write report", nil)
	assert.NoError(t, err)
}

func TestServiceListScopedToUser(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "user123", "a", nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "user123", "b", nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "user456", "c", nil)
	require.NoError(t, err)

	list, err := svc.List(context.Background(), "user123")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Title)
	assert.Equal(t, "b", list[1].Title)
}

func TestServiceReplace(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	task, err := svc.Create(context.Background(), "user123", "old title", strptr("old desc"))
	require.NoError(t, err)

	updated, err := svc.Replace(context.Background(), task.ID, "new title", nil, true)
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Nil(t, updated.Description)
	assert.True(t, updated.Complete)
}

func TestServiceApplyPartial(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	task, err := svc.Create(context.Background(), "user123", "keep me", strptr("keep me too"))
	require.NoError(t, err)

	updated, err := svc.Apply(context.Background(), task.ID, Patch{Complete: boolptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "keep me", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "keep me too", *updated.Description)
	assert.True(t, updated.Complete)
}

func TestServiceApplyMissingTask(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	_, err := svc.Apply(context.Background(), 99999, Patch{Complete: boolptr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceDelete(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	task, err := svc.Create(context.Background(), "user123", "ephemeral", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), task.ID, "user123"))
	_, err = svc.Get(context.Background(), task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), task.ID, "user123"), ErrNotFound)
}

func TestServicePurgeCompleted(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	old, err := svc.Create(context.Background(), "user123", "old done", nil)
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), old.ID, Patch{Complete: boolptr(true)})
	require.NoError(t, err)
	repo.tasks[old.ID].UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)

	fresh, err := svc.Create(context.Background(), "user123", "fresh done", nil)
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), fresh.ID, Patch{Complete: boolptr(true)})
	require.NoError(t, err)

	open, err := svc.Create(context.Background(), "user123", "still open", nil)
	require.NoError(t, err)
	repo.tasks[open.ID].UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)

	purged, err := svc.PurgeCompleted(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	list, err := svc.List(context.Background(), "user123")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestServicePropagatesRepositoryErrors(t *testing.T) {
	repo := newMockRepository()
	repo.listErr = errors.New("connection refused")
	svc := NewService(repo, nil, nil)

	_, err := svc.List(context.Background(), "user123")
	assert.ErrorIs(t, err, repo.listErr)
}
