package tasks

import "time"

// Task is a single todo item owned by exactly one user.
type Task struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Complete    bool      `json:"complete"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnerID reports the principal that created the task. Ownership is set at
// creation and never changes.
func (t *Task) OwnerID() string {
	return t.UserID
}

// Patch is a sparse update: only non-nil fields are applied. Modeling the
// updatable fields explicitly keeps arbitrary columns out of UPDATE
// statements.
type Patch struct {
	Title       *string
	Description *string
	Complete    *bool
}

// IsZero reports whether the patch carries no fields.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Complete == nil
}
