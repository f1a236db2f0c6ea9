package accounts

import (
	"fmt"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicID is the identifier placed in token subjects and task ownership
// records. It is stable for the lifetime of the account.
func (u *User) PublicID() string {
	return fmt.Sprintf("user_%d", u.ID)
}
