package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// ProfilePatch carries the mutable profile fields. Nil means "leave as is".
type ProfilePatch struct {
	Name  *string
	Email *string
}

// Repository persists user credential records.
type Repository interface {
	// Create inserts a new user. Returns common.ErrorConflict when the
	// email is already taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail returns the user with the given normalized email,
	// or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateProfile applies patch to the user's profile fields. Returns
	// common.ErrorConflict when the new email is already taken and
	// common.ErrorNotFound when no such user exists.
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error)

	// SetResetToken records a pending password reset, overwriting any
	// previous one.
	SetResetToken(ctx context.Context, id string, tokenHash string, expiry time.Time) error

	// ConsumeResetToken sets a new password hash and clears the pending
	// reset in one statement, matching only a stored token hash whose
	// expiry is after now. Returns common.ErrorNotFound when nothing
	// matched.
	ConsumeResetToken(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (*models.User, error)

	// SetAvatarKey records the object-storage key of the user's avatar.
	SetAvatarKey(ctx context.Context, id string, key string) error
}
