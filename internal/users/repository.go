package users

import (
	"context"

	"github.com/bissquit/runningsport/internal/domain"
)

// Repository defines the storage operations for user records.
//
// Implementations only ever match active records on reads and writes.
// Create returns ErrEmailExists when the store rejects a second active record
// for the same email; UpdateProfile and Deactivate return ErrNotApplied when no
// active record matched the id.
type Repository interface {
	ListActive(ctx context.Context) ([]domain.User, error)
	GetActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) error
	Deactivate(ctx context.Context, id string) error
}
