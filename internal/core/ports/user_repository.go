package ports

import (
	"context"

	"github.com/soteria/accounts-system/internal/core/domain"
)

// UserRepository defines the interface for account persistence.
//
// Create must enforce username uniqueness at write time and return
// domain.ErrUserExists on a conflict; FindByUsername returns
// domain.ErrUserNotFound when no account matches.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
