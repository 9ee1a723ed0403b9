package ports

import (
	"context"

	"github.com/soteria/accounts-system/internal/core/domain"
)

// RegisterInput carries the field-validated values of one registration
// request. It has no identity and exists only for the duration of the request.
type RegisterInput struct {
	Username string
	Password string
	Role     string
}

type RegistrationService interface {
	// Register enforces username uniqueness, hashes the password, and persists
	// the account. A taken username surfaces as *domain.ValidationError; any
	// other failure is internal.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// UsernameAvailable reports whether no existing account holds username.
	// Advisory: a positive answer can be invalidated by a concurrent Register.
	UsernameAvailable(ctx context.Context, username string) (bool, error)
}
