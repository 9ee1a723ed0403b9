package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/soteria/accounts-system/internal/core/domain"
	"github.com/soteria/accounts-system/internal/core/ports"
)

// UsernameCache abstracts the advisory taken-username fast path (Redis).
// Cache failures are never fatal: the unique index on the user collection is
// the authority on uniqueness.
type UsernameCache interface {
	IsTaken(ctx context.Context, username string) (bool, error)
	MarkTaken(ctx context.Context, username string) error
}

type registrationService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	cache  UsernameCache
	log    zerolog.Logger
}

// NewRegistrationService returns a RegistrationService implementation.
func NewRegistrationService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	cache UsernameCache,
	log zerolog.Logger,
) ports.RegistrationService {
	return &registrationService{
		repo:   repo,
		hasher: hasher,
		cache:  cache,
		log:    log,
	}
}

// Register creates the account for an already field-validated request.
// The read-side uniqueness checks (steps 1–2) are optimizations that spare a
// bcrypt invocation on the common duplicate case; the authoritative duplicate
// signal is the unique-index violation at write time (step 4). Persistence is
// the single commit point — a hash produced in step 3 is never observable
// anywhere if the create fails.
func (s *registrationService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	// 1. Advisory fast path: recently registered usernames sit in Redis.
	taken, err := s.cache.IsTaken(ctx, in.Username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", in.Username).Msg("username cache check failed, falling through to store")
	} else if taken {
		return nil, domain.NewDuplicateUsername()
	}

	// 2. Advisory read against the store.
	switch _, err := s.repo.FindByUsername(ctx, in.Username); {
	case err == nil:
		return nil, domain.NewDuplicateUsername()
	case errors.Is(err, domain.ErrUserNotFound):
		// Free as far as this read can tell; the write settles any race.
	default:
		s.log.Warn().Err(err).Str("username", in.Username).Msg("uniqueness pre-check failed, relying on unique index")
	}

	// 3. Hash off the serving goroutine; the pool bounds concurrent bcrypt work.
	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 4. Single commit point. Losing a race to a concurrent registration is
	// reported identically to the pre-check result.
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.NewDuplicateUsername()
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	// 5. Best-effort cache fill for later registrations and availability probes.
	if err := s.cache.MarkTaken(ctx, created.Username); err != nil {
		s.log.Warn().Err(err).Str("username", created.Username).Msg("failed to mark username taken")
	}

	s.log.Info().
		Str("username", created.Username).
		Str("role", created.Role).
		Msg("account registered")

	return created, nil
}

// UsernameAvailable answers pre-flight availability probes. The answer is
// advisory by nature — a concurrent Register can take the name right after —
// so cache errors degrade to a store read rather than failing the probe.
func (s *registrationService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.cache.IsTaken(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("username cache check failed, falling through to store")
	} else if taken {
		return false, nil
	}

	switch _, err := s.repo.FindByUsername(ctx, username); {
	case err == nil:
		return false, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return true, nil
	default:
		return false, fmt.Errorf("availability check: %w", err)
	}
}
