package ports

import "context"

// PasswordHasher is the store-owned one-way credential hash. Hash may block
// while waiting for pool capacity, which is why it takes a context; Verify is
// a pure comparison and returns a non-nil error when the plaintext does not
// match the hash.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(hash, plaintext string) error
}
