package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/worker"
)

// Hasher hashes and verifies passwords with bcrypt. Both operations are
// CPU-bound and intentionally slow, so they always run through the bounded
// worker pool instead of the request goroutine's dispatch path.
type Hasher struct {
	pool *worker.Pool
	cost int
}

// NewHasher builds a hasher with the given pool and bcrypt cost.
func NewHasher(pool *worker.Pool, cost int) *Hasher {
	return &Hasher{pool: pool, cost: cost}
}

// Hash generates a salted bcrypt hash of the password. The salt is embedded
// in the output, so verification needs nothing beyond the stored string.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	var (
		hashed []byte
		err    error
	)
	if poolErr := h.pool.Do(ctx, func() {
		hashed, err = bcrypt.GenerateFromPassword([]byte(password), h.cost)
	}); poolErr != nil {
		return "", poolErr
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash. Malformed or
// empty hashes, internal bcrypt failures, and pool wait cancellation all
// degrade to false: a password check must behave as "wrong password" rather
// than reveal why it failed.
func (h *Hasher) Verify(ctx context.Context, password, hash string) bool {
	if hash == "" {
		return false
	}
	var match bool
	if err := h.pool.Do(ctx, func() {
		match = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}); err != nil {
		return false
	}
	return match
}

// Cost reports the configured bcrypt cost.
func (h *Hasher) Cost() int {
	return h.cost
}
