package ports

import (
	"time"

	"github.com/99minutos/admin-panel/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords with a slow salted function.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Verify returns false on mismatch or on a malformed hash.
	Verify(plain, hash string) bool
}

// TokenVerifier validates a session token without touching the store.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// TokenIssuer signs time-limited session tokens.
type TokenIssuer interface {
	TokenVerifier
	Issue(p domain.Principal) (token string, expiresAt time.Time, err error)
}
