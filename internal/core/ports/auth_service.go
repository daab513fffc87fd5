package ports

import (
	"context"
	"time"

	"github.com/99minutos/admin-panel/internal/core/domain"
)

// RegisterInput carries self-registration data. There is deliberately no role field.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Profile(ctx context.Context, actor domain.Principal) (*domain.User, error)
}
