package ports

import (
	"context"
	"time"

	"github.com/99minutos/admin-panel/internal/core/domain"
)

// UserFilter narrows list and count queries. Nil fields are not applied.
type UserFilter struct {
	Role   *domain.Role
	Active *bool
}

// UserPatch carries the fields to overwrite on a user document.
// UpdatedAt is always refreshed by the repository.
type UserPatch struct {
	FirstName    *string
	LastName     *string
	Role         *domain.Role
	IsActive     *bool
	PasswordHash *string
	LastLogin    *time.Time
}

// UserRepository defines persistence for user records. Emails are stored
// normalized; uniqueness is enforced by the store.
type UserRepository interface {
	// Create inserts user and returns the stored copy. Returns domain.ErrEmailTaken
	// when the email already exists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	// Update applies patch atomically and returns the updated record.
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
