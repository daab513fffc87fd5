package ports

import (
	"context"

	"github.com/99minutos/admin-panel/internal/core/domain"
)

// CreateUserInput carries data for an admin-created account. An empty Role
// defaults to domain.RoleUser.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Role      *string
	IsActive  *bool
}

// UserStats summarises the user base for the dashboard.
type UserStats struct {
	Total  int64
	Active int64
	ByRole map[domain.Role]int64
}

// UserService defines user-management use cases. Every call is authorized
// against the actor's token role.
type UserService interface {
	ListUsers(ctx context.Context, actor domain.Principal, filter UserFilter) ([]*domain.User, error)
	GetUser(ctx context.Context, actor domain.Principal, id string) (*domain.User, error)
	Stats(ctx context.Context, actor domain.Principal) (*UserStats, error)
	CreateUser(ctx context.Context, actor domain.Principal, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Principal, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Principal, id string) error
	ChangePassword(ctx context.Context, actor domain.Principal, currentPassword, newPassword string) error
}
