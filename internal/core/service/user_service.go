package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-panel/internal/core/domain"
	"github.com/99minutos/admin-panel/internal/core/ports"
)

// UserService implements user management gated by the role policy. The actor's
// role comes from its verified token and is not re-read from the store.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

func (s *UserService) ListUsers(ctx context.Context, actor domain.Principal, filter ports.UserFilter) ([]*domain.User, error) {
	if err := authorize(actor, domain.OpListUsers); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*domain.User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out, nil
}

func (s *UserService) GetUser(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	if err := authorize(actor, domain.OpViewUser); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("get user", err)
	}
	return user.Sanitized(), nil
}

// Stats counts users overall, active users, and users per role.
func (s *UserService) Stats(ctx context.Context, actor domain.Principal) (*ports.UserStats, error) {
	if err := authorize(actor, domain.OpViewUserStats); err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, ports.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	active := true
	activeCount, err := s.repo.Count(ctx, ports.UserFilter{Active: &active})
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	stats := &ports.UserStats{Total: total, Active: activeCount, ByRole: make(map[domain.Role]int64, 4)}
	for _, role := range domain.Roles() {
		r := role
		n, err := s.repo.Count(ctx, ports.UserFilter{Role: &r})
		if err != nil {
			return nil, fmt.Errorf("user stats: %w", err)
		}
		stats.ByRole[role] = n
	}
	return stats, nil
}

// CreateUser creates an account with an explicit role. The role may not exceed
// the actor's own role.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	if err := authorize(actor, domain.OpCreateUser); err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		parsed, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}
	if err := s.checkAssignable(actor, role); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(in.Email)
	if err := validateAccount(email, in.Password, in.FirstName, in.LastName); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().
		Str("actor_id", actor.UserID).
		Str("user_id", created.ID).
		Str("role", role.String()).
		Msg("user created")
	return created.Sanitized(), nil
}

// UpdateUser applies a partial update. Besides the admin threshold it enforces:
// no role above the actor's, no changes to accounts outranking the actor, and no
// self demotion or self deactivation.
func (s *UserService) UpdateUser(ctx context.Context, actor domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if err := authorize(actor, domain.OpUpdateUser); err != nil {
		return nil, err
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("update user", err)
	}
	if target.Role.Outranks(actor.Role) {
		return nil, domain.Denied(domain.OpUpdateUser)
	}
	self := target.ID == actor.UserID

	patch := ports.UserPatch{}
	if in.FirstName != nil {
		if strings.TrimSpace(*in.FirstName) == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", domain.ErrInvalidInput)
		}
		patch.FirstName = in.FirstName
	}
	if in.LastName != nil {
		if strings.TrimSpace(*in.LastName) == "" {
			return nil, fmt.Errorf("%w: last name cannot be empty", domain.ErrInvalidInput)
		}
		patch.LastName = in.LastName
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		if role != target.Role {
			if self {
				return nil, domain.Denied(domain.OpAssignRole)
			}
			if err := s.checkAssignable(actor, role); err != nil {
				return nil, err
			}
			patch.Role = &role
		}
	}
	if in.IsActive != nil {
		if self && !*in.IsActive {
			return nil, domain.Denied(domain.OpUpdateUser)
		}
		patch.IsActive = in.IsActive
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, wrapLookup("update user", err)
	}

	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", id).Msg("user updated")
	return updated.Sanitized(), nil
}

// DeleteUser removes an account. Actors cannot delete themselves or accounts
// ranked above them.
func (s *UserService) DeleteUser(ctx context.Context, actor domain.Principal, id string) error {
	if err := authorize(actor, domain.OpDeleteUser); err != nil {
		return err
	}
	if id == actor.UserID {
		return domain.Denied(domain.OpDeleteUser)
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return wrapLookup("delete user", err)
	}
	if target.Role.Outranks(actor.Role) {
		return domain.Denied(domain.OpDeleteUser)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapLookup("delete user", err)
	}

	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", id).Msg("user deleted")
	return nil
}

// ChangePassword replaces the actor's own password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Principal, currentPassword, newPassword string) error {
	if err := authorize(actor, domain.OpChangeOwnPassword); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidToken
		}
		return fmt.Errorf("change password: %w", err)
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if _, err := s.repo.Update(ctx, user.ID, ports.UserPatch{PasswordHash: &hash}); err != nil {
		return wrapLookup("change password", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// checkAssignable requires the assign-role permission for anything above the
// default role, and never allows a role above the actor's own.
func (s *UserService) checkAssignable(actor domain.Principal, role domain.Role) error {
	if role != domain.RoleUser && !domain.CanPerform(actor.Role, domain.OpAssignRole) {
		return domain.Denied(domain.OpAssignRole)
	}
	if !actor.Role.AtLeast(role) {
		return domain.Denied(domain.OpAssignRole)
	}
	return nil
}

// wrapLookup keeps domain.ErrUserNotFound bare and annotates store failures.
func wrapLookup(op string, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
