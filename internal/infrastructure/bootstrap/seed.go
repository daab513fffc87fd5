// Package bootstrap prepares the credential store at startup: it guarantees a
// super_admin account exists and optionally loads accounts from a YAML seed file.
package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/99minutos/admin-panel/internal/core/domain"
	"github.com/99minutos/admin-panel/internal/core/ports"
	"github.com/99minutos/admin-panel/internal/infrastructure/security"
)

var ErrMissingAdminPassword = errors.New("bootstrap: BOOTSTRAP_ADMIN_PASSWORD is required while no super_admin exists")

// AdminAccount describes the super_admin created on an empty store.
type AdminAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type Seeder struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewSeeder(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *Seeder {
	return &Seeder{repo: repo, hasher: hasher, log: log}
}

// EnsureSuperAdmin creates acct with role super_admin when the store holds none.
// It reports whether an account was created.
func (s *Seeder) EnsureSuperAdmin(ctx context.Context, acct AdminAccount) (bool, error) {
	role := domain.RoleSuperAdmin
	n, err := s.repo.Count(ctx, ports.UserFilter{Role: &role})
	if err != nil {
		return false, fmt.Errorf("bootstrap: count super admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if acct.Password == "" {
		return false, ErrMissingAdminPassword
	}
	if len(acct.Password) < 6 || len(acct.Password) > 72 {
		return false, fmt.Errorf("bootstrap: admin password must be between 6 and 72 characters")
	}
	email := domain.NormalizeEmail(acct.Email)
	if !strings.Contains(email, "@") {
		return false, fmt.Errorf("bootstrap: invalid admin email %q", acct.Email)
	}

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil {
		return false, emailCollision(email, existing.Role)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("bootstrap: lookup admin email: %w", err)
	}

	hash, err := s.hasher.Hash(acct.Password)
	if err != nil {
		return false, fmt.Errorf("bootstrap: hash admin password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    defaultString(acct.FirstName, "Super"),
		LastName:     defaultString(acct.LastName, "Admin"),
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return false, emailCollision(email, "")
		}
		return false, fmt.Errorf("bootstrap: create super admin: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("super admin created")
	return true, nil
}

// seedFile is the YAML layout accepted by SeedFile.
//
//	users:
//	  - email: ops@example.com
//	    password_hash: $2a$10$...
//	    first_name: Ops
//	    last_name: Team
//	    role: manager
type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
	Password     string `yaml:"password"`
	FirstName    string `yaml:"first_name"`
	LastName     string `yaml:"last_name"`
	Role         string `yaml:"role"`
	Active       *bool  `yaml:"active"`
}

// SeedResult counts what a seed run did.
type SeedResult struct {
	Created int
	Skipped int
}

// SeedFile loads accounts from the YAML file at path.
func (s *Seeder) SeedFile(ctx context.Context, path string) (SeedResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SeedResult{}, fmt.Errorf("bootstrap: read seed file: %w", err)
	}
	return s.Seed(ctx, bytes.NewReader(data))
}

// Seed creates every listed account whose email is not yet registered. The
// whole document is validated before anything is written.
func (s *Seeder) Seed(ctx context.Context, r io.Reader) (SeedResult, error) {
	var doc seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return SeedResult{}, fmt.Errorf("bootstrap: decode seed file: %w", err)
	}

	users := make([]*domain.User, 0, len(doc.Users))
	for i, su := range doc.Users {
		u, err := su.toDomain()
		if err != nil {
			return SeedResult{}, fmt.Errorf("bootstrap: seed entry %d: %w", i, err)
		}
		users = append(users, u)
	}

	var res SeedResult
	for _, u := range users {
		if _, err := s.repo.FindByEmail(ctx, u.Email); err == nil {
			res.Skipped++
			continue
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return res, fmt.Errorf("bootstrap: lookup %s: %w", u.Email, err)
		}

		if _, err := s.repo.Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrEmailTaken) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("bootstrap: create %s: %w", u.Email, err)
		}
		res.Created++
	}

	s.log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("seed file applied")
	return res, nil
}

func (su seedUser) toDomain() (*domain.User, error) {
	email := domain.NormalizeEmail(su.Email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, su.Email)
	}
	if su.Password != "" {
		return nil, fmt.Errorf("%w: plaintext password for %s, use password_hash", domain.ErrInvalidInput, email)
	}
	if !security.IsHash(su.PasswordHash) {
		return nil, fmt.Errorf("%w: password_hash for %s is not a bcrypt hash", domain.ErrInvalidInput, email)
	}
	if strings.TrimSpace(su.FirstName) == "" || strings.TrimSpace(su.LastName) == "" {
		return nil, fmt.Errorf("%w: first and last name are required for %s", domain.ErrInvalidInput, email)
	}

	role := domain.RoleUser
	if su.Role != "" {
		r, err := domain.ParseRole(su.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	active := true
	if su.Active != nil {
		active = *su.Active
	}
	now := time.Now().UTC()

	return &domain.User{
		Email:        email,
		PasswordHash: su.PasswordHash,
		FirstName:    strings.TrimSpace(su.FirstName),
		LastName:     strings.TrimSpace(su.LastName),
		Role:         role,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func emailCollision(email string, role domain.Role) error {
	owner := "another"
	if role != "" {
		owner = "a " + role.String()
	}
	return fmt.Errorf("bootstrap: BOOTSTRAP_ADMIN_EMAIL %q already belongs to %s account; promote it or configure a different email: %w",
		email, owner, domain.ErrEmailTaken)
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}
