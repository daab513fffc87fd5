package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the single authorization level attached to a user.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleUser       Role = "user"
)

var ErrInvalidRole = errors.New("invalid role")

// roleRank defines the strict total order super_admin > admin > manager > user.
var roleRank = map[Role]int{
	RoleUser:       1,
	RoleManager:    2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Roles returns every role from lowest to highest privilege.
func Roles() []Role {
	return []Role{RoleUser, RoleManager, RoleAdmin, RoleSuperAdmin}
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank returns the position of r in the role order, 0 for unknown roles.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether r is ranked at or above min. Unknown roles never qualify.
func (r Role) AtLeast(min Role) bool {
	if !r.Valid() || !min.Valid() {
		return false
	}
	return r.Rank() >= min.Rank()
}

// Outranks reports whether r is strictly above other.
func (r Role) Outranks(other Role) bool {
	return r.Valid() && r.Rank() > other.Rank()
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}
