package domain

import "errors"

var ErrForbidden = errors.New("access forbidden")

// Operation names an action guarded by the role policy.
type Operation string

const (
	OpViewOwnProfile    Operation = "profile.view"
	OpChangeOwnPassword Operation = "password.change"
	OpListUsers         Operation = "users.list"
	OpViewUser          Operation = "users.view"
	OpViewUserStats     Operation = "users.stats"
	OpCreateUser        Operation = "users.create"
	OpUpdateUser        Operation = "users.update"
	OpDeleteUser        Operation = "users.delete"
	OpAssignRole        Operation = "users.assign_role"
	OpManageSystem      Operation = "system.manage" // reserved
)

// minimumRole is a flat threshold table: an actor may perform an operation when
// its role is at or above the listed role.
var minimumRole = map[Operation]Role{
	OpViewOwnProfile:    RoleUser,
	OpChangeOwnPassword: RoleUser,
	OpListUsers:         RoleManager,
	OpViewUser:          RoleManager,
	OpViewUserStats:     RoleManager,
	OpCreateUser:        RoleAdmin,
	OpUpdateUser:        RoleAdmin,
	OpDeleteUser:        RoleAdmin,
	OpAssignRole:        RoleAdmin,
	OpManageSystem:      RoleSuperAdmin,
}

// DeniedError is an ErrForbidden that records which operation was refused.
type DeniedError struct {
	Op Operation
}

func (e *DeniedError) Error() string { return ErrForbidden.Error() }

func (e *DeniedError) Unwrap() error { return ErrForbidden }

// Denied returns an error matching ErrForbidden for op.
func Denied(op Operation) error {
	return &DeniedError{Op: op}
}

// MinimumRole returns the lowest role allowed to perform op.
func MinimumRole(op Operation) (Role, bool) {
	r, ok := minimumRole[op]
	return r, ok
}

// CanPerform reports whether actor may perform op. Unknown operations are denied.
func CanPerform(actor Role, op Operation) bool {
	min, ok := minimumRole[op]
	if !ok {
		return false
	}
	return actor.AtLeast(min)
}
