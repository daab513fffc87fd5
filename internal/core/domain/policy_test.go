package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestRole_Order(t *testing.T) {
	roles := Roles()
	for i := 1; i < len(roles); i++ {
		if !roles[i].Outranks(roles[i-1]) {
			t.Fatalf("expected %s to outrank %s", roles[i], roles[i-1])
		}
		if roles[i-1].AtLeast(roles[i]) {
			t.Fatalf("expected %s below %s", roles[i-1], roles[i])
		}
	}
	if !RoleAdmin.AtLeast(RoleAdmin) {
		t.Fatalf("a role must satisfy its own threshold")
	}
}

func TestRole_UnknownNeverQualifies(t *testing.T) {
	unknown := Role("root")
	if unknown.Valid() {
		t.Fatalf("unexpected valid role")
	}
	if unknown.AtLeast(RoleUser) {
		t.Fatalf("unknown role must not satisfy any threshold")
	}
	if RoleSuperAdmin.AtLeast(unknown) {
		t.Fatalf("unknown threshold must not be satisfiable")
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Manager ")
	if err != nil || r != RoleManager {
		t.Fatalf("expected manager, got %q (%v)", r, err)
	}
	if _, err := ParseRole("owner"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestCanPerform_Manager(t *testing.T) {
	cases := []struct {
		op   Operation
		want bool
	}{
		{OpViewOwnProfile, true},
		{OpChangeOwnPassword, true},
		{OpListUsers, true},
		{OpViewUser, true},
		{OpViewUserStats, true},
		{OpCreateUser, false},
		{OpUpdateUser, false},
		{OpDeleteUser, false},
		{OpAssignRole, false},
		{OpManageSystem, false},
	}
	for _, tc := range cases {
		if got := CanPerform(RoleManager, tc.op); got != tc.want {
			t.Errorf("CanPerform(manager, %s) = %v, want %v", tc.op, got, tc.want)
		}
	}
}

func TestCanPerform_Thresholds(t *testing.T) {
	if CanPerform(RoleUser, OpListUsers) {
		t.Errorf("user must not list users")
	}
	if !CanPerform(RoleAdmin, OpDeleteUser) {
		t.Errorf("admin must delete users")
	}
	if CanPerform(RoleAdmin, OpManageSystem) {
		t.Errorf("admin must not manage system")
	}
	if !CanPerform(RoleSuperAdmin, OpManageSystem) {
		t.Errorf("super_admin must manage system")
	}
	if CanPerform(RoleSuperAdmin, Operation("users.export")) {
		t.Errorf("unknown operations must be denied")
	}
}

func TestUser_Sanitized(t *testing.T) {
	u := &User{ID: "1", Email: "a@x.com", PasswordHash: "hash"}
	s := u.Sanitized()
	if s.PasswordHash != "" {
		t.Fatalf("hash not stripped")
	}
	if u.PasswordHash != "hash" {
		t.Fatalf("original must not be mutated")
	}
	if NormalizeEmail("  A@X.Com ") != "a@x.com" {
		t.Fatalf("email not normalized")
	}
}

func TestDenied_MatchesErrForbidden(t *testing.T) {
	err := fmt.Errorf("update user: %w", Denied(OpAssignRole))

	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden match")
	}
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Op != OpAssignRole {
		t.Fatalf("expected operation to be preserved, got %+v", denied)
	}
	if err.Error() != "update user: access forbidden" {
		t.Fatalf("unexpected message %q", err)
	}
}
