package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/admin-panel/internal/core/domain"
	"github.com/99minutos/admin-panel/internal/core/ports"
)

func TestBuildFilter(t *testing.T) {
	if got := buildFilter(ports.UserFilter{}); len(got) != 0 {
		t.Fatalf("expected empty filter, got %v", got)
	}

	role := domain.RoleManager
	active := false
	got := buildFilter(ports.UserFilter{Role: &role, Active: &active})
	if got["role"] != "manager" || got["isActive"] != false {
		t.Fatalf("unexpected filter: %v", got)
	}
}

func TestUserDocument_BSONShape(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Ann",
		LastName:     "Lee",
		Role:         "user",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"_id", "email", "password", "firstName", "lastName", "role", "isActive", "createdAt", "updatedAt"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
	if _, ok := m["lastLogin"]; ok {
		t.Errorf("lastLogin must be omitted when nil")
	}
}

func TestUserDocument_ToDomain(t *testing.T) {
	login := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	doc := userDocument{ID: primitive.NewObjectID(), Email: "a@x.com", Role: "admin", LastLogin: &login}

	u := doc.toDomain()
	if u.ID != doc.ID.Hex() || u.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.LastLogin == nil || !u.LastLogin.Equal(login) {
		t.Fatalf("last login not carried over")
	}
}
