package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-panel/internal/api/middleware"
	"github.com/99minutos/admin-panel/internal/core/domain"
	"github.com/99minutos/admin-panel/internal/core/ports"
)

type stubUserService struct {
	listFn     func(ctx context.Context, actor domain.Principal, f ports.UserFilter) ([]*domain.User, error)
	getFn      func(ctx context.Context, actor domain.Principal, id string) (*domain.User, error)
	statsFn    func(ctx context.Context, actor domain.Principal) (*ports.UserStats, error)
	createFn   func(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (*domain.User, error)
	updateFn   func(ctx context.Context, actor domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn   func(ctx context.Context, actor domain.Principal, id string) error
	passwordFn func(ctx context.Context, actor domain.Principal, current, next string) error
}

func (s *stubUserService) ListUsers(ctx context.Context, actor domain.Principal, f ports.UserFilter) ([]*domain.User, error) {
	return s.listFn(ctx, actor, f)
}

func (s *stubUserService) GetUser(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubUserService) Stats(ctx context.Context, actor domain.Principal) (*ports.UserStats, error) {
	return s.statsFn(ctx, actor)
}

func (s *stubUserService) CreateUser(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubUserService) UpdateUser(ctx context.Context, actor domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubUserService) DeleteUser(ctx context.Context, actor domain.Principal, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubUserService) ChangePassword(ctx context.Context, actor domain.Principal, current, next string) error {
	return s.passwordFn(ctx, actor, current, next)
}

var adminActor = domain.Principal{UserID: "admin-1", Email: "admin@x.com", Role: domain.RoleAdmin}

func authedRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := jsonRequest(e, method, target, body)
	middleware.SetPrincipal(c, adminActor)
	return c, rec
}

func TestUserHandler_List_WithFilters(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		listFn: func(ctx context.Context, actor domain.Principal, f ports.UserFilter) ([]*domain.User, error) {
			if f.Role == nil || *f.Role != domain.RoleManager {
				t.Fatalf("role filter not parsed: %+v", f)
			}
			if f.Active == nil || *f.Active {
				t.Fatalf("active filter not parsed: %+v", f)
			}
			return []*domain.User{{ID: "u2", Email: "m@x.com", Role: domain.RoleManager}}, nil
		},
	})

	c, rec := authedRequest(e, http.MethodGet, "/users?role=Manager&active=false", "")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0].Email != "m@x.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_List_BadFilters(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{})

	c, _ := authedRequest(e, http.MethodGet, "/users?role=owner", "")
	if err := h.List(c); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	c, _ = authedRequest(e, http.MethodGet, "/users?active=maybe", "")
	assertHTTPError(t, h.List(c), http.StatusUnprocessableEntity)
}

func TestUserHandler_Stats(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		statsFn: func(ctx context.Context, actor domain.Principal) (*ports.UserStats, error) {
			return &ports.UserStats{Total: 5, Active: 4, ByRole: map[domain.Role]int64{domain.RoleAdmin: 2}}, nil
		},
	})

	c, rec := authedRequest(e, http.MethodGet, "/users/stats", "")
	if err := h.Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Inactive != 1 || resp.ByRole["admin"] != 2 || resp.ByRole["super_admin"] != 0 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
	if len(resp.ByRole) != len(domain.Roles()) {
		t.Fatalf("expected every role present, got %+v", resp.ByRole)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		getFn: func(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	})

	c, _ := authedRequest(e, http.MethodGet, "/users/x", "")
	c.SetParamNames("id")
	c.SetParamValues("x")

	if err := h.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Create(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		createFn: func(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
			if actor != adminActor || in.Role != "manager" {
				t.Fatalf("unexpected call: %+v %+v", actor, in)
			}
			return &domain.User{ID: "u9", Email: in.Email, Role: domain.RoleManager, IsActive: true}, nil
		},
	})

	c, rec := authedRequest(e, http.MethodPost, "/users",
		`{"email":"m@x.com","password":"secret1","firstName":"M","lastName":"G","role":"manager"}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestUserHandler_Create_UnknownRole(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{})

	c, _ := authedRequest(e, http.MethodPost, "/users",
		`{"email":"m@x.com","password":"secret1","firstName":"M","lastName":"G","role":"owner"}`)

	assertHTTPError(t, h.Create(c), http.StatusUnprocessableEntity)
}

func TestUserHandler_Update_PartialFields(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		updateFn: func(ctx context.Context, actor domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if id != "u2" {
				t.Fatalf("unexpected id %q", id)
			}
			if in.FirstName != nil || in.Role != nil || in.IsActive == nil || *in.IsActive {
				t.Fatalf("unexpected patch: %+v", in)
			}
			return &domain.User{ID: "u2", Email: "u@x.com", Role: domain.RoleUser}, nil
		},
	})

	c, rec := authedRequest(e, http.MethodPatch, "/users/u2", `{"isActive":false}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	e := newTestEcho()
	var deleted string
	h := NewUserHandler(&stubUserService{
		deleteFn: func(ctx context.Context, actor domain.Principal, id string) error {
			deleted = id
			return nil
		},
	})

	c, rec := authedRequest(e, http.MethodDelete, "/users/u2", "")
	c.SetParamNames("id")
	c.SetParamValues("u2")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != "u2" {
		t.Fatalf("unexpected result: %d %q", rec.Code, deleted)
	}
}

func TestUserHandler_Delete_Forbidden(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		deleteFn: func(ctx context.Context, actor domain.Principal, id string) error {
			return domain.ErrForbidden
		},
	})

	c, _ := authedRequest(e, http.MethodDelete, "/users/admin-1", "")
	c.SetParamNames("id")
	c.SetParamValues("admin-1")

	if err := h.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	e := newTestEcho()
	h := NewUserHandler(&stubUserService{
		passwordFn: func(ctx context.Context, actor domain.Principal, current, next string) error {
			if current != "secret1" || next != "newpass1" {
				t.Fatalf("unexpected passwords")
			}
			return nil
		},
	})

	c, rec := authedRequest(e, http.MethodPost, "/users/change-password", `{"currentPassword":"secret1","newPassword":"newpass1"}`)

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = authedRequest(e, http.MethodPost, "/users/change-password", `{"currentPassword":"secret1","newPassword":"x"}`)
	assertHTTPError(t, h.ChangePassword(c), http.StatusUnprocessableEntity)
}
