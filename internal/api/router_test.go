package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/admin-panel/internal/core/domain"
	"github.com/99minutos/admin-panel/internal/core/service"
	"github.com/99minutos/admin-panel/internal/infrastructure/security"
	"github.com/99minutos/admin-panel/internal/testutil"
)

type testServer struct {
	e      *echo.Echo
	repo   *testutil.UserRepo
	hasher *security.BcryptHasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := testutil.NewUserRepo()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := security.NewJWTIssuer("router-test-secret-0123456789", "admin-panel", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}

	e := NewRouter(Dependencies{
		AuthService: service.NewAuthService(repo, hasher, tokens, nil, zerolog.Nop()),
		UserService: service.NewUserService(repo, hasher, zerolog.Nop()),
		Tokens:      tokens,
		Logger:      zerolog.Nop(),
	})
	return &testServer{e: e, repo: repo, hasher: hasher}
}

func (s *testServer) seed(t *testing.T, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return s.repo.Seed(&domain.User{
		Email: email, PasswordHash: hash, FirstName: "Seed", LastName: "User",
		Role: role, IsActive: true,
	})
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.AccessToken == "" {
		t.Fatalf("login %s: missing token: %v", email, err)
	}
	return resp.AccessToken
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestRouter_RegisterLoginProfile(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/auth/register", "", `{"email":"a@x.com","password":"secret1","firstName":"Ann","lastName":"Lee"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var reg struct {
		User struct {
			Role     string `json:"role"`
			IsActive bool   `json:"isActive"`
		} `json:"user"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &reg)
	if reg.User.Role != "user" || !reg.User.IsActive {
		t.Fatalf("unexpected registered user: %+v", reg.User)
	}

	token := s.login(t, "a@x.com", "secret1")

	rec = s.do(http.MethodGet, "/auth/profile", token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"firstName":"Ann"`) {
		t.Fatalf("profile: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("password hash leaked in profile")
	}
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	s := newTestServer(t)
	body := `{"email":"a@x.com","password":"secret1","firstName":"Ann","lastName":"Lee"}`

	s.do(http.MethodPost, "/auth/register", "", body)
	rec := s.do(http.MethodPost, "/auth/register", "", strings.Replace(body, "a@x.com", "A@X.com", 1))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRouter_LoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "a@x.com", "secret1", domain.RoleUser)

	wrong := s.do(http.MethodPost, "/auth/login", "", `{"email":"a@x.com","password":"wrong"}`)
	unknown := s.do(http.MethodPost, "/auth/login", "", `{"email":"ghost@x.com","password":"secret1"}`)

	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrong.Code, unknown.Code)
	}
	if decodeError(t, wrong) != decodeError(t, unknown) {
		t.Fatalf("error messages differ")
	}
}

func TestRouter_AuthenticationRequired(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(http.MethodGet, "/users", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/auth/profile", "garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}
}

func TestRouter_UserRoleCannotListUsers(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "u@x.com", "secret1", domain.RoleUser)
	token := s.login(t, "u@x.com", "secret1")

	rec := s.do(http.MethodGet, "/users", token, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_ManagerCanViewButNotMutate(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "m@x.com", "secret1", domain.RoleManager)
	target := s.seed(t, "u@x.com", "secret1", domain.RoleUser)
	token := s.login(t, "m@x.com", "secret1")

	if rec := s.do(http.MethodGet, "/users?role=user", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/users/stats", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/users/"+target.ID, token, ""); rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, "/users/"+target.ID, token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("delete: expected 403, got %d", rec.Code)
	}
}

func TestRouter_AdminRoleCeiling(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "admin@x.com", "adminpass", domain.RoleAdmin)
	token := s.login(t, "admin@x.com", "adminpass")

	rec := s.do(http.MethodPost, "/users", token, `{"email":"root@x.com","password":"secret1","firstName":"R","lastName":"T","role":"super_admin"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("super_admin creation: expected 403, got %d", rec.Code)
	}
	if _, err := s.repo.FindByEmail(t.Context(), "root@x.com"); err == nil {
		t.Fatalf("no record should have been written")
	}

	rec = s.do(http.MethodPost, "/users", token, `{"email":"mgr@x.com","password":"secret1","firstName":"M","lastName":"G","role":"manager"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("manager creation: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_UpdateDeleteAndChangePassword(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "admin@x.com", "adminpass", domain.RoleAdmin)
	target := s.seed(t, "u@x.com", "secret1", domain.RoleUser)
	admin := s.login(t, "admin@x.com", "adminpass")

	rec := s.do(http.MethodPatch, "/users/"+target.ID, admin, `{"firstName":"Renamed","role":"manager"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"role":"manager"`) {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	user := s.login(t, "u@x.com", "secret1")
	if rec := s.do(http.MethodPost, "/users/change-password", user, `{"currentPassword":"wrong","newPassword":"newpass1"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("change password with wrong current: expected 401, got %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/users/change-password", user, `{"currentPassword":"secret1","newPassword":"newpass1"}`); rec.Code != http.StatusOK {
		t.Fatalf("change password: expected 200, got %d", rec.Code)
	}
	s.login(t, "u@x.com", "newpass1")

	if rec := s.do(http.MethodDelete, "/users/"+target.ID, admin, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/users/"+target.ID, admin, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(http.MethodPost, "/auth/register", "", `{"email":"a@x.com"`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: expected 400, got %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/auth/register", "", `{"email":"nope","password":"secret1","firstName":"A","lastName":"B"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad email: expected 422, got %d", rec.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
}
