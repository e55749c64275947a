package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/essp-platform/essp/internal/auth"
	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/shared"
)

type stubRepo struct {
	user     *auth.User
	roles    []string
	perms    []string
	sessions map[string]int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{sessions: make(map[string]int64)}
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	return s.roles, nil
}

func (s *stubRepo) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	return s.perms, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) TouchSession(ctx context.Context, id string, expiresAt time.Time) error {
	if _, ok := s.sessions[id]; !ok {
		return shared.ErrSessionExpired
	}
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type testEnv struct {
	router   http.Handler
	sessions *shared.SessionManager
	lastSess *shared.Session
}

func newTestEnv(t *testing.T, repo auth.Repository) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "essp_session", "secret", time.Hour, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	resolver := authz.NewResolver(authz.DefaultTable())
	service := auth.NewService(repo)
	mw := auth.Middleware{Service: service, Sessions: sessions, Resolver: resolver, Logger: logger}
	handler := auth.NewHandler(logger, resolver, shared.NewCSRFManager("csrfsecret"), nil)

	env := &testEnv{sessions: sessions}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			env.lastSess = sess
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(w, req.WithContext(ctx))
			if err := sessions.Commit(ctx, w, req.WithContext(ctx), sess); err != nil {
				t.Fatalf("commit session: %v", err)
			}
		})
	})
	r.Use(mw.WithPrincipal)
	r.Route("/auth", handler.MountRoutes)
	env.router = r
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: env.sessions.CookieName(), Value: sessionID})
	}
	res := httptest.NewRecorder()
	env.router.ServeHTTP(res, req)
	return res
}

func activeUser(t *testing.T) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{ID: 7, Email: "agent@essp.test", Name: "Agent", PasswordHash: string(hashed), IsActive: true}
}

func decodeJSON(t *testing.T, res *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(res.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestSessionEndpointUnauthenticated(t *testing.T) {
	env := newTestEnv(t, newStubRepo())

	res := env.do(t, http.MethodGet, "/auth/session", nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body struct {
		Authenticated bool   `json:"authenticated"`
		Status        string `json:"status"`
		CSRFToken     string `json:"csrf_token"`
	}
	decodeJSON(t, res, &body)
	if body.Authenticated {
		t.Fatalf("expected unauthenticated session")
	}
	if body.Status != "unauthenticated" {
		t.Fatalf("expected settled status, got %q", body.Status)
	}
	if body.CSRFToken == "" {
		t.Fatalf("expected csrf token for the SPA")
	}
}

func TestLoginAndSession(t *testing.T) {
	repo := newStubRepo()
	repo.user = activeUser(t)
	repo.roles = []string{"support_agent"}
	env := newTestEnv(t, repo)

	res := env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "agent@essp.test",
		"password": "correcthorse",
	}, "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var login struct {
		Success     bool     `json:"success"`
		Roles       []string `json:"roles"`
		Permissions []string `json:"permissions"`
	}
	decodeJSON(t, res, &login)
	if !login.Success {
		t.Fatalf("expected success")
	}
	if len(login.Roles) != 1 || login.Roles[0] != "support_agent" {
		t.Fatalf("unexpected roles: %v", login.Roles)
	}

	sessionID := env.lastSess.ID
	if repo.sessions[sessionID] != 7 {
		t.Fatalf("expected session registered for user 7")
	}

	res = env.do(t, http.MethodGet, "/auth/session", nil, sessionID)
	var sess struct {
		Authenticated bool     `json:"authenticated"`
		Permissions   []string `json:"permissions"`
	}
	decodeJSON(t, res, &sess)
	if !sess.Authenticated {
		t.Fatalf("expected authenticated session")
	}
	found := false
	for _, p := range sess.Permissions {
		if p == shared.PermIncidentView {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected derived permission %s in %v", shared.PermIncidentView, sess.Permissions)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	repo.user = activeUser(t)
	env := newTestEnv(t, repo)

	res := env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "agent@essp.test",
		"password": "wrongpassword",
	}, "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeJSON(t, res, &body)
	if body.Success || body.Message == "" {
		t.Fatalf("expected failure with message, got %+v", body)
	}
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t, newStubRepo())

	res := env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "not-an-email"}, "")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	repo := newStubRepo()
	repo.user = activeUser(t)
	repo.roles = []string{"support_agent"}
	env := newTestEnv(t, repo)

	env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "agent@essp.test",
		"password": "correcthorse",
	}, "")
	sessionID := env.lastSess.ID

	res := env.do(t, http.MethodPost, "/auth/logout", nil, sessionID)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if _, ok := repo.sessions[sessionID]; ok {
		t.Fatalf("expected session record removed")
	}

	res = env.do(t, http.MethodGet, "/auth/session", nil, sessionID)
	var body struct {
		Authenticated bool `json:"authenticated"`
	}
	decodeJSON(t, res, &body)
	if body.Authenticated {
		t.Fatalf("expected unauthenticated after logout")
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	env := newTestEnv(t, newStubRepo())

	res := env.do(t, http.MethodPost, "/auth/refresh", nil, "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestProfileExplicitPermissionsOverride(t *testing.T) {
	repo := newStubRepo()
	repo.user = activeUser(t)
	repo.roles = []string{"support_agent"}
	repo.perms = []string{"report:export"}
	env := newTestEnv(t, repo)

	env.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "agent@essp.test",
		"password": "correcthorse",
	}, "")
	sessionID := env.lastSess.ID

	res := env.do(t, http.MethodGet, "/auth/profile", nil, sessionID)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var profile struct {
		UserID      int64    `json:"user_id"`
		Roles       []string `json:"roles"`
		Permissions []string `json:"permissions"`
	}
	decodeJSON(t, res, &profile)
	if profile.UserID != 7 {
		t.Fatalf("unexpected user id %d", profile.UserID)
	}
	if len(profile.Permissions) != 1 || profile.Permissions[0] != "report:export" {
		t.Fatalf("expected explicit permissions, got %v", profile.Permissions)
	}

	// The session endpoint must now report the explicit set, not the derived
	// one.
	res = env.do(t, http.MethodGet, "/auth/session", nil, sessionID)
	var sess struct {
		Permissions []string `json:"permissions"`
	}
	decodeJSON(t, res, &sess)
	if len(sess.Permissions) != 1 || sess.Permissions[0] != "report:export" {
		t.Fatalf("expected explicit permissions to override derivation, got %v", sess.Permissions)
	}
}
