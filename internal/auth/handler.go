package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/platform/httpx"
	"github.com/essp-platform/essp/internal/shared"
)

// Handler wires the JSON endpoints of the identity contract consumed by the
// dashboard SPA.
type Handler struct {
	logger      *slog.Logger
	resolver    *authz.Resolver
	csrfManager *shared.CSRFManager
	audit       *shared.AuditLogger
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, resolver *authz.Resolver, csrf *shared.CSRFManager, audit *shared.AuditLogger) *Handler {
	return &Handler{
		logger:      logger,
		resolver:    resolver,
		csrfManager: csrf,
		audit:       audit,
		validator:   validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/session", h.handleSession)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/refresh", h.handleRefresh)
	r.Get("/profile", h.handleProfile)
}

type sessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	Status        string   `json:"status"`
	Roles         []string `json:"roles,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
	CSRFToken     string   `json:"csrf_token,omitempty"`
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	authorizer := AuthorizerFromContext(r.Context())
	if authorizer == nil {
		httpx.JSON(w, http.StatusOK, sessionResponse{Authenticated: false, Status: authz.StatusUnauthenticated.String()})
		return
	}

	resp := sessionResponse{
		Authenticated: authorizer.IsAuthenticated(),
		Status:        authorizer.Status().String(),
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if token, err := h.csrfManager.EnsureToken(r.Context(), sess); err == nil {
			resp.CSRFToken = token
		}
	}
	if resp.Authenticated {
		principal := authorizer.Principal()
		resp.Roles = principal.Roles
		resp.Permissions = authz.PermissionList(h.resolver.EffectivePermissions(principal))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	authorizer := AuthorizerFromContext(r.Context())
	if authorizer == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, loginResponse{Success: false, Message: "email and password are required"})
		return
	}

	if err := authorizer.Login(r.Context(), req.Email, req.Password); err != nil {
		h.recordAudit(r, 0, shared.AuditActionLoginFailed, req.Email)
		httpx.JSON(w, http.StatusUnauthorized, loginResponse{Success: false, Message: "invalid email or password"})
		return
	}

	principal := authorizer.Principal()
	h.recordAudit(r, principal.UserID, shared.AuditActionLogin, req.Email)
	httpx.JSON(w, http.StatusOK, loginResponse{
		Success:     true,
		Roles:       principal.Roles,
		Permissions: authz.PermissionList(h.resolver.EffectivePermissions(principal)),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	authorizer := AuthorizerFromContext(r.Context())
	if authorizer != nil {
		principal := authorizer.Principal()
		authorizer.Logout(r.Context())
		if principal.UserID != 0 {
			h.recordAudit(r, principal.UserID, shared.AuditActionLogout, "")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	authorizer := AuthorizerFromContext(r.Context())
	if authorizer == nil || !authorizer.IsAuthenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	authorizer.Refresh(r.Context())
	if !authorizer.IsAuthenticated() {
		// Refresh fell back to the session check and the session is gone.
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session expired")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type profileResponse struct {
	UserID      int64    `json:"user_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	authorizer := AuthorizerFromContext(r.Context())
	if authorizer == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	profile, err := authorizer.FetchProfile(r.Context())
	if err != nil {
		h.logger.Error("fetch profile", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if profile == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	httpx.JSON(w, http.StatusOK, profileResponse{
		UserID:      profile.UserID,
		Email:       profile.Email,
		Name:        profile.Name,
		Roles:       profile.Roles,
		Permissions: profile.Permissions,
	})
}

func (h *Handler) recordAudit(r *http.Request, actorID int64, action, email string) {
	if h.audit == nil {
		return
	}
	entityID := email
	if entityID == "" {
		entityID = strconv.FormatInt(actorID, 10)
	}
	err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: entityID,
		Meta:     map[string]any{"ip": r.RemoteAddr},
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("audit auth event", slog.Any("error", err))
	}
}
