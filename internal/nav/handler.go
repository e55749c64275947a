package nav

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/essp-platform/essp/internal/auth"
	"github.com/essp-platform/essp/internal/platform/httpx"
)

// Handler serves the filtered navigation for the current principal.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers navigation routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleNavigation)
}

func (h *Handler) handleNavigation(w http.ResponseWriter, r *http.Request) {
	authorizer := auth.AuthorizerFromContext(r.Context())
	if authorizer == nil || !authorizer.IsAuthenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	entries := h.service.Visible(authorizer.Status(), authorizer.Principal())
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}
