package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/essp-platform/essp/internal/authz"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "essp_http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "essp_http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestObserveDecision(t *testing.T) {
	metrics := NewMetrics()

	metrics.ObserveDecision(authz.DecisionGrantedAdmin)
	metrics.ObserveDecision(authz.DecisionDeniedRequirementUnmet)
	metrics.ObserveDecision(authz.DecisionDeniedRequirementUnmet)

	body := scrape(t, metrics)
	if !strings.Contains(body, "essp_authz_decisions_total{decision=\"granted_admin\"} 1") {
		t.Fatalf("expected granted_admin counter, got: %s", body)
	}
	if !strings.Contains(body, "essp_authz_decisions_total{decision=\"denied_requirement_unmet\"} 2") {
		t.Fatalf("expected denied counter, got: %s", body)
	}
}

func TestObserveUnknownRole(t *testing.T) {
	metrics := NewMetrics()

	table := authz.DefaultTable(authz.WithUnknownRoleObserver(metrics.ObserveUnknownRole))
	table.Lookup("ghost_role")
	table.Lookup("ghost_role")

	body := scrape(t, metrics)
	if !strings.Contains(body, "essp_authz_unknown_roles_total{role=\"ghost_role\"} 2") {
		t.Fatalf("expected unknown role counter, got: %s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics

	metrics.ObserveDecision(authz.DecisionPending)
	metrics.ObserveUnknownRole("ghost_role")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics handler, got %d", rr.Code)
	}
}
