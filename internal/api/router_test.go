package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/app"
	iauth "github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/auth"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/database/testutil"
)

func newTestConfig(metrics bool) *app.Config {
	return &app.Config{
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: metrics, Endpoint: "/metrics"},
		},
	}
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "test", AccessTokenTTL: 15 * time.Minute})
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}

	router, err := NewRouter(db, jwtSvc, newTestConfig(false))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	// Health should be public
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 for /health, got %d", w.Code)
	}

	// Item permissions require a token
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/permissions/me/articles/1", nil)
	router.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("expected 401 for item permissions without token, got %d", w.Code)
	}

	// Unknown routes use the error envelope
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/nope", nil)
	router.ServeHTTP(w, req)
	if w.Code != 404 || !strings.Contains(w.Body.String(), "ROUTE_NOT_FOUND") {
		t.Fatalf("expected ROUTE_NOT_FOUND, got %d %s", w.Code, w.Body.String())
	}

	// Metrics disabled
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)
	if w.Code != 404 {
		t.Fatalf("expected 404 for disabled /metrics, got %d", w.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "metrics-secret", Issuer: "test"})
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}

	router, err := NewRouter(db, jwtSvc, newTestConfig(true))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200 for /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "inlineform_api_latency_seconds") {
		t.Fatalf("expected api latency metric in /metrics output")
	}
}

func TestNewRouterValidatesDependencies(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "secret"})
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}

	if _, err := NewRouter(nil, jwtSvc, newTestConfig(false)); err == nil {
		t.Fatal("expected error without database")
	}
	if _, err := NewRouter(db, nil, newTestConfig(false)); err == nil {
		t.Fatal("expected error without jwt service")
	}
	if _, err := NewRouter(db, jwtSvc, nil); err == nil {
		t.Fatal("expected error without config")
	}
}
