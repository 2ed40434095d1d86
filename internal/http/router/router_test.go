package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "papex_backend/internal/http"
	"papex_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string              { return ":0" }
func (testConfig) GetCORSAllowAll() bool            { return false }
func (testConfig) GetCORSOrigins() []string         { return []string{"http://localhost:3000"} }
func (testConfig) GetCORSAllowCreds() bool          { return true }
func (testConfig) GetPublicRateLimitPerMinute() int { return 10 }
func (testConfig) GetJWTAccessSecret() string       { return "secret" }
func (testConfig) GetAccessCookieName() string      { return "access_token" }

type stubCheck struct {
	name string
	err  error
}

func (s stubCheck) Name() string                   { return s.name }
func (s stubCheck) Ping(ctx context.Context) error { return s.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }
func (pingModule) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.Protected.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func newTestRouter(checks ...apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  testConfig{},
		Logger:  logger.New("development"),
		Health:  checks,
		Modules: []apphttp.Module{pingModule{}},
	})
}

func TestHealthOK(t *testing.T) {
	r := newTestRouter(stubCheck{name: "postgres"}, stubCheck{name: "redis"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthReportsFailingComponent(t *testing.T) {
	r := newTestRouter(stubCheck{name: "postgres"}, stubCheck{name: "redis", err: errors.New("connection refused")})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body struct {
		Failures map[string]string `json:"failures"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body.Failures["redis"]; !ok {
		t.Fatalf("expected redis failure, got %v", body.Failures)
	}
	if _, ok := body.Failures["postgres"]; ok {
		t.Fatalf("postgres should be healthy")
	}
}

func TestProtectedModuleRoutesRequireAuth(t *testing.T) {
	r := newTestRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
