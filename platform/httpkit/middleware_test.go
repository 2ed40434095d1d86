package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"papex_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type testJWTConfig struct{}

func (testJWTConfig) GetJWTAccessSecret() string  { return "test-secret" }
func (testJWTConfig) GetAccessCookieName() string { return "access_token" }

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/probe", append(handlers, func(c *gin.Context) {
		id := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"role": id.Role()})
	})...)
	return engine
}

func TestAuthRequiredReadsAccessCookie(t *testing.T) {
	userID := uuid.New()
	token, err := SignAccessToken(userID, "ADMIN", time.Minute, "test-secret")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	engine := newTestEngine(AuthRequired(testJWTConfig{}))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRequiredRejectsMissingCookie(t *testing.T) {
	engine := newTestEngine(AuthRequired(testJWTConfig{}))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsForeignSignature(t *testing.T) {
	token, err := SignAccessToken(uuid.New(), "ADMIN", time.Minute, "other-secret")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	engine := newTestEngine(AuthRequired(testJWTConfig{}))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOptionalAuthIdentifiesWhenPossible(t *testing.T) {
	token, err := SignAccessToken(uuid.New(), "JURISTE", time.Minute, "test-secret")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	engine := newTestEngine(OptionalAuth(testJWTConfig{}))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"role":"JURISTE"}` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"role":""}` {
		t.Fatalf("anonymous request should pass: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	token, err := SignAccessToken(uuid.New(), "ACCUEIL", time.Minute, "test-secret")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	engine := newTestEngine(AuthRequired(testJWTConfig{}), RequireRoles("Admin requis.", "ADMIN"))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	HandleError(c, apperr.Conflict("Créneau complet. Veuillez choisir un autre horaire."))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	limiter := PerMinute(2, nil)
	engine := newTestEngine(limiter.RateLimit())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}
