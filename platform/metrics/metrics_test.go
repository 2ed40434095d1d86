package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGinMiddlewareRecordsMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "418"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "418"))

	if after-before != 1 {
		t.Fatalf("expected one request recorded, got %v", after-before)
	}
}

func TestRecordLifecycleIgnoresEmptyRuns(t *testing.T) {
	before := testutil.ToFloat64(lifecycleLeads.WithLabelValues("reminder"))
	RecordLifecycle("reminder", 0)
	RecordLifecycle("reminder", 3)
	after := testutil.ToFloat64(lifecycleLeads.WithLabelValues("reminder"))
	if after-before != 3 {
		t.Fatalf("expected +3, got %v", after-before)
	}
}

func TestHandlerExposesDomainCounters(t *testing.T) {
	RecordSlotReservation(ResultConflict)
	RecordNotification("sms", ResultError)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"papex_slot_reservations_total", "papex_notifications_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in exposition", name)
		}
	}
}
