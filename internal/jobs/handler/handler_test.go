package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"papex_backend/internal/jobs/transport"
	"papex_backend/platform/apperr"
	"papex_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	listEditor bool
	getEditor  bool
	created    transport.JobRequest
}

func (f *fakeJobs) Create(_ context.Context, req transport.JobRequest) (transport.JobResponse, error) {
	f.created = req
	return transport.JobResponse{ID: 1, Slug: "juriste", Title: *req.Title}, nil
}

func (f *fakeJobs) Get(_ context.Context, slug string, editor bool) (transport.JobResponse, error) {
	f.getEditor = editor
	if slug == "missing" {
		return transport.JobResponse{}, apperr.NotFound("Offre introuvable.")
	}
	return transport.JobResponse{Slug: slug}, nil
}

func (f *fakeJobs) List(_ context.Context, editor bool) ([]transport.JobSummary, error) {
	f.listEditor = editor
	return []transport.JobSummary{{Slug: "juriste"}}, nil
}

func (f *fakeJobs) Active(context.Context) (transport.ActiveJobsResponse, error) {
	return transport.ActiveJobsResponse{Count: 1, Results: []transport.JobSummary{{Slug: "juriste"}}}, nil
}

func (f *fakeJobs) All(context.Context) (transport.AllJobsResponse, error) {
	return transport.AllJobsResponse{Count: 2, ActiveCount: 1, InactiveCount: 1}, nil
}

func (f *fakeJobs) Update(_ context.Context, slug string, _ transport.JobRequest) (transport.JobResponse, error) {
	return transport.JobResponse{Slug: slug}, nil
}

func (f *fakeJobs) Delete(context.Context, string) (string, error) {
	return "Juriste", nil
}

func (f *fakeJobs) ToggleStatus(context.Context, string) (transport.ToggleResponse, error) {
	return transport.ToggleResponse{Detail: "L'offre « Juriste » a été désactivée.", IsActive: false}, nil
}

// identify mimics the optional session middleware.
func identify(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Set(httpkit.ContextUserIDKey, uuid.New())
			c.Set(httpkit.ContextRoleKey, role)
		}
		c.Next()
	}
}

func newEngine(svc JobService, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(svc)
	h.RegisterPublicRoutes(r.Group("/jobs"), identify(role))

	protected := r.Group("/jobs")
	protected.Use(identify(role))
	h.RegisterEditorRoutes(protected)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPublicListHidesInactiveOffers(t *testing.T) {
	svc := &fakeJobs{}
	rec := serve(newEngine(svc, ""), http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.listEditor)

	svc = &fakeJobs{}
	rec = serve(newEngine(svc, "JURISTE"), http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.listEditor)
}

func TestAccueilIsNotAnEditor(t *testing.T) {
	svc := &fakeJobs{}
	serve(newEngine(svc, "ACCUEIL"), http.MethodGet, "/jobs/juriste", "")
	assert.False(t, svc.getEditor)

	rec := serve(newEngine(svc, "ACCUEIL"), http.MethodPost, "/jobs", `{"title":"Juriste"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), msgForbidden)
}

func TestWritesRequireSession(t *testing.T) {
	rec := serve(newEngine(&fakeJobs{}, ""), http.MethodDelete, "/jobs/juriste", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaticRoutesWinOverSlug(t *testing.T) {
	r := newEngine(&fakeJobs{}, "ADMIN")

	rec := serve(r, http.MethodGet, "/jobs/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var active transport.ActiveJobsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	assert.Equal(t, 1, active.Count)

	rec = serve(r, http.MethodGet, "/jobs/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all transport.AllJobsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, 1, all.InactiveCount)
}

func TestCreateDeleteAndToggle(t *testing.T) {
	svc := &fakeJobs{}
	r := newEngine(svc, "CONSEILLER")

	rec := serve(r, http.MethodPost, "/jobs", `{"title":"Juriste","missions":["Accueillir"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"Accueillir"}, svc.created.Missions)

	rec = serve(r, http.MethodPost, "/jobs", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodDelete, "/jobs/juriste", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "L'offre « Juriste » a été supprimée avec succès.")

	rec = serve(r, http.MethodPost, "/jobs/juriste/toggle-status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_active":false`)
}

func TestUnknownOfferIsNotFound(t *testing.T) {
	rec := serve(newEngine(&fakeJobs{}, ""), http.MethodGet, "/jobs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
