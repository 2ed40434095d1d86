package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"papex_backend/internal/candidates/service"
	"papex_backend/internal/candidates/transport"
	"papex_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

type fakeCandidates struct {
	req     transport.ApplyRequest
	cv      *service.CV
	list    transport.ListRequest
	deleted int64
}

func (f *fakeCandidates) Apply(_ context.Context, req transport.ApplyRequest, cv *service.CV) (transport.CandidateResponse, error) {
	f.req, f.cv = req, cv
	if cv == nil {
		return transport.CandidateResponse{}, apperr.BadRequest("Le CV est requis")
	}
	return transport.CandidateResponse{ID: 1, FirstName: req.FirstName}, nil
}

func (f *fakeCandidates) Get(_ context.Context, id int64) (transport.CandidateResponse, error) {
	return transport.CandidateResponse{ID: id}, nil
}

func (f *fakeCandidates) List(_ context.Context, req transport.ListRequest) ([]transport.CandidateResponse, error) {
	f.list = req
	return []transport.CandidateResponse{}, nil
}

func (f *fakeCandidates) UpdateStatus(_ context.Context, id int64, _ transport.UpdateStatusRequest) (transport.CandidateResponse, error) {
	return transport.CandidateResponse{ID: id}, nil
}

func (f *fakeCandidates) Delete(_ context.Context, id int64) error {
	f.deleted = id
	return nil
}

func newEngine(svc CandidateService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(svc)
	h.RegisterPublicRoutes(r.Group("/candidates"), func(c *gin.Context) { c.Next() })
	h.RegisterStaffRoutes(r.Group("/candidates"))
	return r
}

func multipartBody(t *testing.T, fields map[string]string, cv []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if cv != nil {
		part, err := w.CreateFormFile("cv", "cv.pdf")
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = part.Write(cv)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestApplyForwardsMultipartFields(t *testing.T) {
	svc := &fakeCandidates{}
	body, ct := multipartBody(t, map[string]string{
		"job": "juriste", "first_name": "Jean", "last_name": "Dupont", "email": "jean@example.com",
	}, []byte("%PDF-1.4"))

	req := httptest.NewRequest(http.MethodPost, "/candidates", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	newEngine(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.req.Job != "juriste" || svc.req.Email != "jean@example.com" {
		t.Fatalf("fields not forwarded: %+v", svc.req)
	}
	if svc.cv == nil || string(svc.cv.Data) != "%PDF-1.4" || svc.cv.FileName != "cv.pdf" {
		t.Fatalf("cv not forwarded: %+v", svc.cv)
	}
}

func TestApplyWithoutFile(t *testing.T) {
	svc := &fakeCandidates{}
	body, ct := multipartBody(t, map[string]string{"job": "juriste"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/candidates", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	newEngine(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Le CV est requis") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestStaffRoutes(t *testing.T) {
	svc := &fakeCandidates{}
	r := newEngine(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/candidates?job=juriste&status=pending", nil))
	if rec.Code != http.StatusOK || svc.list.Job != "juriste" || svc.list.Status != "pending" {
		t.Fatalf("list: %d %+v", rec.Code, svc.list)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/candidates/7", nil))
	if rec.Code != http.StatusNoContent || svc.deleted != 7 {
		t.Fatalf("delete: %d %d", rec.Code, svc.deleted)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/candidates/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad id, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPatch, "/candidates/7", strings.NewReader(`{"status":"approved"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d", rec.Code)
	}
}
