package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"papex_backend/internal/candidates/service"
	"papex_backend/internal/candidates/transport"
	"papex_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	maxMultipartMemory = 32 << 20
	msgInvalidForm     = "Formulaire invalide."
	msgInvalidRequest  = "Requête invalide."
)

// CandidateService is the part of the candidates service the handler drives.
type CandidateService interface {
	Apply(ctx context.Context, req transport.ApplyRequest, cv *service.CV) (transport.CandidateResponse, error)
	Get(ctx context.Context, id int64) (transport.CandidateResponse, error)
	List(ctx context.Context, req transport.ListRequest) ([]transport.CandidateResponse, error)
	UpdateStatus(ctx context.Context, id int64, req transport.UpdateStatusRequest) (transport.CandidateResponse, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	svc CandidateService
}

func New(svc CandidateService) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the application form endpoint behind guard.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	rg.POST("", guard, h.Apply)
}

// RegisterStaffRoutes mounts the review endpoints on an authenticated group.
func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.UpdateStatus)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Apply(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidForm, nil)
		return
	}

	req := transport.ApplyRequest{
		Job:       c.PostForm("job"),
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
	}

	cv, err := readCV(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidForm, nil)
		return
	}

	out, err := h.svc.Apply(c.Request.Context(), req, cv)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, out)
}

// readCV returns nil when no file was sent.
func readCV(c *gin.Context) (*service.CV, error) {
	fh, err := c.FormFile("cv")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.CV{FileName: fh.Filename, Data: data}, nil
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	out, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	out, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}
