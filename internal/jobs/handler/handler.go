package handler

import (
	"context"
	"fmt"
	"net/http"

	"papex_backend/internal/jobs/transport"
	"papex_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest = "Requête invalide."
	msgForbidden      = "Vous n'avez pas la permission de gérer les offres d'emploi."
)

// EditorRoles may create, edit and publish job offers.
var EditorRoles = []string{"ADMIN", "CONSEILLER", "JURISTE"}

// JobService is the part of the jobs service the handler drives.
type JobService interface {
	Create(ctx context.Context, req transport.JobRequest) (transport.JobResponse, error)
	Get(ctx context.Context, slug string, editor bool) (transport.JobResponse, error)
	List(ctx context.Context, editor bool) ([]transport.JobSummary, error)
	Active(ctx context.Context) (transport.ActiveJobsResponse, error)
	All(ctx context.Context) (transport.AllJobsResponse, error)
	Update(ctx context.Context, slug string, req transport.JobRequest) (transport.JobResponse, error)
	Delete(ctx context.Context, slug string) (string, error)
	ToggleStatus(ctx context.Context, slug string) (transport.ToggleResponse, error)
}

type Handler struct {
	svc JobService
}

func New(svc JobService) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the read routes; identify sets the caller when
// a session is present so editors also see inactive offers.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, identify gin.HandlerFunc) {
	rg.GET("", identify, h.List)
	rg.GET("/active", h.Active)
	rg.GET("/:slug", identify, h.Get)
}

// RegisterEditorRoutes mounts the write routes on an authenticated group.
func (h *Handler) RegisterEditorRoutes(rg *gin.RouterGroup) {
	rg.Use(httpkit.RequireRoles(msgForbidden, EditorRoles...))
	rg.GET("/all", h.All)
	rg.POST("", h.Create)
	rg.PATCH("/:slug", h.Update)
	rg.DELETE("/:slug", h.Delete)
	rg.POST("/:slug/toggle-status", h.ToggleStatus)
}

func isEditor(c *gin.Context) bool {
	return httpkit.GetIdentity(c).HasRole(EditorRoles...)
}

func (h *Handler) List(c *gin.Context) {
	jobs, err := h.svc.List(c.Request.Context(), isEditor(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, jobs)
}

func (h *Handler) Active(c *gin.Context) {
	out, err := h.svc.Active(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) All(c *gin.Context) {
	out, err := h.svc.All(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	job, err := h.svc.Get(c.Request.Context(), c.Param("slug"), isEditor(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, job)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	job, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, job)
}

func (h *Handler) Update(c *gin.Context) {
	var req transport.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	job, err := h.svc.Update(c.Request.Context(), c.Param("slug"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, job)
}

func (h *Handler) Delete(c *gin.Context) {
	title, err := h.svc.Delete(c.Request.Context(), c.Param("slug"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, httpkit.Detail{Detail: fmt.Sprintf("L'offre « %s » a été supprimée avec succès.", title)})
}

func (h *Handler) ToggleStatus(c *gin.Context) {
	out, err := h.svc.ToggleStatus(c.Request.Context(), c.Param("slug"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}
