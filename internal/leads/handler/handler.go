package handler

import (
	"context"
	"net/http"

	"papex_backend/internal/leads/management"
	"papex_backend/internal/leads/transport"
	"papex_backend/platform/httpkit"
	"papex_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest = "Requête invalide."
	msgForbidden      = "Accès interdit."
)

// Staff roles allowed to create leads from the back office.
var intakeRoles = []string{"ADMIN", "ACCUEIL", "CONSEILLER", "JURISTE"}

// ManagementService is the part of the management service the handler drives.
type ManagementService interface {
	Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error)
	GetByID(ctx context.Context, id int64, actor management.Actor) (transport.LeadResponse, error)
	Update(ctx context.Context, id int64, req transport.UpdateLeadRequest) (transport.LeadResponse, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req transport.ListLeadsRequest, actor management.Actor) (transport.LeadListResponse, error)
	Search(ctx context.Context, req transport.SearchLeadsRequest) (transport.SearchResponse, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	RdvByDate(ctx context.Context, date string) ([]transport.LeadResponse, error)
	Assignment(ctx context.Context, id int64, req transport.AssignmentRequest, actor management.Actor) (transport.LeadResponse, error)
	AssignJuristes(ctx context.Context, id int64, req transport.AssignJuristesRequest, actor management.Actor) (transport.LeadResponse, error)
	SendFormulaire(ctx context.Context, id int64) error
}

type Handler struct {
	svc ManagementService
	val *validator.Validator
}

func New(svc ManagementService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", httpkit.RequireRoles(msgForbidden, intakeRoles...), h.Create)
	rg.GET("/search", h.Search)
	rg.GET("/count-by-status", h.CountByStatus)
	rg.GET("/rdv-by-date", h.RdvByDate)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/assignment", h.Assignment)
	rg.PATCH("/:id/assign-juristes", h.AssignJuristes)
	rg.POST("/:id/send-formulaire-email", h.SendFormulaire)
}

func actor(c *gin.Context) (management.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return management.Actor{}, false
	}
	return management.Actor{ID: id.UserID(), Role: id.Role()}, true
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id, a)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), req, a)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Search(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CountByStatus(c *gin.Context) {
	counts, err := h.svc.CountByStatus(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, counts)
}

func (h *Handler) RdvByDate(c *gin.Context) {
	leads, err := h.svc.RdvByDate(c.Request.Context(), c.Query("date"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) Assignment(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	var req transport.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	lead, err := h.svc.Assignment(c.Request.Context(), id, req, a)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) AssignJuristes(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	var req transport.AssignJuristesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	a, ok := actor(c)
	if !ok {
		return
	}

	lead, err := h.svc.AssignJuristes(c.Request.Context(), id, req, a)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) SendFormulaire(c *gin.Context) {
	id, ok := httpkit.ParseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.SendFormulaire(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, httpkit.Detail{Detail: "E-mail envoyé."})
}
