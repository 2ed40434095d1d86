package handler

import (
	"context"
	"net/http"

	"papex_backend/internal/leads/booking"
	"papex_backend/internal/leads/domain"
	"papex_backend/internal/leads/management"
	"papex_backend/internal/leads/repository"
	"papex_backend/internal/leads/transport"
	"papex_backend/platform/httpkit"
	"papex_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// BookingService is the part of the booking service the handlers drive.
type BookingService interface {
	PublicCreate(ctx context.Context, in booking.PublicCreateInput, clientIP string) (repository.Lead, error)
	PublicSlots(ctx context.Context, day string) ([]booking.SlotAvailability, error)
	SetCapacity(ctx context.Context, startAt string, capacity int) (booking.SlotAvailability, error)
}

// PublicHandler serves the anonymous booking form.
type PublicHandler struct {
	svc BookingService
	val *validator.Validator
}

func NewPublicHandler(svc BookingService, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes mounts the public routes; guard rate-limits the create endpoint.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	rg.POST("/public-create", guard, h.PublicCreate)
	rg.GET("/public-slots", h.PublicSlots)
}

// RegisterAdminRoutes mounts slot administration on the admin group.
func (h *PublicHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/slots", h.SetCapacity)
}

func (h *PublicHandler) PublicCreate(c *gin.Context) {
	var req transport.PublicCreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	lead, err := h.svc.PublicCreate(c.Request.Context(), booking.PublicCreateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		AppointmentDate: req.AppointmentDate,
		AppointmentType: req.AppointmentType,
	}, c.ClientIP())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, management.ToLeadResponse(lead))
}

func (h *PublicHandler) PublicSlots(c *gin.Context) {
	day := c.Query("date")
	slots, err := h.svc.PublicSlots(c.Request.Context(), day)
	if httpkit.HandleError(c, err) {
		return
	}

	out := transport.SlotListResponse{Date: day, Slots: make([]transport.SlotResponse, 0, len(slots))}
	for _, s := range slots {
		out.Slots = append(out.Slots, toSlotResponse(s))
	}
	httpkit.OK(c, out)
}

func (h *PublicHandler) SetCapacity(c *gin.Context) {
	var req transport.SlotCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	slot, err := h.svc.SetCapacity(c.Request.Context(), req.StartAt, *req.Capacity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toSlotResponse(slot))
}

func toSlotResponse(s booking.SlotAvailability) transport.SlotResponse {
	start := s.StartAt
	return transport.SlotResponse{
		StartAt:      start,
		StartDisplay: domain.FormatDisplay(&start),
		Capacity:     s.Capacity,
		Booked:       s.Booked,
		Remaining:    s.Remaining,
	}
}
