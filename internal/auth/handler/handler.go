package handler

import (
	"context"
	"net/http"
	"time"

	"papex_backend/internal/auth/domain"
	"papex_backend/internal/auth/service"
	"papex_backend/internal/auth/transport"
	"papex_backend/platform/apperr"
	"papex_backend/platform/config"
	"papex_backend/platform/httpkit"
	"papex_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest      = "Requête invalide."
	msgMissingRefreshToken = "Missing refresh token"
)

// AuthService is the part of the service the handler drives.
type AuthService interface {
	Login(ctx context.Context, email, password string) (service.Session, error)
	Refresh(ctx context.Context, refreshToken string) (service.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	GetMe(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	ListUsers(ctx context.Context, role string) ([]domain.Profile, error)
	CreateUser(ctx context.Context, in service.CreateUserInput) (domain.Profile, error)
}

type Handler struct {
	svc AuthService
	cfg config.CookieConfig
	val *validator.Validator
}

func New(svc AuthService, cfg config.CookieConfig, val *validator.Validator) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/logout", h.Logout)
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	h.setSessionCookies(c, session)
	httpkit.OK(c, transport.LoginResponse{Detail: "Success", Role: session.Role})
}

func (h *Handler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(h.cfg.GetRefreshCookieName())
	if err != nil || refreshToken == "" {
		httpkit.Error(c, http.StatusUnauthorized, msgMissingRefreshToken, nil)
		return
	}

	session, err := h.svc.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			h.clearSessionCookies(c)
		}
		httpkit.HandleError(c, err)
		return
	}

	h.setSessionCookies(c, session)
	httpkit.OK(c, httpkit.Detail{Detail: "Refreshed"})
}

func (h *Handler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie(h.cfg.GetRefreshCookieName()); err == nil {
		if httpkit.HandleError(c, h.svc.Logout(c.Request.Context(), refreshToken)) {
			return
		}
	}
	h.clearSessionCookies(c)
	httpkit.NoContent(c)
}

func (h *Handler) GetMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	profile, err := h.svc.GetMe(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toUserResponse(profile))
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), c.Query("role"))
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpkit.OK(c, out)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req transport.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	profile, err := h.svc.CreateUser(c.Request.Context(), service.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toUserResponse(profile))
}

func (h *Handler) setSessionCookies(c *gin.Context, session service.Session) {
	c.SetSameSite(h.cfg.GetCookieSameSite())
	h.setCookie(c, h.cfg.GetAccessCookieName(), session.AccessToken, h.cfg.GetAccessTokenTTL(), true)
	h.setCookie(c, h.cfg.GetRefreshCookieName(), session.RefreshToken, h.cfg.GetRefreshTokenTTL(), true)
	h.setCookie(c, h.cfg.GetRoleCookieName(), session.Role, h.cfg.GetRefreshTokenTTL(), false)
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(h.cfg.GetCookieSameSite())
	for _, name := range []string{h.cfg.GetAccessCookieName(), h.cfg.GetRefreshCookieName(), h.cfg.GetRoleCookieName()} {
		h.setCookie(c, name, "", -time.Second, name != h.cfg.GetRoleCookieName())
	}
}

func (h *Handler) setCookie(c *gin.Context, name, value string, ttl time.Duration, httpOnly bool) {
	maxAge := int(ttl / time.Second)
	c.SetCookie(
		name,
		value,
		maxAge,
		h.cfg.GetCookiePath(),
		h.cfg.GetCookieDomain(),
		h.cfg.GetCookieSecure(),
		httpOnly,
	)
}

func toUserResponse(p domain.Profile) transport.UserResponse {
	return transport.UserResponse{
		ID:        p.ID.String(),
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		FullName:  p.FullName(),
		Role:      p.Role,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}
