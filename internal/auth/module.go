// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"papex_backend/internal/auth/adapter"
	"papex_backend/internal/auth/handler"
	"papex_backend/internal/auth/repository"
	"papex_backend/internal/auth/service"
	apphttp "papex_backend/internal/http"
	"papex_backend/platform/config"
	"papex_backend/platform/logger"
	"papex_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig is what the auth module reads from configuration.
type ModuleConfig interface {
	config.AuthServiceConfig
	config.CookieConfig
}

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg ModuleConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	return &Module{
		handler: handler.New(svc, cfg, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service, used by the admin CLI.
func (m *Module) Service() *service.Service {
	return m.service
}

// StaffDirectory exposes active staff to the leads domain.
func (m *Module) StaffDirectory() *adapter.StaffDirectoryAdapter {
	return adapter.NewStaffDirectoryAdapter(m.repo)
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.GetMe)
	ctx.Protected.GET("/users", m.handler.ListUsers)

	ctx.Admin.POST("/users", m.handler.CreateUser)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
