// Package candidates provides the job applications bounded context module.
package candidates

import (
	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/candidates/handler"
	"papex_backend/internal/candidates/repository"
	"papex_backend/internal/candidates/service"
	apphttp "papex_backend/internal/http"
	"papex_backend/platform/logger"
	"papex_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the candidates bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, jobs service.JobResolver, files storage.StorageService, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), jobs, files, val, log)
	return &Module{handler: handler.New(svc)}
}

func (m *Module) Name() string {
	return "candidates"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/candidates"), ctx.PublicRateLimiter.RateLimit())
	m.handler.RegisterStaffRoutes(ctx.Protected.Group("/candidates"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
