// Package jobs provides the job offers bounded context module.
package jobs

import (
	apphttp "papex_backend/internal/http"
	"papex_backend/internal/jobs/handler"
	"papex_backend/internal/jobs/repository"
	"papex_backend/internal/jobs/service"
	"papex_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the jobs bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{handler: handler.New(svc), service: svc}
}

func (m *Module) Name() string {
	return "jobs"
}

// Service exposes job lookups to the candidates module.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/jobs"), ctx.OptionalAuth)
	m.handler.RegisterEditorRoutes(ctx.Protected.Group("/jobs"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
