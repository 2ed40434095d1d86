// Package clients provides the client files bounded context module:
// client records, contracts, invoices and payment receipts.
package clients

import (
	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/clients/handler"
	"papex_backend/internal/clients/repository"
	"papex_backend/internal/clients/service"
	"papex_backend/internal/events"
	apphttp "papex_backend/internal/http"
	"papex_backend/platform/logger"
	"papex_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, leads service.LeadReader, files storage.StorageService, docs service.Documents,
	mailer service.Mailer, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), leads, files, docs, mailer, bus, val, log)
	return &Module{handler: handler.New(svc)}
}

func (m *Module) Name() string {
	return "clients"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/clients"))
	m.handler.RegisterContractRoutes(ctx.Protected.Group("/contracts"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
