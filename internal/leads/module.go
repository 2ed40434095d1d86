// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"papex_backend/internal/events"
	apphttp "papex_backend/internal/http"
	"papex_backend/internal/leads/booking"
	"papex_backend/internal/leads/handler"
	"papex_backend/internal/leads/management"
	"papex_backend/internal/leads/ports"
	"papex_backend/internal/leads/repository"
	"papex_backend/platform/config"
	"papex_backend/platform/logger"
	"papex_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	public     *handler.PublicHandler
	repo       *repository.Repository
	management *management.Service
	booking    *booking.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg config.BookingConfig, staff ports.StaffDirectory, log *logger.Logger) *Module {
	repo := repository.New(pool)

	mgmtSvc := management.New(repo, staff, bus)
	bookingSvc := booking.New(repo, bus, cfg, log)

	return &Module{
		handler:    handler.New(mgmtSvc, val),
		public:     handler.NewPublicHandler(bookingSvc, val),
		repo:       repo,
		management: mgmtSvc,
		booking:    bookingSvc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository exposes the lead store to the lifecycle jobs.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Booking returns the slot booking service, used by the admin CLI.
func (m *Module) Booking() *booking.Service {
	return m.booking
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.public.RegisterRoutes(ctx.V1.Group("/leads"), ctx.PublicRateLimiter.RateLimit())
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.public.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
