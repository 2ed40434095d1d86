// Package exports serves spreadsheet exports of the lead and billing data.
package exports

import (
	apphttp "papex_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{handler: NewHandler(NewRepository(pool))}
}

func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts the exports under /api/v1/admin/exports.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/exports"))
}

var _ apphttp.Module = (*Module)(nil)
