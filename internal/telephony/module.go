package telephony

import (
	apphttp "papex_backend/internal/http"
	"papex_backend/platform/logger"
)

type Module struct {
	handler *Handler
}

func NewModule(queue Enqueuer, caller Caller, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(queue, caller, log)}
}

func (m *Module) Name() string { return "telephony" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
