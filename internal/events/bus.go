package events

import (
	platformevents "papex_backend/platform/events"
	"papex_backend/platform/logger"
)

// InMemoryBus re-exports the platform bus so modules only import this package.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates the process-local bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
