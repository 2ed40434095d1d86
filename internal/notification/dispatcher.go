package notification

import (
	"context"
	"sync"

	"papex_backend/platform/logger"
)

// Enqueuer hands a message to the task queue.
type Enqueuer interface {
	EnqueueNotification(ctx context.Context, msg Message) error
}

// Deliverer sends one message synchronously.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}

// Dispatcher queues messages when a queue is configured and delivers them
// in a goroutine otherwise. Failures are logged and never returned.
type Dispatcher struct {
	queue     Enqueuer
	deliverer Deliverer
	log       *logger.Logger
	wg        sync.WaitGroup
}

// NewDispatcher builds a dispatcher; queue may be nil.
func NewDispatcher(queue Enqueuer, deliverer Deliverer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{queue: queue, deliverer: deliverer, log: log}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	if d.queue != nil {
		err := d.queue.EnqueueNotification(ctx, msg)
		if err == nil {
			return
		}
		d.log.NotificationFailed(string(msg.Channel), string(msg.Kind), msg.Lead.ID, err)
		d.log.Warn("enqueue failed, delivering inline", "kind", msg.Kind, "lead_id", msg.Lead.ID)
	}

	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.deliverer.Deliver(detached, msg); err != nil {
			d.log.NotificationFailed(string(msg.Channel), string(msg.Kind), msg.Lead.ID, err)
		}
	}()
}

// Wait blocks until inline deliveries have returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
