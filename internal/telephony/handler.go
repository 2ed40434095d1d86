package telephony

import (
	"context"
	"net/http"
	"strings"

	"papex_backend/platform/httpkit"
	"papex_backend/platform/logger"
	"papex_backend/platform/phone"

	"github.com/gin-gonic/gin"
)

const (
	msgMissingNumber = "Numéro de téléphone manquant"
	msgCallLaunched  = "Appel en cours de lancement sur votre softphone..."
)

// Enqueuer queues a click2call task with retries.
type Enqueuer interface {
	EnqueueClick2Call(ctx context.Context, number string) error
}

type Click2CallRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type Handler struct {
	queue  Enqueuer
	caller Caller
	log    *logger.Logger
}

// NewHandler builds the handler. Without a queue, or when enqueueing fails, the
// call is placed in a goroutine.
func NewHandler(queue Enqueuer, caller Caller, log *logger.Logger) *Handler {
	return &Handler{queue: queue, caller: caller, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/telephony/click2call", h.Click2Call)
}

func (h *Handler) Click2Call(c *gin.Context) {
	var req Click2CallRequest
	_ = c.ShouldBindJSON(&req)

	number := phone.ForDialing(req.PhoneNumber)
	if strings.TrimSpace(number) == "" {
		httpkit.Error(c, http.StatusBadRequest, msgMissingNumber, nil)
		return
	}

	h.launch(c.Request.Context(), number)
	httpkit.OK(c, httpkit.Detail{Detail: msgCallLaunched})
}

func (h *Handler) launch(ctx context.Context, number string) {
	if h.queue != nil {
		err := h.queue.EnqueueClick2Call(ctx, number)
		if err == nil {
			return
		}
		h.log.Warn("enqueue click2call failed, calling inline", "error", err)
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		if err := h.caller.Click2Call(detached, number); err != nil {
			h.log.Error("click2call failed", "error", err)
		}
	}()
}
