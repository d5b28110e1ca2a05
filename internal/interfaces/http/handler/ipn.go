package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	orderingapp "github.com/webconf/checkout/internal/application/ordering"
)

// NotificationProcessor is the slice of the IPN application service the
// handler needs
type NotificationProcessor interface {
	HandleNotification(ctx context.Context, topic, externalID string) (orderingapp.Disposition, error)
}

// IPNHandler receives payment provider notifications. The provider
// retries on non-2xx, so every recognized delivery is answered 200 and
// the disposition is only logged; a failed local write is the one case
// answered 500 to request a redelivery.
type IPNHandler struct {
	BaseHandler
	ipn NotificationProcessor
}

// NewIPNHandler creates an IPN handler
func NewIPNHandler(ipn NotificationProcessor, logger *zap.Logger) *IPNHandler {
	return &IPNHandler{
		BaseHandler: NewBaseHandler(logger),
		ipn:         ipn,
	}
}

// webhookPayload is the provider's webhook body shape
type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Notify handles POST /payments/ipn and POST /orders/ipn. The provider
// sends topic/id query parameters, their newer type/data.id spelling,
// or a JSON body with type and data.id; all are normalized to the same
// call.
func (h *IPNHandler) Notify(c *gin.Context) {
	topic := c.Query("topic")
	if topic == "" {
		topic = c.Query("type")
	}
	id := c.Query("id")
	if id == "" {
		id = c.Query("data.id")
	}

	if topic == "" || id == "" {
		var payload webhookPayload
		if err := c.ShouldBindJSON(&payload); err == nil {
			if topic == "" {
				topic = payload.Type
			}
			if id == "" {
				id = payload.Data.ID.String()
			}
		}
	}

	if topic == "" || id == "" {
		h.logger.Warn("ipn notification missing topic or id",
			zap.String("topic", topic),
			zap.String("id", id),
		)
		c.Status(http.StatusOK)
		return
	}

	disposition, err := h.ipn.HandleNotification(c.Request.Context(), topic, id)
	if err != nil && disposition == orderingapp.DispositionError {
		h.logger.Error("ipn processing failed, requesting redelivery",
			zap.String("topic", topic),
			zap.String("id", id),
			zap.Error(err),
		)
		c.Status(http.StatusInternalServerError)
		return
	}

	h.logger.Info("ipn notification handled",
		zap.String("topic", topic),
		zap.String("id", id),
		zap.String("disposition", string(disposition)),
	)
	c.Status(http.StatusOK)
}
