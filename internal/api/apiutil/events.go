package apiutil

import (
	"encoding/json"
	"log/slog"

	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/infra/logger"
	"restaurant-app/internal/infra/realtime"

	"github.com/gin-gonic/gin"
)

// PublishOrder pushes an order event to screens of the org. Failures are
// logged only; the write already succeeded.
func PublishOrder(c *gin.Context, eventType string, o *orders.Order) {
	payload, err := json.Marshal(o)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to encode order event", "order_id", o.ID, logger.ErrAttr(err))
		return
	}

	ev := realtime.Event{
		Type:    eventType,
		OrgID:   o.OrgID,
		OrderID: o.ID,
		Status:  string(o.Status),
		Order:   payload,
	}
	if err := realtime.Default.Publish(c.Request.Context(), ev); err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to publish order event", "order_id", o.ID, "type", eventType, logger.ErrAttr(err))
	}
}
