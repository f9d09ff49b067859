package payments

import (
	"errors"
	"net/http"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/payments"
	"restaurant-app/internal/domain/reports"
	"restaurant-app/internal/infra/metrics"
	"restaurant-app/internal/infra/realtime"

	"github.com/gin-gonic/gin"
)

func paymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, payments.ErrInvalidAmount), errors.Is(err, payments.ErrInvalidMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, payments.ErrOverpayment), errors.Is(err, payments.ErrOrderCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		apiutil.ServerError(c, "Failed to record payment", err)
	}
}

// POST /orgs/:orgID/orders/:id/payments
func RecordPayment(c *gin.Context) {
	org := apiutil.Org(c)
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}
	orderID, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	var body struct {
		AmountCents int64           `json:"amount_cents" binding:"required"`
		Method      payments.Method `json:"method" binding:"required"`
		Reference   string          `json:"reference"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents and method are required"})
		return
	}

	p, _, err := payments.Record(database.DB, payments.RecordInput{
		OrgID:        org.ID,
		OrderID:      orderID,
		AmountCents:  body.AmountCents,
		Method:       body.Method,
		Reference:    body.Reference,
		ReceivedByID: &userID,
	})
	if err != nil {
		paymentError(c, err)
		return
	}

	metrics.Default.PaymentsRecorded.WithLabelValues(string(p.Method)).Inc()

	order, err := orders.Get(database.DB, org.ID, orderID)
	if err != nil {
		apiutil.ServerError(c, "Failed to load order", err)
		return
	}
	apiutil.PublishOrder(c, realtime.EventOrderPaid, order)

	c.JSON(http.StatusCreated, gin.H{
		"payment": p,
		"order":   order,
	})
}

// GET /orgs/:orgID/orders/:id/payments
func ListOrderPayments(c *gin.Context) {
	org := apiutil.Org(c)
	orderID, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	if _, err := orders.Get(database.DB, org.ID, orderID); err != nil {
		paymentError(c, err)
		return
	}

	list, err := payments.ListForOrder(database.DB, org.ID, orderID)
	if err != nil {
		apiutil.ServerError(c, "Failed to load payments", err)
		return
	}
	if list == nil {
		list = []payments.Payment{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /orgs/:orgID/payments?from=&to=
func ListPayments(c *gin.Context) {
	org := apiutil.Org(c)

	var from, to *time.Time
	if c.Query("from") != "" || c.Query("to") != "" {
		f, t, err := reports.ParseRange(c.Query("from"), c.Query("to"), time.Now(), org.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, use YYYY-MM-DD"})
			return
		}
		from, to = &f, &t
	}

	list, err := payments.ListForOrg(database.DB, org.ID, from, to)
	if err != nil {
		apiutil.ServerError(c, "Failed to load payments", err)
		return
	}
	if list == nil {
		list = []payments.Payment{}
	}
	c.JSON(http.StatusOK, list)
}
