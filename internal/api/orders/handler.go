package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/tables"
	"restaurant-app/internal/infra/metrics"
	"restaurant-app/internal/infra/realtime"

	"github.com/gin-gonic/gin"
)

type lineRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note"`
}

func parseLines(in []lineRequest) ([]orders.Line, error) {
	lines := make([]orders.Line, 0, len(in))
	for _, l := range in {
		id, err := strconv.ParseInt(l.MenuItemID, 10, 64)
		if err != nil {
			return nil, orders.ErrInvalidItem
		}
		lines = append(lines, orders.Line{MenuItemID: id, Quantity: l.Quantity, Note: l.Note})
	}
	return lines, nil
}

func orderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidItem),
		errors.Is(err, orders.ErrQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrRoleTransition):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrNotPaid),
		errors.Is(err, orders.ErrLocked),
		errors.Is(err, orders.ErrNumberRetry):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		apiutil.ServerError(c, "Failed to process order", err)
	}
}

// POST /orgs/:orgID/orders (point of sale)
func CreateOrder(c *gin.Context) {
	org := apiutil.Org(c)
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var body struct {
		TableID      string        `json:"table_id"`
		CustomerName string        `json:"customer_name"`
		Note         string        `json:"note"`
		Items        []lineRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order payload"})
		return
	}

	tableID, err := apiutil.ParseOptionalID(body.TableID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table_id"})
		return
	}
	if tableID != nil {
		if _, err := tables.Get(database.DB, org.ID, *tableID); err != nil {
			if errors.Is(err, tables.ErrNotFound) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unknown table"})
				return
			}
			apiutil.ServerError(c, "Failed to load table", err)
			return
		}
	}

	lines, err := parseLines(body.Items)
	if err != nil {
		orderError(c, err)
		return
	}

	created, err := orders.Create(database.DB, orders.CreateInput{
		OrgID:        org.ID,
		TableID:      tableID,
		Source:       orders.SourcePOS,
		CustomerName: body.CustomerName,
		Note:         body.Note,
		Lines:        lines,
		CreatedByID:  &userID,
	})
	if err != nil {
		orderError(c, err)
		return
	}

	order, err := orders.Get(database.DB, org.ID, created.ID)
	if err != nil {
		apiutil.ServerError(c, "Failed to load order", err)
		return
	}

	metrics.Default.OrdersCreated.WithLabelValues(string(orders.SourcePOS)).Inc()
	apiutil.PublishOrder(c, realtime.EventOrderCreated, order)
	c.JSON(http.StatusCreated, order)
}

// GET /orgs/:orgID/orders?status=a,b&table_id=&from=YYYY-MM-DD&to=YYYY-MM-DD&limit=
func ListOrders(c *gin.Context) {
	org := apiutil.Org(c)

	var f orders.Filter
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := orders.Status(strings.TrimSpace(s))
			if !st.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status " + string(st)})
				return
			}
			f.Statuses = append(f.Statuses, st)
		}
	}

	tableID, err := apiutil.ParseOptionalID(c.Query("table_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table_id"})
		return
	}
	f.TableID = tableID

	loc := org.Location()
	if raw := c.Query("from"); raw != "" {
		t, err := time.ParseInLocation(time.DateOnly, raw, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		f.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.ParseInLocation(time.DateOnly, raw, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		f.Limit = n
	}

	list, err := orders.List(database.DB, org.ID, f)
	if err != nil {
		apiutil.ServerError(c, "Failed to load orders", err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /orgs/:orgID/orders/:id
func GetOrder(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	o, err := orders.Get(database.DB, org.ID, id)
	if err != nil {
		orderError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func transition(c *gin.Context, next orders.Status) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	o, err := orders.Transition(database.DB, org.ID, id, next, apiutil.Role(c), time.Now())
	if err != nil {
		orderError(c, err)
		return
	}

	metrics.Default.OrderTransitions.WithLabelValues(string(next)).Inc()
	slog.InfoContext(c.Request.Context(), "Order status changed", "order_id", o.ID, "status", next)
	apiutil.PublishOrder(c, realtime.EventOrderUpdated, o)
	c.JSON(http.StatusOK, o)
}

// PATCH /orgs/:orgID/orders/:id/status
func UpdateStatus(c *gin.Context) {
	var body struct {
		Status orders.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !body.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid status is required"})
		return
	}
	transition(c, body.Status)
}

// POST /orgs/:orgID/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	transition(c, orders.StatusCancelled)
}

// POST /orgs/:orgID/orders/:id/items
func AddItems(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Items []lineRequest `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid items payload"})
		return
	}
	lines, err := parseLines(body.Items)
	if err != nil {
		orderError(c, err)
		return
	}

	o, err := orders.AddItems(database.DB, org.ID, id, lines)
	if err != nil {
		orderError(c, err)
		return
	}

	apiutil.PublishOrder(c, realtime.EventOrderUpdated, o)
	c.JSON(http.StatusOK, o)
}
