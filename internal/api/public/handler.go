package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/tables"
	"restaurant-app/internal/infra/cache"
	"restaurant-app/internal/infra/dbx"
	"restaurant-app/internal/infra/ids"
	"restaurant-app/internal/infra/metrics"
	"restaurant-app/internal/infra/realtime"

	"github.com/gin-gonic/gin"
)

var errOrgNotFound = errors.New("organization not found")

var menuCache = cache.NewMemory[string, MenuResponse]("public_menu", 10_000, time.Minute)

// InvalidateMenu drops the cached public menu of an org. Call after any menu,
// org or plan change that guests can see.
func InvalidateMenu(slug string) {
	menuCache.Invalidate(slug)
}

func orgBySlug(slug string) (*orgs.Organization, error) {
	var org orgs.Organization
	err := database.DB.Preload("Plan").Where("slug = ?", strings.ToLower(slug)).First(&org).Error
	if dbx.IsNotFound(err) {
		return nil, errOrgNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func loadMenu(_ context.Context, slug string) (MenuResponse, error) {
	org, err := orgBySlug(slug)
	if err != nil {
		return MenuResponse{}, err
	}
	cats, err := menu.FullMenu(database.DB, org.ID, true)
	if err != nil {
		return MenuResponse{}, err
	}
	policy := access.ComputePolicy(time.Now(), *org)
	return buildMenu(org, policy.Has(plans.FeatureQRMenu), whatsAppEnabled(org, policy), cats), nil
}

func whatsAppEnabled(org *orgs.Organization, policy access.Policy) bool {
	return policy.Has(plans.FeatureWhatsApp) && orgs.NormalizePhone(org.WhatsAppNumber) != ""
}

// GET /public/orgs/:slug/menu
func GetMenu(c *gin.Context) {
	res, err := menuCache.GetOrLoad(c.Request.Context(), strings.ToLower(c.Param("slug")), loadMenu)
	if errors.Is(err, errOrgNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if err != nil {
		apiutil.ServerError(c, "Failed to load menu", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=30")
	c.JSON(http.StatusOK, res)
}

// GET /public/tables/:token
func GetTable(c *gin.Context) {
	t, err := tables.FindByToken(database.DB, c.Param("token"))
	if errors.Is(err, tables.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}
	if err != nil {
		apiutil.ServerError(c, "Failed to load table", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table": gin.H{"name": t.Name, "area": t.Area},
		"org":   gin.H{"name": t.Org.Name, "slug": t.Org.Slug},
	})
}

type orderLineRequest struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note"`
}

type createOrderRequest struct {
	TableToken   string             `json:"table_token"`
	CustomerName string             `json:"customer_name"`
	Note         string             `json:"note"`
	Items        []orderLineRequest `json:"items"`
}

// POST /public/orgs/:slug/orders
func CreateOrder(c *gin.Context) {
	var body createOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order payload"})
		return
	}

	org, err := orgBySlug(c.Param("slug"))
	if errors.Is(err, errOrgNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if err != nil {
		apiutil.ServerError(c, "Failed to load restaurant", err)
		return
	}

	policy := access.ComputePolicy(time.Now(), *org)
	if !policy.Has(plans.FeatureQRMenu) {
		metrics.Default.PlanLimitHits.WithLabelValues(string(plans.FeatureQRMenu)).Inc()
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "This restaurant is not taking online orders"})
		return
	}

	var tableID *int64
	if body.TableToken != "" {
		t, err := tables.FindByToken(database.DB, body.TableToken)
		if err != nil && !errors.Is(err, tables.ErrNotFound) {
			apiutil.ServerError(c, "Failed to load table", err)
			return
		}
		if err != nil || t.OrgID != org.ID {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unknown table"})
			return
		}
		tableID = &t.ID
	}

	lines, ok := parseLines(c, body.Items)
	if !ok {
		return
	}

	order, err := orders.Create(database.DB, orders.CreateInput{
		OrgID:        org.ID,
		TableID:      tableID,
		Source:       orders.SourceQR,
		CustomerName: body.CustomerName,
		Note:         body.Note,
		Lines:        lines,
	})
	if err != nil {
		orderError(c, err)
		return
	}

	// reload with table for the response and the kitchen event
	if full, err := orders.Get(database.DB, org.ID, order.ID); err == nil {
		order = full
	}

	metrics.Default.OrdersCreated.WithLabelValues(string(orders.SourceQR)).Inc()
	apiutil.PublishOrder(c, realtime.EventOrderCreated, order)

	code, err := ids.EncodePublic(order.ID)
	if err != nil {
		apiutil.ServerError(c, "Failed to encode tracking code", err)
		return
	}

	res := buildOrderStatus(code, org.Currency, order)
	if whatsAppEnabled(org, policy) {
		res.WhatsAppURL = WhatsAppLink(org.WhatsAppNumber, whatsAppText(org, order, code))
	}
	c.JSON(http.StatusCreated, res)
}

func parseLines(c *gin.Context, in []orderLineRequest) ([]orders.Line, bool) {
	if len(in) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": orders.ErrEmptyOrder.Error()})
		return nil, false
	}
	lines := make([]orders.Line, 0, len(in))
	for _, l := range in {
		id, err := strconv.ParseInt(l.MenuItemID, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": orders.ErrInvalidItem.Error()})
			return nil, false
		}
		lines = append(lines, orders.Line{MenuItemID: id, Quantity: l.Quantity, Note: l.Note})
	}
	return lines, true
}

func orderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidItem),
		errors.Is(err, orders.ErrQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrNumberRetry):
		c.JSON(http.StatusConflict, gin.H{"error": "Please retry your order"})
	default:
		apiutil.ServerError(c, "Failed to create order", err)
	}
}

// WhatsAppLink builds a wa.me deep link; the number keeps digits only.
func WhatsAppLink(number, text string) string {
	return "https://wa.me/" + orgs.NormalizePhone(number) + "?text=" + url.QueryEscape(text)
}

func whatsAppText(org *orgs.Organization, o *orders.Order, code string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d at %s", o.Number, org.Name)
	if o.Table != nil {
		fmt.Fprintf(&b, " (table %s)", o.Table.Name)
	}
	b.WriteString("\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%dx %s\n", it.Quantity, it.Name)
	}
	fmt.Fprintf(&b, "Total: %s %.2f\nTracking: %s", org.Currency, float64(o.TotalCents)/100, code)
	return b.String()
}

// GET /public/orders/:code
func GetOrderStatus(c *gin.Context) {
	code := c.Param("code")
	id, err := ids.DecodePublic(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	o, err := orders.GetByID(database.DB, id)
	if errors.Is(err, orders.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		apiutil.ServerError(c, "Failed to load order", err)
		return
	}

	var org orgs.Organization
	if err := database.DB.Select("id", "currency").First(&org, o.OrgID).Error; err != nil {
		apiutil.ServerError(c, "Failed to load order", err)
		return
	}

	c.JSON(http.StatusOK, buildOrderStatus(code, org.Currency, o))
}
