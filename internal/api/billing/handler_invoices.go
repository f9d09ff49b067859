package billing

import (
	"net/http"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// GET /orgs/:orgID/billing/invoices
func ListInvoices(c *gin.Context) {
	org := apiutil.Org(c)

	var invoices []billing.Invoice
	if err := database.DB.
		Where("org_id = ?", org.ID).
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		apiutil.ServerError(c, "Failed to load invoices", err)
		return
	}

	c.JSON(http.StatusOK, invoices)
}
