package reports

import (
	"net/http"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/reports"

	"github.com/gin-gonic/gin"
)

// GET /orgs/:orgID/reports/sales?from=YYYY-MM-DD&to=YYYY-MM-DD
func GetSales(c *gin.Context) {
	org := apiutil.Org(c)
	loc := org.Location()

	from, to, err := reports.ParseRange(c.Query("from"), c.Query("to"), time.Now(), loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, use YYYY-MM-DD with from before to"})
		return
	}
	if to.Sub(from) > 366*24*time.Hour {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date range cannot exceed one year"})
		return
	}

	sales, err := reports.SalesReport(database.DB, org.ID, from, to, loc)
	if err != nil {
		apiutil.ServerError(c, "Failed to build sales report", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currency": org.Currency,
		"timezone": loc.String(),
		"sales":    sales,
	})
}
