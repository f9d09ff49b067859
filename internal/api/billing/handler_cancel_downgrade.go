package billing

import (
	"net/http"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/orgs"

	"github.com/gin-gonic/gin"
	schedules "github.com/stripe/stripe-go/v75/subscriptionschedule"
)

// POST /orgs/:orgID/billing/cancel-downgrade
func CancelDowngrade(c *gin.Context) {
	if !stripeReady(c) {
		return
	}

	org := apiutil.Org(c)

	if org.StripeScheduleID == nil || *org.StripeScheduleID == "" || org.PendingPlanID == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No pending downgrade to cancel"})
		return
	}

	scheduleID := *org.StripeScheduleID

	// releasing keeps the subscription on the current plan
	if _, err := schedules.Release(scheduleID, nil); err != nil {
		apiutil.ServerError(c, "Failed to release Stripe schedule", err)
		return
	}

	if err := database.DB.Model(&orgs.Organization{}).
		Where("id = ?", org.ID).
		Updates(map[string]interface{}{
			"pending_plan_id":         nil,
			"pending_plan_start_date": nil,
			"stripe_schedule_id":      nil,
		}).Error; err != nil {
		apiutil.ServerError(c, "Failed to clear pending downgrade", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pending downgrade cancelled"})
}
