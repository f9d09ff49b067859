package billing

import (
	"net/http"

	"restaurant-app/config"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

func stripeReady(c *gin.Context) bool {
	stripe.Key = config.STRIPE_SECRET_KEY
	if stripe.Key == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe key not configured"})
		return false
	}
	return true
}

func orgMetadata(orgID, planID string) map[string]string {
	md := map[string]string{"org_id": orgID, "app_env": config.ENV}
	if planID != "" {
		md["plan_id"] = planID
	}
	return md
}
