package middleware

import (
	"net/http"

	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/infra/metrics"

	"github.com/gin-gonic/gin"
)

// RequireFeature blocks routes the org's effective plan does not include.
// Must run after LoadOrg.
func RequireFeature(feature plans.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		policy := apiutil.Policy(c)
		if !policy.Has(feature) {
			metrics.Default.PlanLimitHits.WithLabelValues(string(feature)).Inc()
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":   "Your current plan does not include this feature",
				"feature": feature,
				"tier":    policy.Tier,
			})
			return
		}
		c.Next()
	}
}
