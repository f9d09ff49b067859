package billing

import (
	"log/slog"
	"net/http"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/api/public"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	stripesub "github.com/stripe/stripe-go/v75/subscription"
	schedules "github.com/stripe/stripe-go/v75/subscriptionschedule"
)

// isUpgrade compares tiers first, then monthly-normalized price.
func isUpgrade(current *plans.Plan, target plans.Plan) bool {
	if current == nil {
		return true
	}
	cr, tr := plans.Rank(plans.PlanTier(current)), plans.Rank(plans.PlanTier(&target))
	if cr != tr {
		return tr > cr
	}
	return monthlyCents(target) > monthlyCents(*current)
}

func monthlyCents(p plans.Plan) int64 {
	if p.Interval == "year" {
		return p.PriceCents / 12
	}
	return p.PriceCents
}

// POST /orgs/:orgID/billing/change-plan
// Upgrades apply now with proration; downgrades are scheduled for the period end.
func ChangePlan(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}

	if !stripeReady(c) {
		return
	}

	org := apiutil.Org(c)

	var targetPlan plans.Plan
	if err := database.DB.Where("stripe_price_id = ?", body.PriceID).First(&targetPlan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target plan not found (run /admin/sync-plans)"})
		return
	}

	if org.SubscriptionID == nil || *org.SubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active subscription to change. Use checkout first."})
		return
	}

	sub, err := stripesub.Get(*org.SubscriptionID, nil)
	if err != nil {
		apiutil.ServerError(c, "Failed to fetch Stripe subscription", err)
		return
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Subscription has no price item"})
		return
	}

	item := sub.Items.Data[0]
	currentPriceID := item.Price.ID
	if currentPriceID == targetPlan.StripePriceID {
		c.JSON(http.StatusOK, gin.H{"message": "Already on this plan"})
		return
	}

	if isUpgrade(org.Plan, targetPlan) {
		updatedSub, err := stripesub.Update(*org.SubscriptionID, &stripe.SubscriptionParams{
			Items: []*stripe.SubscriptionItemsParams{
				{
					ID:    stripe.String(item.ID),
					Price: stripe.String(targetPlan.StripePriceID),
				},
			},
			ProrationBehavior: stripe.String("create_prorations"),
		})
		if err != nil {
			apiutil.ServerError(c, "Failed to upgrade subscription", err)
			return
		}

		// an upgrade supersedes any scheduled downgrade
		if org.StripeScheduleID != nil && *org.StripeScheduleID != "" {
			if _, err := schedules.Release(*org.StripeScheduleID, nil); err != nil {
				slog.WarnContext(c.Request.Context(), "Failed to release schedule on upgrade", "schedule_id", *org.StripeScheduleID)
			}
		}

		periodEnd := time.Unix(updatedSub.CurrentPeriodEnd, 0)
		if err := database.DB.Model(&orgs.Organization{}).
			Where("id = ?", org.ID).
			Updates(map[string]interface{}{
				"plan_id":                 targetPlan.ID,
				"current_period_end":      periodEnd,
				"pending_plan_id":         nil,
				"pending_plan_start_date": nil,
				"stripe_schedule_id":      nil,
			}).Error; err != nil {
			apiutil.ServerError(c, "Failed to update organization", err)
			return
		}
		public.InvalidateMenu(org.Slug)

		c.JSON(http.StatusOK, gin.H{
			"message":            "Upgraded now (prorated automatically by Stripe)",
			"is_upgrade":         true,
			"current_period_end": periodEnd,
		})
		return
	}

	periodStartUnix := sub.CurrentPeriodStart
	periodEndUnix := sub.CurrentPeriodEnd
	effectiveAt := time.Unix(periodEndUnix, 0)

	scheduleID := ""
	if sub.Schedule != nil {
		scheduleID = sub.Schedule.ID
	}

	if scheduleID == "" {
		schedule, err := schedules.New(&stripe.SubscriptionScheduleParams{
			FromSubscription: stripe.String(sub.ID),
		})
		if err != nil {
			apiutil.ServerError(c, "Failed to create schedule", err)
			return
		}
		scheduleID = schedule.ID
	}

	_, err = schedules.Update(scheduleID, &stripe.SubscriptionScheduleParams{
		EndBehavior: stripe.String("release"),
		Phases: []*stripe.SubscriptionSchedulePhaseParams{
			{
				StartDate: stripe.Int64(periodStartUnix),
				EndDate:   stripe.Int64(periodEndUnix),
				Items: []*stripe.SubscriptionSchedulePhaseItemParams{
					{Price: stripe.String(currentPriceID), Quantity: stripe.Int64(1)},
				},
			},
			{
				StartDate: stripe.Int64(periodEndUnix),
				Items: []*stripe.SubscriptionSchedulePhaseItemParams{
					{Price: stripe.String(targetPlan.StripePriceID), Quantity: stripe.Int64(1)},
				},
			},
		},
	})
	if err != nil {
		apiutil.ServerError(c, "Failed to update schedule phases", err)
		return
	}

	// keep plan_id until effectiveAt
	if err := database.DB.Model(&orgs.Organization{}).
		Where("id = ?", org.ID).
		Updates(map[string]interface{}{
			"pending_plan_id":         targetPlan.ID,
			"pending_plan_start_date": effectiveAt,
			"stripe_schedule_id":      scheduleID,
			"current_period_end":      effectiveAt,
		}).Error; err != nil {
		apiutil.ServerError(c, "Failed to store pending downgrade", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Downgrade scheduled for next billing cycle",
		"is_upgrade":   false,
		"effective_at": effectiveAt,
	})
}
