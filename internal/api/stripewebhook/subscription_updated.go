package stripewebhooks

import (
	"context"
	"errors"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/public"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/infra/dbx"

	"github.com/stripe/stripe-go/v75"
)

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func handleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	if sub.ID == "" || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return errors.New("subscription missing id/items/price")
	}

	org, err := findOrg(orgIDFromMetadata(sub.Metadata), sub.ID, customerID(sub.Customer))
	if err != nil {
		return err
	}
	if org == nil {
		// acknowledge so Stripe stops retrying for deleted orgs
		return nil
	}

	var plan plans.Plan
	err = database.DB.Where("stripe_price_id = ?", sub.Items.Data[0].Price.ID).First(&plan).Error
	if dbx.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"plan_id":                    plan.ID,
		"current_period_end":         time.Unix(sub.CurrentPeriodEnd, 0),
		"stripe_subscription_status": string(sub.Status),
		"subscription_id":            sub.ID,
	}

	// the scheduled downgrade took effect
	if org.PendingPlanID != nil && *org.PendingPlanID == plan.ID {
		updates["pending_plan_id"] = nil
		updates["pending_plan_start_date"] = nil
		updates["stripe_schedule_id"] = nil
	}

	if err := database.DB.WithContext(ctx).Model(&orgs.Organization{}).
		Where("id = ?", org.ID).
		Updates(updates).Error; err != nil {
		return err
	}
	public.InvalidateMenu(org.Slug)
	return nil
}
