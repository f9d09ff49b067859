package stripewebhooks

import (
	"context"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/public"
	"restaurant-app/internal/domain/orgs"

	"github.com/stripe/stripe-go/v75"
)

func handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	org, err := findOrg(orgIDFromMetadata(sub.Metadata), sub.ID, customerID(sub.Customer))
	if err != nil || org == nil {
		return err
	}

	err = database.DB.WithContext(ctx).Model(&orgs.Organization{}).
		Where("id = ?", org.ID).
		Updates(map[string]interface{}{
			"stripe_subscription_status": string(sub.Status),
			"current_period_end":         time.Unix(sub.CurrentPeriodEnd, 0),
			"pending_plan_id":            nil,
			"pending_plan_start_date":    nil,
			"stripe_schedule_id":         nil,
		}).Error
	if err != nil {
		return err
	}
	public.InvalidateMenu(org.Slug)
	return nil
}
