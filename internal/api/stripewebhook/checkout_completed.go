package stripewebhooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/public"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
)

func handleCheckoutSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	fullSession, err := checkoutsession.Get(session.ID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("subscription"),
				stripe.String("customer"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}

	if fullSession.Subscription == nil || fullSession.Subscription.ID == "" {
		return errors.New("checkout session missing subscription")
	}
	subscriptionID := fullSession.Subscription.ID

	subData, err := subscription.Get(subscriptionID, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}
	if subData.Items == nil || len(subData.Items.Data) == 0 || subData.Items.Data[0].Price == nil {
		return errors.New("subscription has no price item")
	}

	orgID := orgIDFromMetadata(subData.Metadata)
	if orgID == 0 {
		orgID, _ = strconv.ParseInt(fullSession.ClientReferenceID, 10, 64)
	}
	if orgID == 0 {
		return errors.New("missing org_id (metadata.org_id or client_reference_id)")
	}

	var org orgs.Organization
	if err := database.DB.First(&org, orgID).Error; err != nil {
		return fmt.Errorf("org not found: %w", err)
	}

	priceID := subData.Items.Data[0].Price.ID
	var plan plans.Plan
	if err := database.DB.Where("stripe_price_id = ?", priceID).First(&plan).Error; err != nil {
		return fmt.Errorf("plan not found for stripe price_id=%s: %w", priceID, err)
	}

	now := time.Now()
	periodEnd := time.Unix(subData.CurrentPeriodEnd, 0)

	updates := map[string]interface{}{
		"plan_id":                    plan.ID,
		"subscription_id":            subscriptionID,
		"subscription_start":         now,
		"current_period_end":         periodEnd,
		"stripe_subscription_status": string(subData.Status),
		"trial_end_at":               now,
		"pending_plan_id":            nil,
		"pending_plan_start_date":    nil,
		"stripe_schedule_id":         nil,
	}
	if fullSession.Customer != nil && fullSession.Customer.ID != "" {
		updates["stripe_customer_id"] = fullSession.Customer.ID
	}

	// one subscription per org
	if org.SubscriptionID != nil && *org.SubscriptionID != "" && *org.SubscriptionID != subscriptionID {
		if _, err := subscription.Cancel(*org.SubscriptionID, nil); err != nil {
			slog.WarnContext(ctx, "Failed to cancel previous subscription", "org_id", org.ID, "subscription_id", *org.SubscriptionID)
		}
	}

	if err := database.DB.Model(&orgs.Organization{}).
		Where("id = ?", org.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update org after checkout: %w", err)
	}
	public.InvalidateMenu(org.Slug)

	slog.InfoContext(ctx, "Subscription activated", "org_id", org.ID, "plan", plan.Name)
	return nil
}
