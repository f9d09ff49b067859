package access

import (
	"time"

	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/infra/stripe"
)

// Effective access for an org: trial|full|limited|locked
func ComputeEffectiveAccessState(now time.Time, o orgs.Organization) AccessState {
	// Active trial
	if o.TrialEndAt != nil && now.Before(*o.TrialEndAt) {
		return AccessTrial
	}

	// No subscription at all
	if o.SubscriptionID == nil || *o.SubscriptionID == "" {
		return AccessLocked
	}

	switch stripe.NormalizeStripeStatus(o.StripeSubscriptionStatus) {
	case "active", "trialing":
		return AccessFull

	case "past_due":
		return AccessLimited

	case "canceled":
		// paid-through end date still counts
		if o.CurrentPeriodEnd != nil && now.Before(*o.CurrentPeriodEnd) {
			return AccessFull
		}
		return AccessLocked

	default:
		return AccessLocked
	}
}
