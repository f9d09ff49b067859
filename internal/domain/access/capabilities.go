package access

import (
	"slices"

	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
)

// EffectiveTier maps the access state onto the tier whose limits apply.
func EffectiveTier(state AccessState, o orgs.Organization) string {
	switch state {
	case AccessTrial:
		return plans.TierPro
	case AccessFull:
		return plans.PlanTier(o.Plan)
	default:
		return plans.TierFree
	}
}

func PublicModeFor(features []plans.Feature) PublicMode {
	if slices.Contains(features, plans.FeatureQRMenu) {
		return PublicOrdering
	}
	return PublicMenuOnly
}
