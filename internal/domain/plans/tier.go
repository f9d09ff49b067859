package plans

import "strings"

const (
	TierFree    = "free"
	TierStarter = "starter"
	TierPro     = "pro"
)

// PlanTier returns the effective tier for a plan.
// Priority:
// 1. Explicit Tier stored in DB
// 2. Fallback inference by price for rows synced before tiers were tagged
func PlanTier(p *Plan) string {
	if p == nil {
		return TierFree
	}

	tier := strings.ToLower(strings.TrimSpace(p.Tier))
	switch tier {
	case TierFree, TierStarter, TierPro:
		return tier
	}

	return inferTierFromPrice(p.PriceCents, p.Interval)
}

func inferTierFromPrice(priceCents int64, interval string) string {
	monthly := priceCents
	if interval == "year" {
		monthly = priceCents / 12
	}
	switch {
	case monthly >= 7900:
		return TierPro
	case monthly > 0:
		return TierStarter
	default:
		return TierFree
	}
}

// Rank orders tiers so upgrades and downgrades can be told apart.
func Rank(tier string) int {
	switch tier {
	case TierPro:
		return 2
	case TierStarter:
		return 1
	default:
		return 0
	}
}
