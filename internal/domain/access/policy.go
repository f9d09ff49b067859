package access

import (
	"slices"
	"time"

	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
)

type Policy struct {
	State      AccessState     `json:"state"`
	Tier       string          `json:"tier"`
	Limits     plans.Limits    `json:"limits"`
	Features   []plans.Feature `json:"features"`
	PublicMode PublicMode      `json:"public_mode"`
}

// ComputePolicy expects o.Plan to be preloaded.
func ComputePolicy(now time.Time, o orgs.Organization) Policy {
	state := ComputeEffectiveAccessState(now, o)
	tier := EffectiveTier(state, o)
	features := plans.FeaturesFor(tier)

	return Policy{
		State:      state,
		Tier:       tier,
		Limits:     plans.LimitsFor(tier),
		Features:   features,
		PublicMode: PublicModeFor(features),
	}
}

func (p Policy) Has(f plans.Feature) bool {
	return slices.Contains(p.Features, f)
}
