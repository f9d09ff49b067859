package billing

import (
	"net/http"
	"time"

	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
)

type SummaryResponse struct {
	Plan          *PlanDTO          `json:"plan"`
	Subscription  *SubscriptionDTO  `json:"subscription"`
	Trial         *TrialDTO         `json:"trial"`
	PendingChange *PendingChangeDTO `json:"pending_change"`
	Access        access.Policy     `json:"access"`
}

type PlanDTO struct {
	ID            int64  `json:"id,string"`
	Name          string `json:"name"`
	Tier          string `json:"tier"`
	Interval      string `json:"interval"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	StripePriceID string `json:"stripe_price_id"`
}

type SubscriptionDTO struct {
	Status           string     `json:"status"`
	StartsAt         *time.Time `json:"starts_at"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}

type TrialDTO struct {
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	DaysLeft int        `json:"days_left"`
}

type PendingChangeDTO struct {
	EffectiveAt *time.Time `json:"effective_at"`
	Plan        *PlanDTO   `json:"plan"`
}

// GET /orgs/:orgID/billing
func GetSummary(c *gin.Context) {
	org := apiutil.Org(c)
	now := time.Now()

	c.JSON(http.StatusOK, SummaryResponse{
		Plan:          BuildPlanDTO(org.Plan),
		Subscription:  BuildSubscriptionDTO(*org),
		Trial:         BuildTrialDTO(now, org.TrialStartAt, org.TrialEndAt),
		PendingChange: BuildPendingChangeDTO(*org),
		Access:        apiutil.Policy(c),
	})
}

func BuildPlanDTO(p *plans.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:            p.ID,
		Name:          p.Name,
		Tier:          plans.PlanTier(p),
		Interval:      p.Interval,
		PriceCents:    p.PriceCents,
		Currency:      p.Currency,
		StripePriceID: p.StripePriceID,
	}
}

func BuildSubscriptionDTO(o orgs.Organization) *SubscriptionDTO {
	if o.SubscriptionID == nil || *o.SubscriptionID == "" {
		return nil
	}
	return &SubscriptionDTO{
		Status:           stripe.NormalizeStripeStatus(o.StripeSubscriptionStatus),
		StartsAt:         o.SubscriptionStart,
		CurrentPeriodEnd: o.CurrentPeriodEnd,
	}
}

func BuildTrialDTO(now time.Time, start, end *time.Time) *TrialDTO {
	if start == nil || end == nil {
		return nil
	}
	daysLeft := 0
	if now.Before(*end) {
		daysLeft = int(end.Sub(now).Hours() / 24)
	}
	return &TrialDTO{StartsAt: start, EndsAt: end, DaysLeft: daysLeft}
}

func BuildPendingChangeDTO(o orgs.Organization) *PendingChangeDTO {
	if o.PendingPlanID == nil || o.PendingPlan == nil || o.PendingPlanStartDate == nil {
		return nil
	}
	return &PendingChangeDTO{
		EffectiveAt: o.PendingPlanStartDate,
		Plan:        BuildPlanDTO(o.PendingPlan),
	}
}
