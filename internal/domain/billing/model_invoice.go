package billing

import (
	"time"

	"restaurant-app/internal/domain/model"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
)

// Invoice is a paid Stripe subscription invoice for an org.
type Invoice struct {
	model.Base
	OrgID                int64             `gorm:"not null;index" json:"org_id,string"`
	Org                  orgs.Organization `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PlanID               *int64            `json:"plan_id,string,omitempty"`
	Plan                 *plans.Plan       `json:"-"`
	StripeInvoiceID      string            `gorm:"uniqueIndex" json:"stripe_invoice_id"`
	StripeSubscriptionID *string           `json:"-"`
	AmountCents          int64             `json:"amount_cents"`
	Currency             string            `json:"currency"`
	Status               string            `json:"status"`
	HostedInvoiceURL     *string           `json:"hosted_invoice_url,omitempty"`
	PeriodStart          *time.Time        `json:"period_start,omitempty"`
	PeriodEnd            *time.Time        `json:"period_end,omitempty"`
}
