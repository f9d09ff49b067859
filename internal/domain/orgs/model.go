package orgs

import (
	"time"

	"restaurant-app/internal/domain/model"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/users"
)

type Organization struct {
	model.Base
	Name           string `gorm:"not null" json:"name"`
	Slug           string `gorm:"not null;uniqueIndex:idx_orgs_slug" json:"slug"`
	Currency       string `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	Timezone       string `gorm:"not null;default:'UTC'" json:"timezone"`
	Address        string `json:"address,omitempty"`
	WhatsAppNumber string `gorm:"column:whatsapp_number" json:"whatsapp_number,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`

	PlanID *int64      `json:"-"`
	Plan   *plans.Plan `json:"-"`

	StripeCustomerID         *string    `gorm:"column:stripe_customer_id;uniqueIndex:idx_orgs_stripe_customer_id" json:"-"`
	SubscriptionID           *string    `gorm:"column:subscription_id;uniqueIndex:idx_orgs_subscription_id" json:"-"`
	StripeSubscriptionStatus *string    `gorm:"column:stripe_subscription_status" json:"-"`
	SubscriptionStart        *time.Time `json:"-"`
	CurrentPeriodEnd         *time.Time `gorm:"column:current_period_end" json:"-"`

	PendingPlan          *plans.Plan `gorm:"foreignKey:PendingPlanID" json:"-"`
	PendingPlanID        *int64      `gorm:"column:pending_plan_id" json:"-"`
	PendingPlanStartDate *time.Time  `gorm:"column:pending_plan_start_date" json:"-"`
	StripeScheduleID     *string     `gorm:"column:stripe_schedule_id" json:"-"`

	TrialStartAt *time.Time `gorm:"column:trial_start_at" json:"-"`
	TrialEndAt   *time.Time `gorm:"column:trial_end_at" json:"-"`
}

type Membership struct {
	model.Base
	OrgID  int64        `gorm:"not null;uniqueIndex:idx_memberships_org_user,priority:1" json:"org_id,string"`
	Org    Organization `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID int64        `gorm:"not null;uniqueIndex:idx_memberships_org_user,priority:2;index" json:"user_id,string"`
	User   users.User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Role   Role         `gorm:"type:varchar(20);not null" json:"role"`
}
