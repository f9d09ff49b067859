package plans

import "restaurant-app/internal/domain/model"

type Plan struct {
	model.Base
	Name            string `json:"name"`
	PriceCents      int64  `json:"price_cents"`
	Currency        string `gorm:"type:varchar(3);not null;default:'eur'" json:"currency"`
	StripePriceID   string `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id" json:"stripe_price_id"`
	StripeProductID string `gorm:"column:stripe_product_id;index" json:"-"`
	Interval        string `json:"interval"`
	Tier            string `gorm:"column:tier" json:"tier"` // "starter" | "pro"
	Active          bool   `gorm:"not null;default:true" json:"active"`
}
