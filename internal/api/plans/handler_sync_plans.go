package plans

import (
	"net/http"
	"strings"

	"restaurant-app/config"
	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/infra/dbx"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
)

// POST /admin/sync-plans
func SyncPlansFromStripe(c *gin.Context) {
	stripe.Key = config.STRIPE_SECRET_KEY
	if stripe.Key == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe key not configured"})
		return
	}

	targetProductID := config.STRIPE_PRODUCT_ID

	params := &stripe.PriceListParams{}
	params.Active = stripe.Bool(true)
	params.Type = stripe.String("recurring")
	params.AddExpand("data.product")

	it := price.List(params)

	synced, created, updated, skipped := 0, 0, 0, 0
	seen := []string{}

	for it.Next() {
		p := it.Price()

		if !p.Active || p.Recurring == nil || p.Product == nil || !p.Product.Active {
			skipped++
			continue
		}
		if targetProductID != "" && p.Product.ID != targetProductID {
			skipped++
			continue
		}
		if p.Metadata != nil && p.Metadata["visible"] == "false" {
			skipped++
			continue
		}

		displayName := p.Product.Name
		tier := ""
		if p.Metadata != nil {
			if v := p.Metadata["name"]; v != "" {
				displayName = v
			}
			tier = strings.ToLower(p.Metadata["tier"])
		}

		var existing plans.Plan
		err := database.DB.Where("stripe_price_id = ?", p.ID).First(&existing).Error
		switch {
		case dbx.IsNotFound(err):
			plan := plans.Plan{
				Name:            displayName,
				PriceCents:      p.UnitAmount,
				Currency:        string(p.Currency),
				StripePriceID:   p.ID,
				StripeProductID: p.Product.ID,
				Interval:        string(p.Recurring.Interval),
				Tier:            tier,
				Active:          true,
			}
			if err := database.DB.Create(&plan).Error; err != nil {
				apiutil.ServerError(c, "Failed to create plan", err)
				return
			}
			created++
		case err != nil:
			apiutil.ServerError(c, "Failed to load plan", err)
			return
		default:
			existing.Name = displayName
			existing.PriceCents = p.UnitAmount
			existing.Currency = string(p.Currency)
			existing.StripeProductID = p.Product.ID
			existing.Interval = string(p.Recurring.Interval)
			existing.Active = true
			if tier != "" {
				existing.Tier = tier
			}
			if err := database.DB.Save(&existing).Error; err != nil {
				apiutil.ServerError(c, "Failed to update plan", err)
				return
			}
			updated++
		}

		seen = append(seen, p.ID)
		synced++
	}

	if err := it.Err(); err != nil {
		apiutil.ServerError(c, "Failed to fetch Stripe prices", err)
		return
	}

	// prices gone from Stripe stay for existing subscribers but leave the catalog
	q := database.DB.Model(&plans.Plan{}).Where("active = ?", true)
	if len(seen) > 0 {
		q = q.Where("stripe_price_id NOT IN ?", seen)
	}
	if err := q.Update("active", false).Error; err != nil {
		apiutil.ServerError(c, "Failed to deactivate plans", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"synced":  synced,
		"created": created,
		"updated": updated,
		"skipped": skipped,
	})
}

type PlanResponse struct {
	ID            int64           `json:"id,string"`
	Name          string          `json:"name"`
	Tier          string          `json:"tier"`
	PriceCents    int64           `json:"price_cents"`
	Currency      string          `json:"currency"`
	Interval      string          `json:"interval"`
	StripePriceID string          `json:"stripe_price_id"`
	Limits        plans.Limits    `json:"limits"`
	Features      []plans.Feature `json:"features"`
}

// GET /plans
func ListPlans(c *gin.Context) {
	var plansList []plans.Plan
	q := database.DB.Model(&plans.Plan{}).Where("active = ?", true)
	if config.STRIPE_PRODUCT_ID != "" {
		q = q.Where("stripe_product_id = ?", config.STRIPE_PRODUCT_ID)
	}

	if err := q.Order("price_cents ASC").Find(&plansList).Error; err != nil {
		apiutil.ServerError(c, "Failed to load plans", err)
		return
	}

	out := make([]PlanResponse, 0, len(plansList))
	for _, p := range plansList {
		tier := plans.PlanTier(&p)
		out = append(out, PlanResponse{
			ID:            p.ID,
			Name:          p.Name,
			Tier:          tier,
			PriceCents:    p.PriceCents,
			Currency:      p.Currency,
			Interval:      p.Interval,
			StripePriceID: p.StripePriceID,
			Limits:        plans.LimitsFor(tier),
			Features:      plans.FeaturesFor(tier),
		})
	}

	c.JSON(http.StatusOK, out)
}
