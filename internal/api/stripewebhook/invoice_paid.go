package stripewebhooks

import (
	"context"
	"strings"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/domain/billing"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/infra/dbx"

	"github.com/stripe/stripe-go/v75"
)

// handleInvoicePaid stores a billing.Invoice row; replays of the same invoice are no-ops.
func handleInvoicePaid(ctx context.Context, inv *stripe.Invoice) error {
	if inv.ID == "" {
		return nil
	}

	subID := ""
	if inv.Subscription != nil {
		subID = inv.Subscription.ID
	}
	org, err := findOrg(0, subID, customerID(inv.Customer))
	if err != nil || org == nil {
		return err
	}

	row := billing.Invoice{
		OrgID:           org.ID,
		StripeInvoiceID: inv.ID,
		AmountCents:     inv.AmountPaid,
		Currency:        strings.ToUpper(string(inv.Currency)),
		Status:          string(inv.Status),
	}
	if subID != "" {
		row.StripeSubscriptionID = &subID
	}
	if inv.HostedInvoiceURL != "" {
		u := inv.HostedInvoiceURL
		row.HostedInvoiceURL = &u
	}
	if inv.PeriodStart > 0 {
		t := time.Unix(inv.PeriodStart, 0)
		row.PeriodStart = &t
	}
	if inv.PeriodEnd > 0 {
		t := time.Unix(inv.PeriodEnd, 0)
		row.PeriodEnd = &t
	}
	if priceID := invoicePriceID(inv); priceID != "" {
		var plan plans.Plan
		if err := database.DB.Where("stripe_price_id = ?", priceID).First(&plan).Error; err == nil {
			row.PlanID = &plan.ID
		}
	}

	err = database.DB.WithContext(ctx).Create(&row).Error
	if dbx.IsUniqueViolation(err) {
		return nil
	}
	return err
}

func invoicePriceID(inv *stripe.Invoice) string {
	if inv.Lines == nil {
		return ""
	}
	for _, line := range inv.Lines.Data {
		if line != nil && line.Price != nil {
			return line.Price.ID
		}
	}
	return ""
}
