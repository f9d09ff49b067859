package billing

import (
	"log/slog"
	"net/http"
	"strconv"

	"restaurant-app/config"
	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/logger"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	portalSession "github.com/stripe/stripe-go/v75/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	customer "github.com/stripe/stripe-go/v75/customer"
)

// POST /orgs/:orgID/billing/checkout
func CreateCheckoutSession(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}

	if !stripeReady(c) {
		return
	}

	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}
	org := apiutil.Org(c)

	// allow-list price id
	var plan plans.Plan
	if err := database.DB.Where("stripe_price_id = ? AND active = ?", body.PriceID, true).First(&plan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan/price_id"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email first"})
		return
	}

	orgIDStr := strconv.FormatInt(org.ID, 10)

	// one Stripe customer per org
	if org.StripeCustomerID == nil || *org.StripeCustomerID == "" {
		cus, err := customer.New(&stripe.CustomerParams{
			Email:    stripe.String(user.Email),
			Name:     stripe.String(org.Name),
			Metadata: orgMetadata(orgIDStr, ""),
		})
		if err != nil {
			apiutil.ServerError(c, "Failed to create Stripe customer", err)
			return
		}

		if err := database.DB.Model(&orgs.Organization{}).
			Where("id = ?", org.ID).
			Update("stripe_customer_id", cus.ID).Error; err != nil {
			apiutil.ServerError(c, "Failed to store Stripe customer", err)
			return
		}
		org.StripeCustomerID = stripe.String(cus.ID)
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(config.APP_URL + "/orgs/" + orgIDStr + "/billing"),
		CancelURL:  stripe.String(config.APP_URL + "/orgs/" + orgIDStr + "/billing?canceled=1"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(*org.StripeCustomerID),

		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(plan.StripePriceID), Quantity: stripe.Int64(1)},
		},

		ClientReferenceID: stripe.String(orgIDStr),

		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: orgMetadata(orgIDStr, strconv.FormatInt(plan.ID, 10)),
		},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		apiutil.ServerError(c, "Failed to create checkout session", err)
		return
	}

	slog.InfoContext(c.Request.Context(), "Checkout session created", "plan", plan.Name, "session_id", s.ID)
	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}

// POST /orgs/:orgID/billing/portal
func CreateBillingPortal(c *gin.Context) {
	if !stripeReady(c) {
		return
	}

	org := apiutil.Org(c)
	if org.StripeCustomerID == nil || *org.StripeCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}

	portal, err := portalSession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*org.StripeCustomerID),
		ReturnURL: stripe.String(config.APP_URL + "/orgs/" + strconv.FormatInt(org.ID, 10) + "/billing"),
	})
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Billing portal failed", logger.ErrAttr(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
