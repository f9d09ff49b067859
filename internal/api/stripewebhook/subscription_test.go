package stripewebhooks

import (
	"context"
	"net/http"
	"time"

	"restaurant-app/internal/api/public"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/testutil"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

var _ = Describe("Subscription events", func() {
	var (
		db     *gorm.DB
		router *gin.Engine
		org    *orgs.Organization
		subID  string
	)

	hasWhatsApp := func() any {
		w := testutil.Do(router, http.MethodGet, "/public/orgs/"+org.Slug+"/menu", "", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		return testutil.Decode(w)["org"].(map[string]any)["has_whatsapp"]
	}

	BeforeEach(func() {
		db, _ = testutil.SetupDB()
		router = gin.New()
		router.GET("/public/orgs/:slug/menu", public.GetMenu)

		owner := testutil.CreateUser(db, "owner@example.com")
		org = testutil.CreateOrg(db, owner, "Cafe Sol")
		public.InvalidateMenu(org.Slug)

		testutil.SetTier(db, org, plans.TierStarter)
		Expect(db.Model(org).Update("whatsapp_number", "34600111222").Error).To(Succeed())

		var fresh orgs.Organization
		Expect(db.First(&fresh, org.ID).Error).To(Succeed())
		subID = *fresh.SubscriptionID

		// warm the cache with the starter features
		Expect(hasWhatsApp()).To(BeTrue())
	})

	It("refreshes the public menu when the subscription ends", func() {
		err := handleSubscriptionDeleted(context.Background(), &stripe.Subscription{
			ID:               subID,
			Status:           stripe.SubscriptionStatusCanceled,
			CurrentPeriodEnd: time.Now().Add(-time.Hour).Unix(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(hasWhatsApp()).To(BeFalse())
	})

	It("refreshes the public menu after a downgrade", func() {
		free := plans.Plan{Name: "Free", StripePriceID: "price_free", Interval: "month", Tier: plans.TierFree, Active: true}
		Expect(db.Create(&free).Error).To(Succeed())

		err := handleSubscriptionUpdated(context.Background(), &stripe.Subscription{
			ID:               subID,
			Status:           stripe.SubscriptionStatusActive,
			CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour).Unix(),
			Items: &stripe.SubscriptionItemList{
				Data: []*stripe.SubscriptionItem{{Price: &stripe.Price{ID: "price_free"}}},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(hasWhatsApp()).To(BeFalse())
	})
})
