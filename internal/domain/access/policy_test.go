package access_test

import (
	"time"

	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func ptr[T any](v T) *T { return &v }

var _ = Describe("ComputePolicy", func() {
	var (
		now     time.Time
		starter *plans.Plan
	)

	BeforeEach(func() {
		now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		starter = &plans.Plan{Tier: plans.TierStarter}
	})

	It("gives pro during the trial", func() {
		org := orgs.Organization{TrialEndAt: ptr(now.Add(time.Hour))}

		p := access.ComputePolicy(now, org)
		Expect(p.State).To(Equal(access.AccessTrial))
		Expect(p.Tier).To(Equal(plans.TierPro))
		Expect(p.Has(plans.FeatureReports)).To(BeTrue())
		Expect(p.PublicMode).To(Equal(access.PublicOrdering))
	})

	It("locks an org without subscription once the trial ended", func() {
		org := orgs.Organization{TrialEndAt: ptr(now.Add(-time.Hour)), Plan: starter}

		p := access.ComputePolicy(now, org)
		Expect(p.State).To(Equal(access.AccessLocked))
		Expect(p.Tier).To(Equal(plans.TierFree))
		Expect(p.Limits).To(Equal(plans.LimitsFor(plans.TierFree)))
	})

	It("uses the plan tier for an active subscription", func() {
		org := orgs.Organization{
			SubscriptionID:           ptr("sub_1"),
			StripeSubscriptionStatus: ptr("active"),
			Plan:                     starter,
		}

		p := access.ComputePolicy(now, org)
		Expect(p.State).To(Equal(access.AccessFull))
		Expect(p.Tier).To(Equal(plans.TierStarter))
		Expect(p.Has(plans.FeaturePOS)).To(BeTrue())
		Expect(p.Has(plans.FeatureReports)).To(BeFalse())
	})

	It("falls back to free limits while past due", func() {
		org := orgs.Organization{
			SubscriptionID:           ptr("sub_1"),
			StripeSubscriptionStatus: ptr("past_due"),
			Plan:                     starter,
		}

		p := access.ComputePolicy(now, org)
		Expect(p.State).To(Equal(access.AccessLimited))
		Expect(p.Tier).To(Equal(plans.TierFree))
	})

	It("keeps a canceled subscription until the paid period ends", func() {
		org := orgs.Organization{
			SubscriptionID:           ptr("sub_1"),
			StripeSubscriptionStatus: ptr("canceled"),
			CurrentPeriodEnd:         ptr(now.Add(24 * time.Hour)),
			Plan:                     starter,
		}
		Expect(access.ComputePolicy(now, org).State).To(Equal(access.AccessFull))

		org.CurrentPeriodEnd = ptr(now.Add(-time.Minute))
		Expect(access.ComputePolicy(now, org).State).To(Equal(access.AccessLocked))
	})
})
