package jobs_test

import (
	"context"
	"time"

	"restaurant-app/internal/domain/invitations"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/jobs"
	"restaurant-app/internal/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Cleaner", func() {
	var (
		db      *gorm.DB
		cleaner *jobs.Cleaner
		owner   *users.User
		org     *orgs.Organization
	)

	BeforeEach(func() {
		db, _ = testutil.SetupDB()
		owner = testutil.CreateUser(db, "owner@example.com")
		org = testutil.CreateOrg(db, owner, "Diner")
		cleaner = &jobs.Cleaner{DB: db, MinInterval: time.Millisecond, MaxInterval: 10 * time.Millisecond}
	})

	inviteAt := func(email string, at time.Time) {
		_, err := invitations.Create(db, invitations.CreateInput{
			OrgID:     org.ID,
			Email:     email,
			Role:      orgs.RoleWaiter,
			InvitedBy: owner.ID,
			ActorRole: orgs.RoleOwner,
			Limits:    plans.LimitsFor(plans.TierPro),
			TTL:       24 * time.Hour,
		}, at)
		Expect(err).NotTo(HaveOccurred())
	}

	It("purges invitations past retention and expired tokens", func() {
		now := time.Now()
		inviteAt("old@example.com", now.Add(-40*24*time.Hour))
		inviteAt("fresh@example.com", now)

		Expect(db.Create(&users.VerificationToken{
			UserID: owner.ID, Token: "expired", Type: users.TokenPasswordReset, ExpiresAt: now.Add(-time.Minute),
		}).Error).To(Succeed())
		Expect(db.Create(&users.VerificationToken{
			UserID: owner.ID, Token: "live", Type: users.TokenPasswordReset, ExpiresAt: now.Add(time.Hour),
		}).Error).To(Succeed())

		deleted, err := cleaner.RunOnce(context.Background(), now)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(Equal(int64(2)))

		left, err := invitations.List(db, org.ID, "all", now)
		Expect(err).NotTo(HaveOccurred())
		Expect(left).To(HaveLen(1))
		Expect(left[0].Email).To(Equal("fresh@example.com"))

		var tokens int64
		Expect(db.Model(&users.VerificationToken{}).Count(&tokens).Error).To(Succeed())
		Expect(tokens).To(Equal(int64(1)))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			cleaner.Run(ctx)
			close(done)
		}()
		cancel()
		Eventually(done).Should(BeClosed())
	})
})
