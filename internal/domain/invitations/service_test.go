package invitations_test

import (
	"errors"
	"time"

	"restaurant-app/internal/domain/invitations"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Invitations", func() {
	var (
		db    *gorm.DB
		owner *users.User
		org   *orgs.Organization
		now   time.Time
	)

	roomy := plans.Limits{Tables: plans.Unlimited, MenuItems: plans.Unlimited, Seats: 10}

	invite := func(email string, role orgs.Role, limits plans.Limits) (*invitations.Created, error) {
		return invitations.Create(db, invitations.CreateInput{
			OrgID:     org.ID,
			Email:     email,
			Role:      role,
			InvitedBy: owner.ID,
			ActorRole: orgs.RoleOwner,
			Limits:    limits,
			TTL:       48 * time.Hour,
		}, now)
	}

	BeforeEach(func() {
		db, _ = testutil.SetupDB()
		owner = testutil.CreateUser(db, "owner@example.com")
		org = testutil.CreateOrg(db, owner, "Bistro")
		now = time.Now()
	})

	Describe("Create", func() {
		It("stores only the token hash", func() {
			created, err := invite("  Waiter@Example.com ", orgs.RoleWaiter, roomy)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.RawToken).To(HaveLen(64))
			Expect(created.Invitation.TokenHash).To(Equal(invitations.HashToken(created.RawToken)))
			Expect(created.Invitation.TokenHash).NotTo(Equal(created.RawToken))
			Expect(created.Invitation.Email).To(Equal("waiter@example.com"))
			Expect(created.Invitation.StatusAt(now)).To(Equal(invitations.StatusPending))
		})

		It("replaces an earlier pending invite for the same email", func() {
			first, err := invite("cook@example.com", orgs.RoleKitchen, roomy)
			Expect(err).NotTo(HaveOccurred())
			_, err = invite("cook@example.com", orgs.RoleKitchen, roomy)
			Expect(err).NotTo(HaveOccurred())

			pending, err := invitations.List(db, org.ID, invitations.StatusPending, now.Add(time.Second))
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).NotTo(Equal(first.Invitation.ID))
		})

		It("counts pending invitations against the seat limit", func() {
			limits := plans.Limits{Seats: 2}
			_, err := invite("a@example.com", orgs.RoleWaiter, limits)
			Expect(err).NotTo(HaveOccurred())

			_, err = invite("b@example.com", orgs.RoleWaiter, limits)
			Expect(errors.Is(err, invitations.ErrSeatLimit)).To(BeTrue())
		})

		It("refuses owner invitations", func() {
			_, err := invite("boss@example.com", orgs.RoleOwner, roomy)
			Expect(errors.Is(err, invitations.ErrInvalidRole)).To(BeTrue())
		})

		It("keeps managers to floor and kitchen roles", func() {
			_, err := invitations.Create(db, invitations.CreateInput{
				OrgID:     org.ID,
				Email:     "m2@example.com",
				Role:      orgs.RoleManager,
				InvitedBy: owner.ID,
				ActorRole: orgs.RoleManager,
				Limits:    roomy,
				TTL:       time.Hour,
			}, now)
			Expect(errors.Is(err, orgs.ErrForbiddenRole)).To(BeTrue())
		})

		It("refuses existing members", func() {
			_, err := invite("owner@example.com", orgs.RoleWaiter, roomy)
			Expect(errors.Is(err, invitations.ErrAlreadyMember)).To(BeTrue())
		})
	})

	Describe("Accept", func() {
		var (
			invitee *users.User
			created *invitations.Created
		)

		BeforeEach(func() {
			invitee = testutil.CreateUser(db, "waiter@example.com")
			var err error
			created, err = invite("waiter@example.com", orgs.RoleWaiter, roomy)
			Expect(err).NotTo(HaveOccurred())
		})

		accept := func(u *users.User, at time.Time) (*orgs.Membership, error) {
			return invitations.Accept(db, invitations.AcceptInput{RawToken: created.RawToken, User: *u}, at)
		}

		It("creates the membership with the invited role", func() {
			m, err := accept(invitee, now.Add(time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Role).To(Equal(orgs.RoleWaiter))

			found, err := orgs.FindMembership(db, org.ID, invitee.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Role).To(Equal(orgs.RoleWaiter))

			inv, err := invitations.FindByToken(db, created.RawToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.StatusAt(now)).To(Equal(invitations.StatusAccepted))
			Expect(*inv.AcceptedBy).To(Equal(invitee.ID))
		})

		It("accepts at most once", func() {
			_, err := accept(invitee, now.Add(time.Minute))
			Expect(err).NotTo(HaveOccurred())

			_, err = accept(invitee, now.Add(2*time.Minute))
			Expect(errors.Is(err, invitations.ErrAlreadyAccepted)).To(BeTrue())

			n, err := orgs.CountMembers(db, org.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(2)))
		})

		It("rejects expired invitations", func() {
			_, err := accept(invitee, now.Add(49*time.Hour))
			Expect(errors.Is(err, invitations.ErrExpired)).To(BeTrue())
		})

		It("rejects revoked invitations", func() {
			Expect(invitations.Revoke(db, org.ID, created.Invitation.ID, now)).To(Succeed())
			_, err := accept(invitee, now.Add(time.Minute))
			Expect(errors.Is(err, invitations.ErrRevoked)).To(BeTrue())
		})

		It("requires the invited email", func() {
			other := testutil.CreateUser(db, "someone@example.com")
			_, err := accept(other, now.Add(time.Minute))
			Expect(errors.Is(err, invitations.ErrEmailMismatch)).To(BeTrue())
		})

		It("rejects unknown tokens", func() {
			_, err := invitations.Accept(db, invitations.AcceptInput{RawToken: "nope", User: *invitee}, now)
			Expect(errors.Is(err, invitations.ErrNotFound)).To(BeTrue())
		})

		It("re-checks seats at accept time", func() {
			_, err := invitations.Accept(db, invitations.AcceptInput{
				RawToken: created.RawToken,
				User:     *invitee,
				LimitsFor: func(tx *gorm.DB, orgID int64) (plans.Limits, error) {
					return plans.Limits{Seats: 1}, nil
				},
			}, now.Add(time.Minute))
			Expect(errors.Is(err, invitations.ErrSeatLimit)).To(BeTrue())
		})
	})

	Describe("Revoke and Resend", func() {
		var created *invitations.Created

		BeforeEach(func() {
			var err error
			created, err = invite("cook@example.com", orgs.RoleKitchen, roomy)
			Expect(err).NotTo(HaveOccurred())
		})

		It("cannot revoke twice", func() {
			Expect(invitations.Revoke(db, org.ID, created.Invitation.ID, now)).To(Succeed())
			err := invitations.Revoke(db, org.ID, created.Invitation.ID, now)
			Expect(errors.Is(err, invitations.ErrNotPending)).To(BeTrue())
		})

		It("rotates the token and extends an expired invite", func() {
			later := now.Add(72 * time.Hour)
			resent, err := invitations.Resend(db, org.ID, created.Invitation.ID, 48*time.Hour, later)
			Expect(err).NotTo(HaveOccurred())
			Expect(resent.RawToken).NotTo(Equal(created.RawToken))
			Expect(resent.Invitation.StatusAt(later)).To(Equal(invitations.StatusPending))

			_, err = invitations.FindByToken(db, created.RawToken)
			Expect(errors.Is(err, invitations.ErrNotFound)).To(BeTrue())
		})

		It("scopes lookups to the org", func() {
			other := testutil.CreateOrg(db, owner, "Other Place")
			err := invitations.Revoke(db, other.ID, created.Invitation.ID, now)
			Expect(errors.Is(err, invitations.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("StatusAt", func() {
		It("orders revoked over accepted over expired", func() {
			t := now
			inv := invitations.Invitation{ExpiresAt: now.Add(-time.Hour), AcceptedAt: &t, RevokedAt: &t}
			Expect(inv.StatusAt(now)).To(Equal(invitations.StatusRevoked))
			inv.RevokedAt = nil
			Expect(inv.StatusAt(now)).To(Equal(invitations.StatusAccepted))
			inv.AcceptedAt = nil
			Expect(inv.StatusAt(now)).To(Equal(invitations.StatusExpired))
		})
	})

	Describe("Cleanup", func() {
		It("removes stale invitations but keeps accepted ones", func() {
			invitee := testutil.CreateUser(db, "x@example.com")
			kept, err := invite("x@example.com", orgs.RoleWaiter, roomy)
			Expect(err).NotTo(HaveOccurred())
			_, err = invitations.Accept(db, invitations.AcceptInput{RawToken: kept.RawToken, User: *invitee}, now)
			Expect(err).NotTo(HaveOccurred())
			_, err = invite("y@example.com", orgs.RoleWaiter, roomy)
			Expect(err).NotTo(HaveOccurred())

			n, err := invitations.Cleanup(db, now.Add(30*24*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))

			all, err := invitations.List(db, org.ID, "all", now)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})
	})
})
