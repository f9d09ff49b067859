package orgs_test

import (
	"errors"
	"time"

	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Org service", func() {
	var (
		db      *gorm.DB
		owner   *users.User
		manager *users.User
		waiter  *users.User
		org     *orgs.Organization
	)

	BeforeEach(func() {
		db, _ = testutil.SetupDB()
		owner = testutil.CreateUser(db, "owner@example.com")
		manager = testutil.CreateUser(db, "manager@example.com")
		waiter = testutil.CreateUser(db, "waiter@example.com")
		org = testutil.CreateOrg(db, owner, "Trattoria")
		testutil.AddMember(db, org, manager, orgs.RoleManager)
		testutil.AddMember(db, org, waiter, orgs.RoleWaiter)
	})

	roleOf := func(u *users.User) orgs.Role {
		m, err := orgs.FindMembership(db, org.ID, u.ID)
		Expect(err).NotTo(HaveOccurred())
		return m.Role
	}

	Describe("Create", func() {
		It("makes the creator the single owner and starts a trial", func() {
			Expect(roleOf(owner)).To(Equal(orgs.RoleOwner))
			Expect(org.TrialEndAt).NotTo(BeNil())
			Expect(org.TrialEndAt.After(time.Now())).To(BeTrue())
			Expect(org.Currency).To(Equal("EUR"))
			Expect(org.Timezone).To(Equal("UTC"))

			var owners int64
			Expect(db.Model(&orgs.Membership{}).Where("org_id = ? AND role = ?", org.ID, orgs.RoleOwner).Count(&owners).Error).To(Succeed())
			Expect(owners).To(Equal(int64(1)))
		})

		It("normalizes contact fields", func() {
			o, err := orgs.Create(db, owner.ID, orgs.CreateInput{
				Name:           "Sushi Bar",
				Currency:       "usd",
				Timezone:       "Not/AZone",
				WhatsAppNumber: "+34 600-123-456",
			}, time.Now(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(o.Currency).To(Equal("USD"))
			Expect(o.Timezone).To(Equal("UTC"))
			Expect(o.WhatsAppNumber).To(Equal("34600123456"))
			Expect(o.TrialEndAt).To(BeNil())
		})
	})

	Describe("ChangeRole", func() {
		It("refuses to create a second owner", func() {
			_, err := orgs.ChangeRole(db, org.ID, orgs.RoleOwner, waiter.ID, orgs.RoleOwner)
			Expect(errors.Is(err, orgs.ErrOwnerImmutable)).To(BeTrue())
		})

		It("refuses to demote the owner", func() {
			_, err := orgs.ChangeRole(db, org.ID, orgs.RoleOwner, owner.ID, orgs.RoleWaiter)
			Expect(errors.Is(err, orgs.ErrOwnerImmutable)).To(BeTrue())
		})

		It("lets a manager move a waiter to the kitchen", func() {
			m, err := orgs.ChangeRole(db, org.ID, orgs.RoleManager, waiter.ID, orgs.RoleKitchen)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Role).To(Equal(orgs.RoleKitchen))
			Expect(roleOf(waiter)).To(Equal(orgs.RoleKitchen))
		})

		It("does not let a manager promote to manager", func() {
			_, err := orgs.ChangeRole(db, org.ID, orgs.RoleManager, waiter.ID, orgs.RoleManager)
			Expect(errors.Is(err, orgs.ErrForbiddenRole)).To(BeTrue())
		})
	})

	Describe("RemoveMember", func() {
		It("lets a waiter leave", func() {
			Expect(orgs.RemoveMember(db, org.ID, waiter.ID, orgs.RoleWaiter, waiter.ID)).To(Succeed())
			_, err := orgs.FindMembership(db, org.ID, waiter.ID)
			Expect(errors.Is(err, orgs.ErrNotMember)).To(BeTrue())
		})

		It("never removes the owner", func() {
			err := orgs.RemoveMember(db, org.ID, owner.ID, orgs.RoleOwner, owner.ID)
			Expect(errors.Is(err, orgs.ErrOwnerCannotLeave)).To(BeTrue())

			err = orgs.RemoveMember(db, org.ID, manager.ID, orgs.RoleManager, owner.ID)
			Expect(errors.Is(err, orgs.ErrOwnerImmutable)).To(BeTrue())
		})

		It("does not let a waiter remove colleagues", func() {
			err := orgs.RemoveMember(db, org.ID, waiter.ID, orgs.RoleWaiter, manager.ID)
			Expect(errors.Is(err, orgs.ErrForbiddenRole)).To(BeTrue())
		})
	})

	Describe("TransferOwnership", func() {
		It("swaps owner and manager in one step", func() {
			Expect(orgs.TransferOwnership(db, org.ID, owner.ID, waiter.ID)).To(Succeed())
			Expect(roleOf(waiter)).To(Equal(orgs.RoleOwner))
			Expect(roleOf(owner)).To(Equal(orgs.RoleManager))

			id, err := orgs.OwnerUserID(db, org.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(waiter.ID))
		})

		It("requires the target to be a member", func() {
			stranger := testutil.CreateUser(db, "stranger@example.com")
			err := orgs.TransferOwnership(db, org.ID, owner.ID, stranger.ID)
			Expect(errors.Is(err, orgs.ErrNotMember)).To(BeTrue())
			Expect(roleOf(owner)).To(Equal(orgs.RoleOwner))
		})

		It("rejects transfers from a non-owner", func() {
			err := orgs.TransferOwnership(db, org.ID, manager.ID, waiter.ID)
			Expect(errors.Is(err, orgs.ErrForbiddenRole)).To(BeTrue())
		})

		It("rejects transferring to yourself", func() {
			err := orgs.TransferOwnership(db, org.ID, owner.ID, owner.ID)
			Expect(errors.Is(err, orgs.ErrSelfTransfer)).To(BeTrue())
		})
	})
})
