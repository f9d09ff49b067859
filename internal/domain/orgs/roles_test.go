package orgs_test

import (
	"restaurant-app/internal/domain/orgs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Roles", func() {
	DescribeTable("Can",
		func(role orgs.Role, perm orgs.Permission, want bool) {
			Expect(orgs.Can(role, perm)).To(Equal(want))
		},
		Entry("owner manages billing", orgs.RoleOwner, orgs.PermBillingManage, true),
		Entry("manager does not manage billing", orgs.RoleManager, orgs.PermBillingManage, false),
		Entry("manager cannot delete the org", orgs.RoleManager, orgs.PermOrgDelete, false),
		Entry("manager manages the menu", orgs.RoleManager, orgs.PermMenuManage, true),
		Entry("waiter takes payments", orgs.RoleWaiter, orgs.PermPaymentsManage, true),
		Entry("waiter cannot edit the menu", orgs.RoleWaiter, orgs.PermMenuManage, false),
		Entry("kitchen sees the kitchen display", orgs.RoleKitchen, orgs.PermKitchenView, true),
		Entry("kitchen cannot take payments", orgs.RoleKitchen, orgs.PermPaymentsManage, false),
		Entry("unknown roles get nothing", orgs.Role("chef"), orgs.PermOrgView, false),
	)

	It("never lets anyone assign owner", func() {
		for _, actor := range []orgs.Role{orgs.RoleOwner, orgs.RoleManager, orgs.RoleWaiter} {
			Expect(orgs.CanAssign(actor, orgs.RoleOwner)).To(BeFalse())
		}
	})

	It("lets managers assign only floor and kitchen roles", func() {
		Expect(orgs.CanAssign(orgs.RoleManager, orgs.RoleWaiter)).To(BeTrue())
		Expect(orgs.CanAssign(orgs.RoleManager, orgs.RoleKitchen)).To(BeTrue())
		Expect(orgs.CanAssign(orgs.RoleManager, orgs.RoleManager)).To(BeFalse())
		Expect(orgs.CanAssign(orgs.RoleOwner, orgs.RoleManager)).To(BeTrue())
		Expect(orgs.CanAssign(orgs.RoleWaiter, orgs.RoleKitchen)).To(BeFalse())
	})

	It("keeps managers away from other managers", func() {
		Expect(orgs.CanManageMember(orgs.RoleManager, orgs.RoleManager)).To(BeFalse())
		Expect(orgs.CanManageMember(orgs.RoleManager, orgs.RoleWaiter)).To(BeTrue())
		Expect(orgs.CanManageMember(orgs.RoleOwner, orgs.RoleOwner)).To(BeFalse())
	})
})
