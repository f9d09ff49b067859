package orders_test

import (
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Status machine", func() {
	DescribeTable("CheckTransition",
		func(from, to orders.Status, role orgs.Role, paid bool, want error) {
			o := &orders.Order{Status: from, TotalCents: 1000}
			if paid {
				o.PaidCents = 1000
			}
			err := orders.CheckTransition(o, to, role)
			if want == nil {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(want))
			}
		},
		Entry("waiter confirms a QR order", orders.StatusPending, orders.StatusConfirmed, orgs.RoleWaiter, false, nil),
		Entry("kitchen starts a ticket", orders.StatusConfirmed, orders.StatusPreparing, orgs.RoleKitchen, false, nil),
		Entry("kitchen marks it ready", orders.StatusPreparing, orders.StatusReady, orgs.RoleKitchen, false, nil),
		Entry("kitchen cannot confirm", orders.StatusPending, orders.StatusConfirmed, orgs.RoleKitchen, false, orders.ErrRoleTransition),
		Entry("kitchen cannot serve", orders.StatusReady, orders.StatusServed, orgs.RoleKitchen, false, orders.ErrRoleTransition),
		Entry("kitchen cannot cancel", orders.StatusPreparing, orders.StatusCancelled, orgs.RoleKitchen, false, orders.ErrRoleTransition),
		Entry("no skipping ahead", orders.StatusPending, orders.StatusReady, orgs.RoleOwner, false, orders.ErrInvalidTransition),
		Entry("ready orders cannot be cancelled", orders.StatusReady, orders.StatusCancelled, orgs.RoleManager, false, orders.ErrInvalidTransition),
		Entry("terminal states stay put", orders.StatusCompleted, orders.StatusServed, orgs.RoleOwner, true, orders.ErrInvalidTransition),
		Entry("completing needs full payment", orders.StatusServed, orders.StatusCompleted, orgs.RoleWaiter, false, orders.ErrNotPaid),
		Entry("paid orders complete", orders.StatusServed, orders.StatusCompleted, orgs.RoleWaiter, true, nil),
	)

	It("recalculates totals and payment status", func() {
		o := &orders.Order{Items: []orders.OrderItem{
			{UnitPriceCents: 450, Quantity: 2},
			{UnitPriceCents: 300, Quantity: 1},
		}}
		o.RecalcTotals()
		Expect(o.Items[0].LineTotalCents).To(Equal(int64(900)))
		Expect(o.SubtotalCents).To(Equal(int64(1200)))
		Expect(o.TotalCents).To(Equal(int64(1200)))
		Expect(o.PaymentStatus).To(Equal(orders.PaymentUnpaid))

		o.PaidCents = 500
		o.RecalcTotals()
		Expect(o.PaymentStatus).To(Equal(orders.PaymentPartial))
		Expect(o.Outstanding()).To(Equal(int64(700)))
	})

	DescribeTable("PaymentStatusFor",
		func(total, paid int64, want orders.PaymentStatus) {
			Expect(orders.PaymentStatusFor(total, paid)).To(Equal(want))
		},
		Entry("nothing paid", int64(1000), int64(0), orders.PaymentUnpaid),
		Entry("part paid", int64(1000), int64(400), orders.PaymentPartial),
		Entry("fully paid", int64(1000), int64(1000), orders.PaymentPaid),
		Entry("free order", int64(0), int64(0), orders.PaymentPaid),
	)
})
