package payments_test

import (
	"errors"
	"time"

	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/payments"
	"restaurant-app/internal/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Payments", func() {
	var (
		db    *gorm.DB
		org   *orgs.Organization
		order *orders.Order
	)

	BeforeEach(func() {
		db, _ = testutil.SetupDB()
		owner := testutil.CreateUser(db, "owner@example.com")
		org = testutil.CreateOrg(db, owner, "Cafe")
		cat := testutil.CreateCategory(db, org, "Coffee")
		latte := testutil.CreateItem(db, cat, "Latte", 400)

		var err error
		order, err = orders.Create(db, orders.CreateInput{
			OrgID:  org.ID,
			Source: orders.SourcePOS,
			Lines:  []orders.Line{{MenuItemID: latte.ID, Quantity: 3}},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	pay := func(amount int64, method payments.Method) (*payments.Payment, *orders.Order, error) {
		return payments.Record(db, payments.RecordInput{
			OrgID:       org.ID,
			OrderID:     order.ID,
			AmountCents: amount,
			Method:      method,
		})
	}

	It("moves from partial to paid", func() {
		_, o, err := pay(500, payments.MethodCash)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.PaidCents).To(Equal(int64(500)))
		Expect(o.PaymentStatus).To(Equal(orders.PaymentPartial))

		_, o, err = pay(700, payments.MethodCard)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.PaymentStatus).To(Equal(orders.PaymentPaid))

		list, err := payments.ListForOrder(db, org.ID, order.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))

		stored, err := orders.Get(db, org.ID, order.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.PaidCents).To(Equal(int64(1200)))
	})

	It("refuses to take more than is owed", func() {
		_, _, err := pay(1201, payments.MethodCash)
		Expect(errors.Is(err, payments.ErrOverpayment)).To(BeTrue())
	})

	It("validates the amount and method", func() {
		_, _, err := pay(0, payments.MethodCash)
		Expect(errors.Is(err, payments.ErrInvalidAmount)).To(BeTrue())

		_, _, err = pay(100, payments.Method("bitcoin"))
		Expect(errors.Is(err, payments.ErrInvalidMethod)).To(BeTrue())
	})

	It("refuses cancelled orders", func() {
		_, err := orders.Transition(db, org.ID, order.ID, orders.StatusCancelled, orgs.RoleOwner, time.Now())
		Expect(err).NotTo(HaveOccurred())

		_, _, err = pay(100, payments.MethodCash)
		Expect(errors.Is(err, payments.ErrOrderCancelled)).To(BeTrue())
	})

	It("does not pay another org's order", func() {
		_, _, err := payments.Record(db, payments.RecordInput{
			OrgID:       org.ID + 1,
			OrderID:     order.ID,
			AmountCents: 100,
			Method:      payments.MethodCash,
		})
		Expect(errors.Is(err, orders.ErrNotFound)).To(BeTrue())
	})

	It("lists org payments in a window", func() {
		_, _, err := pay(300, payments.MethodTransfer)
		Expect(err).NotTo(HaveOccurred())

		from := time.Now().Add(-time.Hour)
		to := time.Now().Add(time.Hour)
		list, err := payments.ListForOrg(db, org.ID, &from, &to)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))

		past := time.Now().Add(-2 * time.Hour)
		list, err = payments.ListForOrg(db, org.ID, nil, &past)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(BeEmpty())
	})
})
