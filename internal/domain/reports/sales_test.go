package reports_test

import (
	"errors"
	"time"

	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/payments"
	"restaurant-app/internal/domain/reports"
	"restaurant-app/internal/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Reports", func() {
	Describe("ParseRange", func() {
		now := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

		It("defaults to the last 30 days including today", func() {
			from, to, err := reports.ParseRange("", "", now, time.UTC)
			Expect(err).NotTo(HaveOccurred())
			Expect(to).To(Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)))
			Expect(from).To(Equal(to.AddDate(0, 0, -30)))
		})

		It("treats to as inclusive", func() {
			from, to, err := reports.ParseRange("2026-03-01", "2026-03-01", now, time.UTC)
			Expect(err).NotTo(HaveOccurred())
			Expect(to.Sub(from)).To(Equal(24 * time.Hour))
		})

		It("reads dates in the org time zone", func() {
			loc, err := time.LoadLocation("Europe/Madrid")
			Expect(err).NotTo(HaveOccurred())
			from, _, err := reports.ParseRange("2026-03-01", "2026-03-02", now, loc)
			Expect(err).NotTo(HaveOccurred())
			Expect(from.UTC()).To(Equal(time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC)))
		})

		It("rejects reversed and malformed ranges", func() {
			_, _, err := reports.ParseRange("2026-03-10", "2026-03-01", now, time.UTC)
			Expect(errors.Is(err, reports.ErrInvalidRange)).To(BeTrue())

			_, _, err = reports.ParseRange("March", "", now, time.UTC)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SalesReport", func() {
		var (
			db  *gorm.DB
			org *orgs.Organization
		)

		BeforeEach(func() {
			db, _ = testutil.SetupDB()
			owner := testutil.CreateUser(db, "owner@example.com")
			org = testutil.CreateOrg(db, owner, "Taqueria")
			cat := testutil.CreateCategory(db, org, "Tacos")
			pastor := testutil.CreateItem(db, cat, "Al pastor", 300)
			horchata := testutil.CreateItem(db, cat, "Horchata", 200)

			place := func(source orders.Source, lines ...orders.Line) *orders.Order {
				o, err := orders.Create(db, orders.CreateInput{OrgID: org.ID, Source: source, Lines: lines})
				Expect(err).NotTo(HaveOccurred())
				return o
			}

			a := place(orders.SourcePOS, orders.Line{MenuItemID: pastor.ID, Quantity: 3}, orders.Line{MenuItemID: horchata.ID, Quantity: 1})
			place(orders.SourceQR, orders.Line{MenuItemID: pastor.ID, Quantity: 1})
			c := place(orders.SourceQR, orders.Line{MenuItemID: horchata.ID, Quantity: 5})

			_, err := orders.Transition(db, org.ID, c.ID, orders.StatusCancelled, orgs.RoleOwner, time.Now())
			Expect(err).NotTo(HaveOccurred())

			_, _, err = payments.Record(db, payments.RecordInput{OrgID: org.ID, OrderID: a.ID, AmountCents: 1100, Method: payments.MethodCard})
			Expect(err).NotTo(HaveOccurred())
		})

		It("aggregates gross sales without cancelled orders", func() {
			from, to, err := reports.ParseRange("", "", time.Now(), time.UTC)
			Expect(err).NotTo(HaveOccurred())

			s, err := reports.SalesReport(db, org.ID, from, to, time.UTC)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Orders).To(Equal(int64(3)))
			Expect(s.Cancelled).To(Equal(int64(1)))
			Expect(s.GrossCents).To(Equal(int64(1400)))
			Expect(s.AverageTicket).To(Equal(int64(700)))
			Expect(s.CollectedCents).To(Equal(int64(1100)))
			Expect(s.ByPaymentMethod).To(HaveKeyWithValue("card", int64(1100)))
			Expect(s.BySource).To(HaveKeyWithValue("pos", int64(1100)))
			Expect(s.BySource).To(HaveKeyWithValue("qr", int64(300)))
			Expect(s.ByDay).To(HaveLen(1))
			Expect(s.ByDay[0].Orders).To(Equal(int64(2)))
		})

		It("ranks top items by quantity", func() {
			from, to, err := reports.ParseRange("", "", time.Now(), time.UTC)
			Expect(err).NotTo(HaveOccurred())

			s, err := reports.SalesReport(db, org.ID, from, to, time.UTC)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.TopItems).To(HaveLen(2))
			Expect(s.TopItems[0].Name).To(Equal("Al pastor"))
			Expect(s.TopItems[0].Quantity).To(Equal(int64(4)))
			Expect(s.TopItems[0].GrossCents).To(Equal(int64(1200)))
			Expect(s.TopItems[1].Name).To(Equal("Horchata"))
			Expect(s.TopItems[1].Quantity).To(Equal(int64(1)))
		})

		It("is empty outside the window", func() {
			from, to, err := reports.ParseRange("2020-01-01", "2020-01-31", time.Now(), time.UTC)
			Expect(err).NotTo(HaveOccurred())

			s, err := reports.SalesReport(db, org.ID, from, to, time.UTC)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Orders).To(BeZero())
			Expect(s.ByDay).To(BeEmpty())
			Expect(s.TopItems).To(BeEmpty())
		})
	})
})
