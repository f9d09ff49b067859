package orders_test

import (
	"errors"
	"time"

	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/tables"
	"restaurant-app/internal/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Order service", func() {
	var (
		db     *gorm.DB
		org    *orgs.Organization
		table  *tables.Table
		pizza  *menu.Item
		cola   *menu.Item
		hidden *menu.Item
	)

	BeforeEach(func() {
		db, _ = testutil.SetupDB()
		owner := testutil.CreateUser(db, "owner@example.com")
		org = testutil.CreateOrg(db, owner, "Pizzeria")
		table = testutil.CreateTable(db, org, "T1")
		cat := testutil.CreateCategory(db, org, "Mains")
		pizza = testutil.CreateItem(db, cat, "Margherita", 900)
		cola = testutil.CreateItem(db, cat, "Cola", 250)
		hidden = testutil.CreateItem(db, cat, "Seasonal", 1200)
		Expect(db.Model(hidden).Update("available", false).Error).To(Succeed())
	})

	create := func(source orders.Source, lines ...orders.Line) (*orders.Order, error) {
		return orders.Create(db, orders.CreateInput{
			OrgID:   org.ID,
			TableID: &table.ID,
			Source:  source,
			Lines:   lines,
		})
	}

	Describe("Create", func() {
		It("prices lines from the menu and numbers orders per org", func() {
			first, err := create(orders.SourceQR, orders.Line{MenuItemID: pizza.ID, Quantity: 2}, orders.Line{MenuItemID: cola.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Number).To(Equal(int64(1)))
			Expect(first.Status).To(Equal(orders.StatusPending))
			Expect(first.TotalCents).To(Equal(int64(2050)))
			Expect(first.PaymentStatus).To(Equal(orders.PaymentUnpaid))
			Expect(first.Items).To(HaveLen(2))

			second, err := create(orders.SourcePOS, orders.Line{MenuItemID: cola.ID, Quantity: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Number).To(Equal(int64(2)))
			Expect(second.Status).To(Equal(orders.StatusConfirmed))
		})

		It("keeps numbering separate for each org", func() {
			_, err := create(orders.SourceQR, orders.Line{MenuItemID: pizza.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())

			owner := testutil.CreateUser(db, "other@example.com")
			other := testutil.CreateOrg(db, owner, "Other")
			cat := testutil.CreateCategory(db, other, "Drinks")
			water := testutil.CreateItem(db, cat, "Water", 100)
			o, err := orders.Create(db, orders.CreateInput{
				OrgID:  other.ID,
				Source: orders.SourcePOS,
				Lines:  []orders.Line{{MenuItemID: water.ID, Quantity: 1}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(o.Number).To(Equal(int64(1)))
		})

		It("rejects empty orders", func() {
			_, err := create(orders.SourceQR)
			Expect(errors.Is(err, orders.ErrEmptyOrder)).To(BeTrue())
		})

		It("rejects unavailable items", func() {
			_, err := create(orders.SourceQR, orders.Line{MenuItemID: hidden.ID, Quantity: 1})
			Expect(errors.Is(err, orders.ErrInvalidItem)).To(BeTrue())
		})

		It("rejects items of an inactive category", func() {
			drinks := testutil.CreateCategory(db, org, "Drinks")
			lemonade := testutil.CreateItem(db, drinks, "Lemonade", 300)
			Expect(db.Model(drinks).Update("active", false).Error).To(Succeed())

			_, err := create(orders.SourceQR, orders.Line{MenuItemID: lemonade.ID, Quantity: 1})
			Expect(errors.Is(err, orders.ErrInvalidItem)).To(BeTrue())
		})

		It("rejects unknown items", func() {
			_, err := create(orders.SourceQR, orders.Line{MenuItemID: 42, Quantity: 1})
			Expect(errors.Is(err, orders.ErrInvalidItem)).To(BeTrue())
		})

		It("bounds the quantity", func() {
			_, err := create(orders.SourceQR, orders.Line{MenuItemID: pizza.ID, Quantity: 0})
			Expect(errors.Is(err, orders.ErrQuantity)).To(BeTrue())
			_, err = create(orders.SourceQR, orders.Line{MenuItemID: pizza.ID, Quantity: orders.MaxQuantity + 1})
			Expect(errors.Is(err, orders.ErrQuantity)).To(BeTrue())
		})

		It("keeps the price paid even if the menu changes later", func() {
			o, err := create(orders.SourceQR, orders.Line{MenuItemID: pizza.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Model(pizza).Update("price_cents", 1500).Error).To(Succeed())

			got, err := orders.Get(db, org.ID, o.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Items[0].UnitPriceCents).To(Equal(int64(900)))
			Expect(got.TotalCents).To(Equal(int64(900)))
		})
	})

	Describe("Transition", func() {
		It("walks a ticket through the kitchen", func() {
			o, err := create(orders.SourcePOS, orders.Line{MenuItemID: pizza.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())

			o, err = orders.Transition(db, org.ID, o.ID, orders.StatusPreparing, orgs.RoleKitchen, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(o.Status).To(Equal(orders.StatusPreparing))

			o, err = orders.Transition(db, org.ID, o.ID, orders.StatusReady, orgs.RoleKitchen, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(o.Status).To(Equal(orders.StatusReady))

			_, err = orders.Transition(db, org.ID, o.ID, orders.StatusServed, orgs.RoleKitchen, time.Now())
			Expect(errors.Is(err, orders.ErrRoleTransition)).To(BeTrue())
		})

		It("stamps cancellations", func() {
			o, err := create(orders.SourceQR, orders.Line{MenuItemID: pizza.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())

			o, err = orders.Transition(db, org.ID, o.ID, orders.StatusCancelled, orgs.RoleWaiter, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(o.Status).To(Equal(orders.StatusCancelled))
			Expect(o.CancelledAt).NotTo(BeNil())
		})

		It("does not leak orders across orgs", func() {
			o, err := create(orders.SourceQR, orders.Line{MenuItemID: pizza.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())
			_, err = orders.Transition(db, org.ID+1, o.ID, orders.StatusConfirmed, orgs.RoleOwner, time.Now())
			Expect(errors.Is(err, orders.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("AddItems", func() {
		It("appends lines and recomputes totals", func() {
			o, err := create(orders.SourcePOS, orders.Line{MenuItemID: pizza.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())

			o, err = orders.AddItems(db, org.ID, o.ID, []orders.Line{{MenuItemID: cola.ID, Quantity: 2}})
			Expect(err).NotTo(HaveOccurred())
			Expect(o.Items).To(HaveLen(2))
			Expect(o.TotalCents).To(Equal(int64(1400)))
		})

		It("locks the order once it is ready", func() {
			o, err := create(orders.SourcePOS, orders.Line{MenuItemID: pizza.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(db.Model(o).Update("status", orders.StatusReady).Error).To(Succeed())

			_, err = orders.AddItems(db, org.ID, o.ID, []orders.Line{{MenuItemID: cola.ID, Quantity: 1}})
			Expect(errors.Is(err, orders.ErrLocked)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("filters by status and table", func() {
			_, err := create(orders.SourceQR, orders.Line{MenuItemID: pizza.ID, Quantity: 1})
			Expect(err).NotTo(HaveOccurred())
			_, err = orders.Create(db, orders.CreateInput{
				OrgID:  org.ID,
				Source: orders.SourcePOS,
				Lines:  []orders.Line{{MenuItemID: cola.ID, Quantity: 1}},
			})
			Expect(err).NotTo(HaveOccurred())

			pending, err := orders.List(db, org.ID, orders.Filter{Statuses: []orders.Status{orders.StatusPending}})
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))

			atTable, err := orders.List(db, org.ID, orders.Filter{TableID: &table.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(atTable).To(HaveLen(1))
			Expect(atTable[0].Table).NotTo(BeNil())

			kitchen, err := orders.List(db, org.ID, orders.Filter{Statuses: orders.KitchenStatuses, OldestFirst: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(kitchen).To(HaveLen(1))
			Expect(kitchen[0].Source).To(Equal(orders.SourcePOS))
		})
	})
})
