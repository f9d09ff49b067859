package realtime_test

import (
	"context"

	"restaurant-app/internal/infra/realtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MemoryBroker", func() {
	var (
		b   *realtime.MemoryBroker
		ctx context.Context
	)

	BeforeEach(func() {
		b = realtime.NewMemoryBroker()
		ctx = context.Background()
	})

	It("delivers events only to the same org", func() {
		mine, cancelMine := b.Subscribe(ctx, 1)
		defer cancelMine()
		theirs, cancelTheirs := b.Subscribe(ctx, 2)
		defer cancelTheirs()

		Expect(b.Publish(ctx, realtime.Event{Type: realtime.EventOrderCreated, OrgID: 1, OrderID: 10})).To(Succeed())

		var ev realtime.Event
		Eventually(mine).Should(Receive(&ev))
		Expect(ev.OrderID).To(Equal(int64(10)))
		Expect(ev.SentAt.IsZero()).To(BeFalse())
		Consistently(theirs).ShouldNot(Receive())
	})

	It("drops events for a full subscriber instead of blocking", func() {
		ch, cancel := b.Subscribe(ctx, 1)
		defer cancel()

		for i := 0; i < realtime.SubscriberBuffer+5; i++ {
			Expect(b.Publish(ctx, realtime.Event{Type: realtime.EventOrderUpdated, OrgID: 1})).To(Succeed())
		}
		Expect(ch).To(HaveLen(realtime.SubscriberBuffer))
	})

	It("releases subscriptions on cancel", func() {
		ch, cancel := b.Subscribe(ctx, 3)
		Expect(b.Subscribers(3)).To(Equal(1))

		cancel()
		cancel()
		Expect(b.Subscribers(3)).To(Equal(0))
		Eventually(ch).Should(BeClosed())
	})
})
