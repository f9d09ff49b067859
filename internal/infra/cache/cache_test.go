package cache

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Memory", func() {
	It("loads once and serves from cache", func() {
		m := NewMemory[string, int]("test", 100, time.Minute)
		calls := 0
		load := func(context.Context, string) (int, error) {
			calls++
			return 7, nil
		}

		for range 3 {
			v, err := m.GetOrLoad(context.Background(), "k", load)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(7))
		}
		Expect(calls).To(Equal(1))

		m.Invalidate("k")
		_, err := m.GetOrLoad(context.Background(), "k", load)
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(2))
	})

	It("does not cache failures", func() {
		m := NewMemory[string, int]("test", 100, time.Minute)
		boom := errors.New("boom")
		_, err := m.GetOrLoad(context.Background(), "k", func(context.Context, string) (int, error) {
			return 0, boom
		})
		Expect(err).To(MatchError(boom))

		_, ok := m.Get(context.Background(), "k")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("WindowCounter", func() {
	It("allows up to the limit per key", func() {
		wc := NewWindowCounter(100, time.Minute)
		Expect(wc.Allow("a", 2)).To(BeTrue())
		Expect(wc.Allow("a", 2)).To(BeTrue())
		Expect(wc.Allow("a", 2)).To(BeFalse())
		Expect(wc.Allow("b", 2)).To(BeTrue())
	})
})
