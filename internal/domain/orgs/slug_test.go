package orgs_test

import (
	"errors"
	"strings"

	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Slugs", func() {
	DescribeTable("MakeSlug",
		func(name, want string) {
			Expect(orgs.MakeSlug(name)).To(Equal(want))
		},
		Entry("spaces become dashes", "Casa Pepe", "casa-pepe"),
		Entry("symbols are dropped", "Joe's  Diner!!", "joes-diner"),
		Entry("short names get a prefix", "Yo", "restaurant-yo"),
		Entry("empty names still produce a slug", "   ", "restaurant"),
	)

	It("caps the length", func() {
		slug := orgs.MakeSlug(strings.Repeat("pizza ", 30))
		Expect(len(slug)).To(BeNumerically("<=", 50))
		Expect(orgs.ValidSlug(slug)).To(BeTrue())
	})

	It("validates explicit slugs", func() {
		Expect(orgs.ValidSlug("casa-pepe")).To(BeTrue())
		Expect(orgs.ValidSlug("ab")).To(BeFalse())
		Expect(orgs.ValidSlug("Casa")).To(BeFalse())
		Expect(orgs.ValidSlug("casa_pepe")).To(BeFalse())
	})

	Describe("ResolveSlug", func() {
		var db *gorm.DB

		BeforeEach(func() {
			db, _ = testutil.SetupDB()
			owner := testutil.CreateUser(db, "owner@example.com")
			testutil.CreateOrg(db, owner, "Casa Pepe")
		})

		It("adds a numeric suffix when the base is taken", func() {
			slug, err := orgs.ResolveSlug(db, "Casa Pepe", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(slug).To(Equal("casa-pepe-1"))
		})

		It("rejects a taken explicit slug", func() {
			_, err := orgs.ResolveSlug(db, "Other", "casa-pepe")
			Expect(errors.Is(err, orgs.ErrSlugTaken)).To(BeTrue())
		})

		It("rejects a malformed explicit slug", func() {
			_, err := orgs.ResolveSlug(db, "Other", "No Spaces")
			Expect(errors.Is(err, orgs.ErrInvalidSlug)).To(BeTrue())
		})
	})
})
