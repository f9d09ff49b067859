package routes_test

import (
	"net/http"
	"strings"
	"time"

	routes "restaurant-app/internal/app/http"
	publicapi "restaurant-app/internal/api/public"
	"restaurant-app/internal/domain/invitations"
	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/tables"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/mail"
	"restaurant-app/internal/testutil"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("HTTP API", func() {
	var (
		db       *gorm.DB
		outbox   *mail.Recorder
		router   *gin.Engine
		owner    *users.User
		manager  *users.User
		waiter   *users.User
		cook     *users.User
		stranger *users.User
		org      *orgs.Organization
		table    *tables.Table
		cat      *menu.Category
		burger   *menu.Item
	)

	orgPath := func(suffix string) string {
		return "/orgs/" + testutil.ID(org.ID) + suffix
	}

	BeforeEach(func() {
		db, outbox = testutil.SetupDB()
		router = routes.NewRouter()

		owner = testutil.CreateUser(db, "owner@example.com")
		manager = testutil.CreateUser(db, "manager@example.com")
		waiter = testutil.CreateUser(db, "waiter@example.com")
		cook = testutil.CreateUser(db, "cook@example.com")
		stranger = testutil.CreateUser(db, "stranger@example.com")

		org = testutil.CreateOrg(db, owner, "Burger Joint")
		testutil.AddMember(db, org, manager, orgs.RoleManager)
		testutil.AddMember(db, org, waiter, orgs.RoleWaiter)
		testutil.AddMember(db, org, cook, orgs.RoleKitchen)

		table = testutil.CreateTable(db, org, "Patio 1")
		cat = testutil.CreateCategory(db, org, "Burgers")
		burger = testutil.CreateItem(db, cat, "Classic", 1150)

		// the public menu cache outlives a single database
		publicapi.InvalidateMenu(org.Slug)
	})

	Describe("authentication and tenancy", func() {
		It("requires a session", func() {
			w := testutil.Do(router, http.MethodGet, orgPath(""), "", nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("hides orgs from non-members", func() {
			w := testutil.Do(router, http.MethodGet, orgPath(""), testutil.Token(stranger), nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("shows the org to its members", func() {
			w := testutil.Do(router, http.MethodGet, orgPath(""), testutil.Token(cook), nil)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("keeps billing to the owner", func() {
			w := testutil.Do(router, http.MethodPost, orgPath("/billing/change-plan"), testutil.Token(manager),
				map[string]any{"plan_id": "1"})
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("stops waiters from editing the menu", func() {
			w := testutil.Do(router, http.MethodPost, orgPath("/menu/items"), testutil.Token(waiter), map[string]any{
				"category_id": testutil.ID(cat.ID),
				"name":        "Veggie",
				"price_cents": 1050,
			})
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("lets managers add menu items", func() {
			w := testutil.Do(router, http.MethodPost, orgPath("/menu/items"), testutil.Token(manager), map[string]any{
				"category_id": testutil.ID(cat.ID),
				"name":        "<b>Veggie</b>",
				"price_cents": 1050,
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(testutil.Decode(w)).To(HaveKeyWithValue("name", "Veggie"))
		})
	})

	Describe("plan gating", func() {
		It("blocks POS orders on the free tier", func() {
			testutil.SetTier(db, org, plans.TierFree)

			w := testutil.Do(router, http.MethodPost, orgPath("/orders"), testutil.Token(owner), map[string]any{
				"items": []map[string]any{{"menu_item_id": testutil.ID(burger.ID), "quantity": 1}},
			})
			Expect(w.Code).To(Equal(http.StatusPaymentRequired))
			Expect(testutil.Decode(w)).To(HaveKeyWithValue("feature", "pos"))
		})

		It("blocks reports on starter", func() {
			testutil.SetTier(db, org, plans.TierStarter)

			w := testutil.Do(router, http.MethodGet, orgPath("/reports/sales"), testutil.Token(owner), nil)
			Expect(w.Code).To(Equal(http.StatusPaymentRequired))
		})

		It("enforces the table limit", func() {
			testutil.SetTier(db, org, plans.TierFree)
			for i := 0; i < plans.LimitsFor(plans.TierFree).Tables-1; i++ {
				testutil.CreateTable(db, org, "Extra "+testutil.ID(int64(i)))
			}

			w := testutil.Do(router, http.MethodPost, orgPath("/tables"), testutil.Token(owner), map[string]any{"name": "One too many"})
			Expect(w.Code).To(Equal(http.StatusPaymentRequired))
		})
	})

	Describe("restaurant settings", func() {
		It("accepts the current slug in another case", func() {
			w := testutil.Do(router, http.MethodPatch, orgPath(""), testutil.Token(owner), map[string]any{
				"name": "Burger Joint Centro",
				"slug": "Burger-Joint",
			})
			Expect(w.Code).To(Equal(http.StatusOK))
			body := testutil.Decode(w)
			Expect(body).To(HaveKeyWithValue("slug", "burger-joint"))
			Expect(body).To(HaveKeyWithValue("name", "Burger Joint Centro"))
		})

		It("rejects a slug used by another restaurant", func() {
			testutil.CreateOrg(db, stranger, "Taco Stand")

			w := testutil.Do(router, http.MethodPatch, orgPath(""), testutil.Token(owner), map[string]any{
				"slug": "taco-stand",
			})
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("guest ordering", func() {
		It("serves the public menu", func() {
			w := testutil.Do(router, http.MethodGet, "/public/orgs/"+org.Slug+"/menu", "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			body := testutil.Decode(w)
			Expect(body["org"]).To(HaveKeyWithValue("slug", org.Slug))
			Expect(body["categories"]).To(HaveLen(1))
		})

		It("places an order from a table and tracks it by code", func() {
			w := testutil.Do(router, http.MethodPost, "/public/orgs/"+org.Slug+"/orders", "", map[string]any{
				"table_token": table.QRToken,
				"items":       []map[string]any{{"menu_item_id": testutil.ID(burger.ID), "quantity": 2}},
			})
			Expect(w.Code).To(Equal(http.StatusCreated))

			body := testutil.Decode(w)
			Expect(body).To(HaveKeyWithValue("status", "pending"))
			Expect(body).To(HaveKeyWithValue("table", "Patio 1"))
			Expect(body).To(HaveKeyWithValue("total_cents", BeNumerically("==", 2300)))
			code, _ := body["code"].(string)
			Expect(code).NotTo(BeEmpty())

			w = testutil.Do(router, http.MethodGet, "/public/orders/"+code, "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(testutil.Decode(w)).To(HaveKeyWithValue("number", BeNumerically("==", 1)))
		})

		It("rejects unknown menu items", func() {
			w := testutil.Do(router, http.MethodPost, "/public/orgs/"+org.Slug+"/orders", "", map[string]any{
				"items": []map[string]any{{"menu_item_id": "999", "quantity": 1}},
			})
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("rejects tables from another restaurant", func() {
			other := testutil.CreateOrg(db, stranger, "Elsewhere")
			foreign := testutil.CreateTable(db, other, "X")

			w := testutil.Do(router, http.MethodPost, "/public/orgs/"+org.Slug+"/orders", "", map[string]any{
				"table_token": foreign.QRToken,
				"items":       []map[string]any{{"menu_item_id": testutil.ID(burger.ID), "quantity": 1}},
			})
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("adds a WhatsApp link when the restaurant has a number", func() {
			Expect(db.Model(org).Update("whatsapp_number", "34600111222").Error).To(Succeed())

			w := testutil.Do(router, http.MethodPost, "/public/orgs/"+org.Slug+"/orders", "", map[string]any{
				"items": []map[string]any{{"menu_item_id": testutil.ID(burger.ID), "quantity": 1}},
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
			link, _ := testutil.Decode(w)["whatsapp_url"].(string)
			Expect(link).To(HavePrefix("https://wa.me/34600111222?text="))
		})

		It("does not sell items of a hidden category", func() {
			drinks := testutil.CreateCategory(db, org, "Drinks")
			secret := testutil.CreateItem(db, drinks, "Secret", 900)
			Expect(db.Model(drinks).Update("active", false).Error).To(Succeed())

			w := testutil.Do(router, http.MethodGet, "/public/orgs/"+org.Slug+"/menu", "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(testutil.Decode(w)["categories"]).To(HaveLen(1))

			w = testutil.Do(router, http.MethodPost, "/public/orgs/"+org.Slug+"/orders", "", map[string]any{
				"items": []map[string]any{{"menu_item_id": testutil.ID(secret.ID), "quantity": 1}},
			})
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("returns 404 for unknown restaurants and codes", func() {
			Expect(testutil.Do(router, http.MethodGet, "/public/orgs/nowhere/menu", "", nil).Code).To(Equal(http.StatusNotFound))
			Expect(testutil.Do(router, http.MethodGet, "/public/orders/zzzzzzzz", "", nil).Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("invitations", func() {
		It("invites and accepts a new waiter", func() {
			newbie := testutil.CreateUser(db, "newbie@example.com")

			w := testutil.Do(router, http.MethodPost, orgPath("/invitations"), testutil.Token(manager), map[string]any{
				"email": "newbie@example.com",
				"role":  "waiter",
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
			token, _ := testutil.Decode(w)["token"].(string)
			Expect(token).NotTo(BeEmpty())
			Expect(outbox.Sent).To(HaveLen(1))
			Expect(outbox.Sent[0].EmailTo).To(Equal("newbie@example.com"))

			w = testutil.Do(router, http.MethodGet, "/invitations/"+token, "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(testutil.Decode(w)).To(HaveKeyWithValue("org_name", "Burger Joint"))

			w = testutil.Do(router, http.MethodPost, "/invitations/"+token+"/accept", testutil.Token(newbie), nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			m, err := orgs.FindMembership(db, org.ID, newbie.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Role).To(Equal(orgs.RoleWaiter))

			w = testutil.Do(router, http.MethodPost, "/invitations/"+token+"/accept", testutil.Token(newbie), nil)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("does not let managers invite managers", func() {
			w := testutil.Do(router, http.MethodPost, orgPath("/invitations"), testutil.Token(manager), map[string]any{
				"email": "boss@example.com",
				"role":  "manager",
			})
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("answers 410 for expired invitations", func() {
			late := testutil.CreateUser(db, "late@example.com")
			created, err := invitations.Create(db, invitations.CreateInput{
				OrgID:     org.ID,
				Email:     late.Email,
				Role:      orgs.RoleKitchen,
				InvitedBy: owner.ID,
				ActorRole: orgs.RoleOwner,
				Limits:    plans.LimitsFor(plans.TierPro),
				TTL:       time.Hour,
			}, time.Now().Add(-48*time.Hour))
			Expect(err).NotTo(HaveOccurred())

			w := testutil.Do(router, http.MethodPost, "/invitations/"+created.RawToken+"/accept", testutil.Token(late), nil)
			Expect(w.Code).To(Equal(http.StatusGone))
		})

		It("rejects a different account", func() {
			w := testutil.Do(router, http.MethodPost, orgPath("/invitations"), testutil.Token(owner), map[string]any{
				"email": "someone@example.com",
				"role":  "kitchen",
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
			token, _ := testutil.Decode(w)["token"].(string)

			w = testutil.Do(router, http.MethodPost, "/invitations/"+token+"/accept", testutil.Token(stranger), nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("order lifecycle", func() {
		var orderPath string

		BeforeEach(func() {
			w := testutil.Do(router, http.MethodPost, orgPath("/orders"), testutil.Token(waiter), map[string]any{
				"table_id": testutil.ID(table.ID),
				"items":    []map[string]any{{"menu_item_id": testutil.ID(burger.ID), "quantity": 2}},
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
			body := testutil.Decode(w)
			Expect(body).To(HaveKeyWithValue("status", "confirmed"))
			orderPath = orgPath("/orders/" + body["id"].(string))
		})

		setStatus := func(u *users.User, status orders.Status) int {
			return testutil.Do(router, http.MethodPatch, orderPath+"/status", testutil.Token(u),
				map[string]any{"status": status}).Code
		}

		It("lets the kitchen move tickets along but not serve them", func() {
			Expect(setStatus(cook, orders.StatusPreparing)).To(Equal(http.StatusOK))
			Expect(setStatus(cook, orders.StatusReady)).To(Equal(http.StatusOK))
			Expect(setStatus(cook, orders.StatusServed)).To(Equal(http.StatusForbidden))
			Expect(setStatus(waiter, orders.StatusServed)).To(Equal(http.StatusOK))
		})

		It("keeps the kitchen from cancelling", func() {
			w := testutil.Do(router, http.MethodPost, orderPath+"/cancel", testutil.Token(cook), nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("rejects skipping steps", func() {
			Expect(setStatus(waiter, orders.StatusServed)).To(Equal(http.StatusConflict))
		})

		It("completes only once paid", func() {
			for _, s := range []orders.Status{orders.StatusPreparing, orders.StatusReady, orders.StatusServed} {
				Expect(setStatus(waiter, s)).To(Equal(http.StatusOK))
			}
			Expect(setStatus(waiter, orders.StatusCompleted)).To(Equal(http.StatusConflict))

			w := testutil.Do(router, http.MethodPost, orderPath+"/payments", testutil.Token(waiter), map[string]any{
				"amount_cents": 2300,
				"method":       "card",
			})
			Expect(w.Code).To(Equal(http.StatusCreated))

			Expect(setStatus(waiter, orders.StatusCompleted)).To(Equal(http.StatusOK))
		})

		It("refuses overpayment", func() {
			w := testutil.Do(router, http.MethodPost, orderPath+"/payments", testutil.Token(waiter), map[string]any{
				"amount_cents": 9999,
				"method":       "cash",
			})
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("shows active tickets on the kitchen display", func() {
			w := testutil.Do(router, http.MethodGet, orgPath("/kitchen/orders"), testutil.Token(cook), nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(strings.Count(w.Body.String(), `"status":"confirmed"`)).To(Equal(1))
		})
	})
})
