// Package testutil wires an in-memory database and fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"restaurant-app/config"
	"restaurant-app/database"
	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/tables"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/mail"
	"restaurant-app/internal/infra/session"

	"github.com/gin-gonic/gin"
	"github.com/onsi/gomega"
	"github.com/rs/xid"
	"gorm.io/gorm"
)

const JWTSecret = "test-secret"

// SetupDB opens a fresh sqlite memory database, migrates it and makes it the
// process-wide database.DB. It also installs a mail recorder.
func SetupDB() (*gorm.DB, *mail.Recorder) {
	gin.SetMode(gin.TestMode)
	config.JWT_SECRET = JWTSecret

	db, err := database.Open("sqlite", "file:"+xid.New().String()+"?mode=memory&cache=shared")
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	// one connection keeps the memory db alive and serializes transactions
	sqlDB, err := db.DB()
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	gomega.ExpectWithOffset(1, database.Migrate(db)).To(gomega.Succeed())
	database.DB = db

	rec := &mail.Recorder{}
	mail.SetDefault(rec)
	return db, rec
}

func CreateUser(db *gorm.DB, email string) *users.User {
	u := &users.User{
		Name:         "Test",
		Lastname:     "User",
		Email:        users.NormalizeEmail(email),
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleUser,
		IsVerified:   true,
	}
	gomega.ExpectWithOffset(1, db.Create(u).Error).To(gomega.Succeed())
	return u
}

// CreateOrg creates an org owned by owner on a running trial, so every
// feature is available.
func CreateOrg(db *gorm.DB, owner *users.User, name string) *orgs.Organization {
	org, err := orgs.Create(db, owner.ID, orgs.CreateInput{Name: name}, time.Now(), 14)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
	return org
}

// SetTier ends the trial and attaches an active subscription on a plan of tier.
// TierFree removes the subscription instead.
func SetTier(db *gorm.DB, org *orgs.Organization, tier string) {
	past := time.Now().Add(-time.Hour)
	updates := map[string]any{"trial_end_at": past}

	if tier == plans.TierFree {
		updates["subscription_id"] = nil
		updates["stripe_subscription_status"] = nil
		updates["plan_id"] = nil
	} else {
		p := plans.Plan{
			Name:          tier,
			PriceCents:    2900,
			StripePriceID: "price_" + xid.New().String(),
			Interval:      "month",
			Tier:          tier,
			Active:        true,
		}
		gomega.ExpectWithOffset(1, db.Create(&p).Error).To(gomega.Succeed())
		updates["plan_id"] = p.ID
		updates["subscription_id"] = "sub_" + xid.New().String()
		updates["stripe_subscription_status"] = "active"
	}

	gomega.ExpectWithOffset(1, db.Model(&orgs.Organization{}).Where("id = ?", org.ID).Updates(updates).Error).To(gomega.Succeed())
}

func AddMember(db *gorm.DB, org *orgs.Organization, u *users.User, role orgs.Role) {
	m := orgs.Membership{OrgID: org.ID, UserID: u.ID, Role: role}
	gomega.ExpectWithOffset(1, db.Create(&m).Error).To(gomega.Succeed())
}

func CreateTable(db *gorm.DB, org *orgs.Organization, name string) *tables.Table {
	token, err := tables.NewQRToken()
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
	t := &tables.Table{OrgID: org.ID, Name: name, Seats: 4, Active: true, QRToken: token}
	gomega.ExpectWithOffset(1, db.Create(t).Error).To(gomega.Succeed())
	return t
}

func CreateCategory(db *gorm.DB, org *orgs.Organization, name string) *menu.Category {
	c := &menu.Category{OrgID: org.ID, Name: name, Active: true}
	gomega.ExpectWithOffset(1, db.Create(c).Error).To(gomega.Succeed())
	return c
}

func CreateItem(db *gorm.DB, cat *menu.Category, name string, priceCents int64) *menu.Item {
	it := &menu.Item{OrgID: cat.OrgID, CategoryID: cat.ID, Name: name, PriceCents: priceCents, Available: true}
	gomega.ExpectWithOffset(1, db.Create(it).Error).To(gomega.Succeed())
	return it
}

// Token issues a session token for u, usable as a Bearer header.
func Token(u *users.User) string {
	tok, err := session.Issue([]byte(JWTSecret), u.ID, u.Email, u.Role, time.Now())
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())
	return tok
}

// Do sends a JSON request to r. token may be empty.
func Do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		gomega.ExpectWithOffset(1, json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the recorded JSON body into a map.
func Decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	gomega.ExpectWithOffset(1, json.Unmarshal(w.Body.Bytes(), &out)).To(gomega.Succeed())
	return out
}

func ID(id int64) string {
	return strconv.FormatInt(id, 10)
}
