package admin

import (
	"net/http"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/billing"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/dbx"

	"github.com/gin-gonic/gin"
)

type AdminOrg struct {
	ID                 int64      `json:"id,string"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	PlanName           *string    `json:"plan_name,omitempty"`
	Tier               string     `json:"tier"`
	AccessState        string     `json:"access_state"`
	SubscriptionStatus *string    `json:"subscription_status,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	Members            int64      `json:"members"`
	CreatedAt          time.Time  `json:"created_at"`
}

type AdminUser struct {
	ID         int64     `json:"id,string"`
	Name       string    `json:"name"`
	Lastname   string    `json:"lastname"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

type AdminStats struct {
	TotalOrgs          int64            `json:"total_orgs"`
	TotalUsers         int64            `json:"total_users"`
	TotalOrders        int64            `json:"total_orders"`
	RevenueCents       int64            `json:"revenue_cents"`
	RecentRevenueCents int64            `json:"recent_revenue_cents"`
	OrgsPerTier        map[string]int64 `json:"orgs_per_tier"`
}

// GET /admin/orgs
func ListOrganizations(c *gin.Context) {
	var list []orgs.Organization
	if err := database.DB.Preload("Plan").Order("created_at DESC").Find(&list).Error; err != nil {
		apiutil.ServerError(c, "Failed to load organizations", err)
		return
	}

	type memberCount struct {
		OrgID int64
		N     int64
	}
	var counts []memberCount
	if err := database.DB.Model(&orgs.Membership{}).
		Select("org_id, COUNT(*) AS n").
		Group("org_id").
		Scan(&counts).Error; err != nil {
		apiutil.ServerError(c, "Failed to count members", err)
		return
	}
	members := make(map[int64]int64, len(counts))
	for _, mc := range counts {
		members[mc.OrgID] = mc.N
	}

	now := time.Now()
	out := make([]AdminOrg, 0, len(list))
	for _, o := range list {
		policy := access.ComputePolicy(now, o)
		var planName *string
		if o.Plan != nil {
			planName = &o.Plan.Name
		}
		out = append(out, AdminOrg{
			ID:                 o.ID,
			Name:               o.Name,
			Slug:               o.Slug,
			PlanName:           planName,
			Tier:               policy.Tier,
			AccessState:        string(policy.State),
			SubscriptionStatus: o.StripeSubscriptionStatus,
			CurrentPeriodEnd:   o.CurrentPeriodEnd,
			Members:            members[o.ID],
			CreatedAt:          o.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

// GET /admin/orgs/:id
func GetOrgDetails(c *gin.Context) {
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	var org orgs.Organization
	err := database.DB.Preload("Plan").Preload("PendingPlan").First(&org, id).Error
	if dbx.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}
	if err != nil {
		apiutil.ServerError(c, "Failed to load organization", err)
		return
	}

	var invoices []billing.Invoice
	if err := database.DB.Where("org_id = ?", id).Order("created_at DESC").Find(&invoices).Error; err != nil {
		apiutil.ServerError(c, "Failed to fetch invoices", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization": org,
		"access":       access.ComputePolicy(time.Now(), org),
		"invoices":     invoices,
	})
}

// GET /admin/users
func ListAllUsers(c *gin.Context) {
	var list []users.User
	if err := database.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		apiutil.ServerError(c, "Failed to load users", err)
		return
	}

	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		out = append(out, AdminUser{
			ID:         u.ID,
			Name:       u.Name,
			Lastname:   u.Lastname,
			Email:      u.Email,
			Role:       u.Role,
			IsVerified: u.IsVerified,
			CreatedAt:  u.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

// GET /admin/stats
func GetAdminStats(c *gin.Context) {
	var stats AdminStats
	db := database.DB

	if err := db.Model(&orgs.Organization{}).Count(&stats.TotalOrgs).Error; err != nil {
		apiutil.ServerError(c, "Failed to load stats", err)
		return
	}
	if err := db.Model(&users.User{}).Count(&stats.TotalUsers).Error; err != nil {
		apiutil.ServerError(c, "Failed to load stats", err)
		return
	}
	if err := db.Model(&orders.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		apiutil.ServerError(c, "Failed to load stats", err)
		return
	}
	if err := db.Model(&billing.Invoice{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&stats.RevenueCents).Error; err != nil {
		apiutil.ServerError(c, "Failed to load stats", err)
		return
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := db.Model(&billing.Invoice{}).
		Where("created_at >= ?", thirtyDaysAgo).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&stats.RecentRevenueCents).Error; err != nil {
		apiutil.ServerError(c, "Failed to load stats", err)
		return
	}

	var list []orgs.Organization
	if err := db.Preload("Plan").Find(&list).Error; err != nil {
		apiutil.ServerError(c, "Failed to load stats", err)
		return
	}
	now := time.Now()
	stats.OrgsPerTier = map[string]int64{}
	for _, o := range list {
		stats.OrgsPerTier[access.ComputePolicy(now, o).Tier]++
	}

	c.JSON(http.StatusOK, stats)
}
