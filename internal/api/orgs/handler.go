package orgs

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"restaurant-app/config"
	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/api/public"
	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/infra/dbx"

	"github.com/gin-gonic/gin"
)

type OrgResponse struct {
	orgs.Organization
	Role   orgs.Role     `json:"role"`
	Access access.Policy `json:"access"`
}

type createOrgRequest struct {
	Name           string `json:"name" binding:"required"`
	Slug           string `json:"slug"`
	Currency       string `json:"currency"`
	Timezone       string `json:"timezone"`
	Address        string `json:"address"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

// POST /orgs
func CreateOrg(c *gin.Context) {
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var body createOrgRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(strings.TrimSpace(body.Name)) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is too short"})
		return
	}

	org, err := orgs.Create(database.DB, userID, orgs.CreateInput{
		Name:           body.Name,
		Slug:           body.Slug,
		Currency:       body.Currency,
		Timezone:       body.Timezone,
		Address:        body.Address,
		WhatsAppNumber: body.WhatsAppNumber,
	}, time.Now(), config.TRIAL_DAYS)
	switch {
	case errors.Is(err, orgs.ErrInvalidSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug must be 3-60 lowercase letters, digits or dashes"})
		return
	case errors.Is(err, orgs.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already taken"})
		return
	case err != nil:
		apiutil.ServerError(c, "Failed to create organization", err)
		return
	}

	slog.InfoContext(c.Request.Context(), "Organization created", "org_id", org.ID, "slug", org.Slug)
	c.JSON(http.StatusCreated, OrgResponse{
		Organization: *org,
		Role:         orgs.RoleOwner,
		Access:       access.ComputePolicy(time.Now(), *org),
	})
}

// GET /orgs
func ListMyOrgs(c *gin.Context) {
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var memberships []orgs.Membership
	if err := database.DB.
		Preload("Org").
		Preload("Org.Plan").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		apiutil.ServerError(c, "Failed to load organizations", err)
		return
	}

	now := time.Now()
	out := make([]OrgResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, OrgResponse{
			Organization: m.Org,
			Role:         m.Role,
			Access:       access.ComputePolicy(now, m.Org),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /orgs/:orgID
func GetOrg(c *gin.Context) {
	c.JSON(http.StatusOK, OrgResponse{
		Organization: *apiutil.Org(c),
		Role:         apiutil.Role(c),
		Access:       apiutil.Policy(c),
	})
}

// PATCH /orgs/:orgID
func UpdateOrg(c *gin.Context) {
	org := apiutil.Org(c)

	var body struct {
		Name           *string `json:"name"`
		Slug           *string `json:"slug"`
		Currency       *string `json:"currency"`
		Timezone       *string `json:"timezone"`
		Address        *string `json:"address"`
		WhatsAppNumber *string `json:"whatsapp_number"`
		LogoURL        *string `json:"logo_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if len(name) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is too short"})
			return
		}
		updates["name"] = name
	}
	if body.Slug != nil {
		requested := strings.ToLower(strings.TrimSpace(*body.Slug))
		if requested == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slug cannot be empty"})
			return
		}
		if requested != org.Slug {
			slug, err := orgs.ResolveSlug(database.DB, "", requested)
			switch {
			case errors.Is(err, orgs.ErrInvalidSlug):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Slug must be 3-60 lowercase letters, digits or dashes"})
				return
			case errors.Is(err, orgs.ErrSlugTaken):
				c.JSON(http.StatusConflict, gin.H{"error": "Slug already taken"})
				return
			case err != nil:
				apiutil.ServerError(c, "Failed to check slug", err)
				return
			}
			updates["slug"] = slug
		}
	}
	if body.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*body.Currency))
		if len(cur) != 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Currency must be an ISO 4217 code"})
			return
		}
		updates["currency"] = cur
	}
	if body.Timezone != nil {
		if _, err := time.LoadLocation(*body.Timezone); err != nil || *body.Timezone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown timezone"})
			return
		}
		updates["timezone"] = *body.Timezone
	}
	if body.Address != nil {
		updates["address"] = strings.TrimSpace(*body.Address)
	}
	if body.WhatsAppNumber != nil {
		updates["whatsapp_number"] = orgs.NormalizePhone(*body.WhatsAppNumber)
	}
	if body.LogoURL != nil {
		updates["logo_url"] = strings.TrimSpace(*body.LogoURL)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := database.DB.Model(&orgs.Organization{}).Where("id = ?", org.ID).Updates(updates).Error; err != nil {
		if dbx.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Slug already taken"})
			return
		}
		apiutil.ServerError(c, "Failed to update organization", err)
		return
	}

	var updated orgs.Organization
	if err := database.DB.Preload("Plan").First(&updated, org.ID).Error; err != nil {
		apiutil.ServerError(c, "Failed to load organization", err)
		return
	}
	public.InvalidateMenu(org.Slug)

	c.JSON(http.StatusOK, OrgResponse{
		Organization: updated,
		Role:         apiutil.Role(c),
		Access:       access.ComputePolicy(time.Now(), updated),
	})
}

// DELETE /orgs/:orgID
func DeleteOrg(c *gin.Context) {
	org := apiutil.Org(c)

	if org.SubscriptionID != nil && *org.SubscriptionID != "" && !subscriptionEnded(org) {
		c.JSON(http.StatusConflict, gin.H{"error": "Cancel the subscription before deleting the organization"})
		return
	}

	if err := database.DB.Delete(&orgs.Organization{}, org.ID).Error; err != nil {
		apiutil.ServerError(c, "Failed to delete organization", err)
		return
	}
	public.InvalidateMenu(org.Slug)

	slog.InfoContext(c.Request.Context(), "Organization deleted", "org_id", org.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

func subscriptionEnded(org *orgs.Organization) bool {
	return org.StripeSubscriptionStatus != nil && *org.StripeSubscriptionStatus == "canceled"
}
