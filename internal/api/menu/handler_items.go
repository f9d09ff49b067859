package menu

import (
	"net/http"
	"strings"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/app/http/middleware"
	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type itemRequest struct {
	CategoryID  *string   `json:"category_id"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	PriceCents  *int64    `json:"price_cents"`
	ImageURL    *string   `json:"image_url"`
	Available   *bool     `json:"available"`
	SortIndex   *int      `json:"sort_index"`
	Tags        *[]string `json:"tags"`
}

func (r itemRequest) validate() string {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return "Item name cannot be empty"
	}
	if r.PriceCents != nil && *r.PriceCents < 0 {
		return "Price cannot be negative"
	}
	if r.ImageURL != nil && *r.ImageURL != "" && !validImageURL(*r.ImageURL) {
		return "Image URL must be an https URL"
	}
	return ""
}

// images live on the CDN; only absolute https URLs are stored
func validImageURL(u string) bool {
	return strings.HasPrefix(u, "https://") && len(u) <= 2048
}

func resolveCategory(c *gin.Context, orgID int64, raw string) (*menu.Category, bool) {
	id, err := apiutil.ParseOptionalID(raw)
	if err != nil || id == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
		return nil, false
	}
	cat, err := menu.GetCategory(database.DB, orgID, *id)
	if err != nil {
		menuError(c, err)
		return nil, false
	}
	return cat, true
}

// POST /orgs/:orgID/menu/items
func CreateItem(c *gin.Context) {
	org := apiutil.Org(c)

	var body itemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if body.CategoryID == nil || body.Name == nil || body.PriceCents == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id, name and price_cents are required"})
		return
	}
	if msg := body.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	cat, ok := resolveCategory(c, org.ID, *body.CategoryID)
	if !ok {
		return
	}

	it := menu.Item{
		OrgID:      org.ID,
		CategoryID: cat.ID,
		Name:       middleware.SanitizeText(strings.TrimSpace(*body.Name)),
		PriceCents: *body.PriceCents,
		Available:  true,
	}
	if body.Description != nil {
		it.Description = middleware.SanitizeText(strings.TrimSpace(*body.Description))
	}
	if body.ImageURL != nil {
		it.ImageURL = *body.ImageURL
	}
	if body.SortIndex != nil {
		it.SortIndex = *body.SortIndex
	}
	if body.Tags != nil {
		it.Tags = menu.JoinTags(*body.Tags)
	}

	limits := apiutil.Policy(c).Limits
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		used, err := menu.CountItems(tx, org.ID)
		if err != nil {
			return err
		}
		if err := limits.Check(plans.LimitMenuItems, used); err != nil {
			return err
		}
		if err := tx.Create(&it).Error; err != nil {
			return err
		}
		if body.Available != nil && !*body.Available {
			it.Available = false
			return tx.Model(&it).Update("available", false).Error
		}
		return nil
	})
	if err != nil {
		menuError(c, err)
		return
	}

	changed(c)
	c.JSON(http.StatusCreated, toItemResponse(it))
}

// PATCH /orgs/:orgID/menu/items/:id
func UpdateItem(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	var body itemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if msg := body.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	it, err := menu.GetItem(database.DB, org.ID, id)
	if err != nil {
		menuError(c, err)
		return
	}

	updates := map[string]any{}
	if body.CategoryID != nil {
		cat, ok := resolveCategory(c, org.ID, *body.CategoryID)
		if !ok {
			return
		}
		updates["category_id"] = cat.ID
	}
	if body.Name != nil {
		updates["name"] = middleware.SanitizeText(strings.TrimSpace(*body.Name))
	}
	if body.Description != nil {
		updates["description"] = middleware.SanitizeText(strings.TrimSpace(*body.Description))
	}
	if body.PriceCents != nil {
		updates["price_cents"] = *body.PriceCents
	}
	if body.ImageURL != nil {
		updates["image_url"] = *body.ImageURL
	}
	if body.Available != nil {
		updates["available"] = *body.Available
	}
	if body.SortIndex != nil {
		updates["sort_index"] = *body.SortIndex
	}
	if body.Tags != nil {
		updates["tags"] = menu.JoinTags(*body.Tags)
	}

	if len(updates) > 0 {
		if err := database.DB.Model(it).Updates(updates).Error; err != nil {
			menuError(c, err)
			return
		}
	}

	changed(c)
	c.JSON(http.StatusOK, toItemResponse(*it))
}

// PATCH /orgs/:orgID/menu/items/:id/availability
func SetAvailability(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "available is required"})
		return
	}

	it, err := menu.GetItem(database.DB, org.ID, id)
	if err != nil {
		menuError(c, err)
		return
	}
	if err := database.DB.Model(it).Update("available", *body.Available).Error; err != nil {
		apiutil.ServerError(c, "Failed to update availability", err)
		return
	}

	changed(c)
	c.JSON(http.StatusOK, toItemResponse(*it))
}

// DELETE /orgs/:orgID/menu/items/:id
func DeleteItem(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	res := database.DB.Where("org_id = ? AND id = ?", org.ID, id).Delete(&menu.Item{})
	if res.Error != nil {
		apiutil.ServerError(c, "Failed to delete item", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		menuError(c, menu.ErrItemNotFound)
		return
	}

	changed(c)
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}
