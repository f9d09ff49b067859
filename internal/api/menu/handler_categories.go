package menu

import (
	"errors"
	"net/http"
	"strings"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/api/public"
	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/infra/dbx"
	"restaurant-app/internal/infra/metrics"

	"github.com/gin-gonic/gin"
)

func menuError(c *gin.Context, err error) {
	var limitErr *plans.LimitError
	switch {
	case errors.As(err, &limitErr):
		metrics.Default.PlanLimitHits.WithLabelValues(string(limitErr.Kind)).Inc()
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Menu item limit reached for the current plan", "limit": limitErr.Max})
	case errors.Is(err, menu.ErrCategoryNotFound), errors.Is(err, menu.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, menu.ErrCategoryTaken), dbx.IsUniqueViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": menu.ErrCategoryTaken.Error()})
	case errors.Is(err, menu.ErrCategoryNotEmpty):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		apiutil.ServerError(c, "Failed to save menu", err)
	}
}

// changed must follow every successful write guests can see.
func changed(c *gin.Context) {
	public.InvalidateMenu(apiutil.Org(c).Slug)
}

// GET /orgs/:orgID/menu
func GetFullMenu(c *gin.Context) {
	org := apiutil.Org(c)

	cats, err := menu.FullMenu(database.DB, org.ID, false)
	if err != nil {
		apiutil.ServerError(c, "Failed to load menu", err)
		return
	}

	out := make([]CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, toCategoryResponse(cat))
	}
	c.JSON(http.StatusOK, out)
}

type categoryRequest struct {
	Name      *string `json:"name"`
	SortIndex *int    `json:"sort_index"`
	Active    *bool   `json:"active"`
}

// POST /orgs/:orgID/menu/categories
func CreateCategory(c *gin.Context) {
	org := apiutil.Org(c)

	var body categoryRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	cat := menu.Category{OrgID: org.ID, Name: strings.TrimSpace(*body.Name), Active: true}
	if body.SortIndex != nil {
		cat.SortIndex = *body.SortIndex
	}
	if body.Active != nil {
		cat.Active = *body.Active
	}

	// explicit false is skipped by gorm on create when a default exists
	if err := database.DB.Create(&cat).Error; err != nil {
		menuError(c, err)
		return
	}
	if !cat.Active {
		if err := database.DB.Model(&cat).Update("active", false).Error; err != nil {
			menuError(c, err)
			return
		}
	}

	changed(c)
	c.JSON(http.StatusCreated, toCategoryResponse(cat))
}

// PATCH /orgs/:orgID/menu/categories/:id
func UpdateCategory(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	var body categoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	cat, err := menu.GetCategory(database.DB, org.ID, id)
	if err != nil {
		menuError(c, err)
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category name cannot be empty"})
			return
		}
		updates["name"] = name
	}
	if body.SortIndex != nil {
		updates["sort_index"] = *body.SortIndex
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if len(updates) > 0 {
		if err := database.DB.Model(cat).Updates(updates).Error; err != nil {
			menuError(c, err)
			return
		}
	}

	changed(c)
	c.JSON(http.StatusOK, toCategoryResponse(*cat))
}

// DELETE /orgs/:orgID/menu/categories/:id refuses while items remain.
func DeleteCategory(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	cat, err := menu.GetCategory(database.DB, org.ID, id)
	if err != nil {
		menuError(c, err)
		return
	}

	var n int64
	if err := database.DB.Model(&menu.Item{}).Where("category_id = ?", cat.ID).Count(&n).Error; err != nil {
		apiutil.ServerError(c, "Failed to delete category", err)
		return
	}
	if n > 0 {
		menuError(c, menu.ErrCategoryNotEmpty)
		return
	}

	if err := database.DB.Delete(cat).Error; err != nil {
		apiutil.ServerError(c, "Failed to delete category", err)
		return
	}

	changed(c)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// PUT /orgs/:orgID/menu/categories/order
func ReorderCategories(c *gin.Context) {
	org := apiutil.Org(c)

	var body struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids are required"})
		return
	}

	ids := make([]int64, 0, len(body.IDs))
	for _, s := range body.IDs {
		id, err := apiutil.ParseOptionalID(s)
		if err != nil || id == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		ids = append(ids, *id)
	}

	if err := menu.Reorder(database.DB, org.ID, ids); err != nil {
		menuError(c, err)
		return
	}

	changed(c)
	c.JSON(http.StatusOK, gin.H{"message": "Categories reordered"})
}
