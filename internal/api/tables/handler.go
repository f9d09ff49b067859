package tables

import (
	"errors"
	"net/http"
	"strings"

	"restaurant-app/config"
	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/tables"
	"restaurant-app/internal/infra/dbx"
	"restaurant-app/internal/infra/metrics"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TableResponse struct {
	tables.Table
	QRURL string `json:"qr_url"`
}

func toResponse(c *gin.Context, t tables.Table) TableResponse {
	return TableResponse{Table: t, QRURL: tables.QRTargetURL(config.APP_URL, apiutil.Org(c).Slug, t.QRToken)}
}

type tableRequest struct {
	Name   *string `json:"name"`
	Seats  *int    `json:"seats"`
	Area   *string `json:"area"`
	Active *bool   `json:"active"`
}

func tableError(c *gin.Context, err error) {
	var limitErr *plans.LimitError
	switch {
	case errors.As(err, &limitErr):
		metrics.Default.PlanLimitHits.WithLabelValues(string(limitErr.Kind)).Inc()
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Table limit reached for the current plan", "limit": limitErr.Max})
	case errors.Is(err, tables.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
	case errors.Is(err, tables.ErrNameTaken), dbx.IsUniqueViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": tables.ErrNameTaken.Error()})
	default:
		apiutil.ServerError(c, "Failed to save table", err)
	}
}

// GET /orgs/:orgID/tables
func ListTables(c *gin.Context) {
	org := apiutil.Org(c)

	var list []tables.Table
	if err := database.DB.Where("org_id = ?", org.ID).Order("area ASC, name ASC").Find(&list).Error; err != nil {
		apiutil.ServerError(c, "Failed to load tables", err)
		return
	}

	out := make([]TableResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toResponse(c, t))
	}
	c.JSON(http.StatusOK, out)
}

// POST /orgs/:orgID/tables
func CreateTable(c *gin.Context) {
	org := apiutil.Org(c)

	var body tableRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Table name is required"})
		return
	}

	token, err := tables.NewQRToken()
	if err != nil {
		apiutil.ServerError(c, "Failed to generate QR token", err)
		return
	}

	t := tables.Table{
		OrgID:   org.ID,
		Name:    strings.TrimSpace(*body.Name),
		Seats:   2,
		Active:  true,
		QRToken: token,
	}
	if body.Seats != nil && *body.Seats > 0 {
		t.Seats = *body.Seats
	}
	if body.Area != nil {
		t.Area = strings.TrimSpace(*body.Area)
	}

	limits := apiutil.Policy(c).Limits
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		used, err := tables.Count(tx, org.ID)
		if err != nil {
			return err
		}
		if err := limits.Check(plans.LimitTables, used); err != nil {
			return err
		}
		return tx.Create(&t).Error
	})
	if err != nil {
		tableError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(c, t))
}

// PATCH /orgs/:orgID/tables/:id
func UpdateTable(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	var body tableRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	t, err := tables.Get(database.DB, org.ID, id)
	if err != nil {
		tableError(c, err)
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Table name cannot be empty"})
			return
		}
		updates["name"] = name
	}
	if body.Seats != nil {
		if *body.Seats < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Seats must be at least 1"})
			return
		}
		updates["seats"] = *body.Seats
	}
	if body.Area != nil {
		updates["area"] = strings.TrimSpace(*body.Area)
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(t).Updates(updates).Error; err != nil {
			tableError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, toResponse(c, *t))
}

// DELETE /orgs/:orgID/tables/:id
func DeleteTable(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	res := database.DB.Where("org_id = ? AND id = ?", org.ID, id).Delete(&tables.Table{})
	if res.Error != nil {
		apiutil.ServerError(c, "Failed to delete table", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted"})
}

// POST /orgs/:orgID/tables/:id/regenerate-qr invalidates printed codes.
func RegenerateQR(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	t, err := tables.Get(database.DB, org.ID, id)
	if err != nil {
		tableError(c, err)
		return
	}
	token, err := tables.NewQRToken()
	if err != nil {
		apiutil.ServerError(c, "Failed to generate QR token", err)
		return
	}
	if err := database.DB.Model(t).Update("qr_token", token).Error; err != nil {
		apiutil.ServerError(c, "Failed to update QR token", err)
		return
	}
	t.QRToken = token

	c.JSON(http.StatusOK, toResponse(c, *t))
}

// GET /orgs/:orgID/tables/:id/qr
func GetQR(c *gin.Context) {
	org := apiutil.Org(c)
	id, ok := apiutil.ParamID(c, "id")
	if !ok {
		return
	}

	t, err := tables.Get(database.DB, org.ID, id)
	if err != nil {
		tableError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"table":    t.Name,
		"qr_token": t.QRToken,
		"url":      tables.QRTargetURL(config.APP_URL, org.Slug, t.QRToken),
	})
}
