package middleware

import (
	"errors"
	"net/http"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/infra/dbx"
	"restaurant-app/internal/infra/logger"

	"github.com/gin-gonic/gin"
)

// LoadOrg resolves :orgID for the signed-in user. Non-members get 404 so org
// ids cannot be enumerated.
func LoadOrg() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := apiutil.ParamID(c, "orgID")
		if !ok {
			return
		}
		userID, ok := apiutil.UserID(c)
		if !ok {
			return
		}

		m, err := orgs.FindMembership(database.DB, orgID, userID)
		if errors.Is(err, orgs.ErrNotMember) {
			apiutil.Error(c, http.StatusNotFound, "Organization not found")
			return
		}
		if err != nil {
			apiutil.ServerError(c, "Failed to load membership", err)
			return
		}

		var org orgs.Organization
		err = database.DB.Preload("Plan").Preload("PendingPlan").First(&org, orgID).Error
		if dbx.IsNotFound(err) {
			apiutil.Error(c, http.StatusNotFound, "Organization not found")
			return
		}
		if err != nil {
			apiutil.ServerError(c, "Failed to load organization", err)
			return
		}

		c.Set(apiutil.KeyOrg, &org)
		c.Set(apiutil.KeyMembership, m)
		c.Set(apiutil.KeyPolicy, access.ComputePolicy(time.Now(), org))

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{OrgID: logger.Ptr(orgID)})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequirePermission must run after LoadOrg.
func RequirePermission(perm orgs.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !orgs.Can(apiutil.Role(c), perm) {
			apiutil.Error(c, http.StatusForbidden, "You do not have permission to do this")
			return
		}
		c.Next()
	}
}

// RequireOwner is a shortcut for owner-only routes such as billing.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiutil.Role(c) != orgs.RoleOwner {
			apiutil.Error(c, http.StatusForbidden, "Only the owner can do this")
			return
		}
		c.Next()
	}
}
