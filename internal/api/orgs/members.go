package orgs

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/orgs"

	"github.com/gin-gonic/gin"
)

type MemberDTO struct {
	UserID   int64     `json:"user_id,string"`
	Name     string    `json:"name"`
	Lastname string    `json:"lastname"`
	Email    string    `json:"email"`
	Role     orgs.Role `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// memberError maps domain errors of membership changes to responses.
func memberError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orgs.ErrNotMember):
		apiutil.Error(c, http.StatusNotFound, "Member not found")
	case errors.Is(err, orgs.ErrOwnerImmutable):
		apiutil.Error(c, http.StatusForbidden, "The owner role can only change through an ownership transfer")
	case errors.Is(err, orgs.ErrOwnerCannotLeave):
		apiutil.Error(c, http.StatusConflict, "Transfer ownership before leaving the organization")
	case errors.Is(err, orgs.ErrForbiddenRole):
		apiutil.Error(c, http.StatusForbidden, "You are not allowed to manage this member")
	case errors.Is(err, orgs.ErrInvalidRole):
		apiutil.Error(c, http.StatusBadRequest, "Invalid role")
	case errors.Is(err, orgs.ErrSelfTransfer):
		apiutil.Error(c, http.StatusBadRequest, "You already own this organization")
	default:
		apiutil.ServerError(c, "Failed to update membership", err)
	}
}

// GET /orgs/:orgID/members
func ListMembers(c *gin.Context) {
	org := apiutil.Org(c)

	var out []MemberDTO
	err := database.DB.Table("memberships").
		Select("memberships.user_id, users.name, users.lastname, users.email, memberships.role, memberships.created_at AS joined_at").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.org_id = ?", org.ID).
		Order("memberships.created_at ASC").
		Scan(&out).Error
	if err != nil {
		apiutil.ServerError(c, "Failed to load members", err)
		return
	}
	if out == nil {
		out = []MemberDTO{}
	}
	c.JSON(http.StatusOK, out)
}

// PATCH /orgs/:orgID/members/:userID
func ChangeMemberRole(c *gin.Context) {
	org := apiutil.Org(c)
	targetID, ok := apiutil.ParamID(c, "userID")
	if !ok {
		return
	}

	var body struct {
		Role orgs.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing role"})
		return
	}

	m, err := orgs.ChangeRole(database.DB, org.ID, apiutil.Role(c), targetID, body.Role)
	if err != nil {
		memberError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "Member role changed", "target_user_id", targetID, "role", m.Role)
	c.JSON(http.StatusOK, m)
}

// DELETE /orgs/:orgID/members/:userID
// Any member may remove themselves; otherwise members.manage rules apply.
func RemoveMember(c *gin.Context) {
	org := apiutil.Org(c)
	targetID, ok := apiutil.ParamID(c, "userID")
	if !ok {
		return
	}
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	actor := apiutil.Role(c)
	if targetID != userID && !orgs.Can(actor, orgs.PermMembersManage) {
		apiutil.Error(c, http.StatusForbidden, "You do not have permission to do this")
		return
	}

	if err := orgs.RemoveMember(database.DB, org.ID, userID, actor, targetID); err != nil {
		memberError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "Member removed", "target_user_id", targetID)
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// POST /orgs/:orgID/transfer-ownership
func TransferOwnership(c *gin.Context) {
	org := apiutil.Org(c)
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var body struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id"})
		return
	}
	newOwner, err := apiutil.ParseOptionalID(body.UserID)
	if err != nil || newOwner == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	if err := orgs.TransferOwnership(database.DB, org.ID, userID, *newOwner); err != nil {
		memberError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "Ownership transferred", "new_owner_id", *newOwner)
	c.JSON(http.StatusOK, gin.H{"message": "Ownership transferred"})
}
