package users

import (
	"net/http"
	"strings"
	"time"

	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/dbx"

	"github.com/gin-gonic/gin"
)

// GET /me
func GetCurrentUser(c *gin.Context) {
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var user users.User
	err := database.DB.First(&user, userID).Error
	if dbx.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		apiutil.ServerError(c, "Failed to load user", err)
		return
	}

	var memberships []orgs.Membership
	if err := database.DB.
		Preload("Org").
		Preload("Org.Plan").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		apiutil.ServerError(c, "Failed to load memberships", err)
		return
	}

	now := time.Now()
	resp := MeResponse{
		User:        BuildUserDTO(user),
		Memberships: make([]MembershipDTO, 0, len(memberships)),
	}
	for _, m := range memberships {
		resp.Memberships = append(resp.Memberships, BuildMembershipDTO(now, m))
	}

	c.JSON(http.StatusOK, resp)
}

// PATCH /me
func UpdateProfile(c *gin.Context) {
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var body struct {
		Name     *string `json:"name"`
		Lastname *string `json:"lastname"`
		Tel      *string `json:"tel"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		if strings.TrimSpace(*body.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Lastname != nil {
		updates["lastname"] = strings.TrimSpace(*body.Lastname)
	}
	if body.Tel != nil {
		updates["tel"] = strings.TrimSpace(*body.Tel)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		apiutil.ServerError(c, "Failed to update profile", err)
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		apiutil.ServerError(c, "Failed to load user", err)
		return
	}
	c.JSON(http.StatusOK, BuildUserDTO(user))
}
