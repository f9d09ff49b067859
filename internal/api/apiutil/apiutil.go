// Package apiutil has the small helpers every handler package shares.
package apiutil

import (
	"log/slog"
	"net/http"
	"strconv"

	"restaurant-app/internal/infra/logger"

	"github.com/gin-gonic/gin"
)

// context keys set by middleware
const (
	KeyUserID     = "user_id"
	KeyEmail      = "email"
	KeyRole       = "role"
	KeyOrg        = "org"
	KeyMembership = "membership"
	KeyPolicy     = "policy"
)

// UserID returns the authenticated user id; it aborts with 401 when missing.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(KeyUserID)
	id, isInt := v.(int64)
	if !ok || !isInt || id == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return id, true
}

// ParamID parses a snowflake id path param; it aborts with 400 when malformed.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// ParseOptionalID parses a string id from a request body or query; "" is nil.
func ParseOptionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ServerError logs err and answers 500 with msg.
func ServerError(c *gin.Context, msg string, err error) {
	slog.ErrorContext(c.Request.Context(), msg, logger.ErrAttr(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
