package middleware

import (
	"net/http"
	"strings"

	"restaurant-app/config"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/infra/logger"
	"restaurant-app/internal/infra/session"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts the session cookie (browser, websocket) or a Bearer token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwtKey := []byte(config.JWT_SECRET)
		if len(jwtKey) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			return
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			if cookie, err := c.Cookie(session.CookieName); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := session.Parse(jwtKey, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, _ := claims.ID()
		c.Set(apiutil.KeyUserID, userID)
		c.Set(apiutil.KeyEmail, claims.Email)
		c.Set(apiutil.KeyRole, claims.Role)

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{UserID: logger.Ptr(userID)})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return ""
	}
	return strings.TrimSpace(tokenString)
}

// RequireRole checks the platform role carried by the session.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(apiutil.KeyRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}

		if value != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Next()
	}
}
