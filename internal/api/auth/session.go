package auth

import (
	"net/http"
	"time"

	"restaurant-app/config"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/session"

	"github.com/gin-gonic/gin"
)

func issueAppJWT(user users.User) (string, error) {
	return session.Issue([]byte(config.JWT_SECRET), user.ID, user.Email, user.Role, time.Now())
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(session.TTL.Seconds()), "/", config.COOKIE_DOMAIN, config.COOKIE_SECURE, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", config.COOKIE_DOMAIN, config.COOKIE_SECURE, true)
}

// POST /auth/logout
func Logout(c *gin.Context) {
	clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
