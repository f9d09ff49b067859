package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"restaurant-app/config"
	"restaurant-app/database"
	"restaurant-app/internal/api/apiutil"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/dbx"
	"restaurant-app/internal/infra/logger"
	"restaurant-app/internal/infra/mail"

	"github.com/badoux/checkmail"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	verificationTTL  = 48 * time.Hour
	passwordResetTTL = time.Hour
)

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// IsEmailValid checks the address format (no network lookups).
func IsEmailValid(email string) bool {
	return checkmail.ValidateFormat(email) == nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// issueUserToken replaces any previous token of kind for the user.
func issueUserToken(db *gorm.DB, userID int64, kind string, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND type = ?", userID, kind).Delete(&users.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&users.VerificationToken{
			UserID:    userID,
			Token:     token,
			Type:      kind,
			ExpiresAt: time.Now().Add(ttl),
		}).Error
	})
	return token, err
}

func sendVerification(c *gin.Context, user users.User) error {
	token, err := issueUserToken(database.DB, user.ID, users.TokenEmailVerification, verificationTTL)
	if err != nil {
		return err
	}
	link := config.APP_URL + "/verify-email?token=" + url.QueryEscape(token)
	return mail.Default.SendEmail(c.Request.Context(), mail.VerificationMessage(config.SMTP_FROM, user.Email, link))
}

// POST /auth/register
func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Lastname string `json:"lastname" binding:"required"`
		Tel      string `json:"tel"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := users.NormalizeEmail(input.Email)
	if !IsEmailValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}
	if !isPasswordStrong(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long and contain both letters and numbers"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		apiutil.ServerError(c, "Failed to hash password", err)
		return
	}
	hashed := string(hashedPassword)

	user := users.User{
		Name:         input.Name,
		Lastname:     input.Lastname,
		Tel:          input.Tel,
		Email:        email,
		Password:     &hashed,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleUser,
		IsVerified:   false,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		if dbx.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		apiutil.ServerError(c, "Failed to create user", err)
		return
	}

	if err := sendVerification(c, user); err != nil {
		// account exists; the user can ask for a new link
		slog.ErrorContext(c.Request.Context(), "Failed to send verification email", "user_id", user.ID, logger.ErrAttr(err))
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully. Please check your email to verify your account."})
}

// POST /auth/login
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user users.User
	err := database.DB.Where("email = ?", users.NormalizeEmail(input.Email)).First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Password == nil || *user.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account uses Google sign-in"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email before logging in"})
		return
	}

	tokenString, err := issueAppJWT(user)
	if err != nil {
		apiutil.ServerError(c, "Could not create token", err)
		return
	}

	setSessionCookie(c, tokenString)
	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

// GET /auth/verify?token=
func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	var vt users.VerificationToken
	err := database.DB.Where("token = ? AND type = ?", token, users.TokenEmailVerification).First(&vt).Error
	if err != nil || vt.Expired(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&users.User{}).Where("id = ?", vt.UserID).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Delete(&vt).Error
	})
	if err != nil {
		apiutil.ServerError(c, "Failed to verify user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// POST /auth/resend-verification
func ResendVerification(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid email"})
		return
	}

	var user users.User
	err := database.DB.Where("email = ?", users.NormalizeEmail(body.Email)).First(&user).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.IsVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already verified"})
		return
	}

	if err := sendVerification(c, user); err != nil {
		apiutil.ServerError(c, "Failed to send verification email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification email resent"})
}

// POST /auth/request-password-reset
func RequestPasswordReset(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
		return
	}

	const generic = "If your email exists, you'll receive a reset link."

	var user users.User
	if err := database.DB.Where("email = ?", users.NormalizeEmail(body.Email)).First(&user).Error; err != nil {
		// Don't expose whether the email exists
		c.JSON(http.StatusOK, gin.H{"message": generic})
		return
	}

	token, err := issueUserToken(database.DB, user.ID, users.TokenPasswordReset, passwordResetTTL)
	if err != nil {
		apiutil.ServerError(c, "Failed to create reset token", err)
		return
	}

	resetLink := config.APP_URL + "/reset-password?token=" + url.QueryEscape(token)
	if err := mail.Default.SendEmail(c.Request.Context(), mail.PasswordResetMessage(config.SMTP_FROM, user.Email, resetLink)); err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to send reset email", "user_id", user.ID, logger.ErrAttr(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": generic})
}

// POST /auth/reset-password
func ResetPassword(c *gin.Context) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !isPasswordStrong(body.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters with letters and numbers"})
		return
	}

	var reset users.VerificationToken
	err := database.DB.Where("token = ? AND type = ?", body.Token, users.TokenPasswordReset).First(&reset).Error
	if err != nil || reset.Expired(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		apiutil.ServerError(c, "Failed to hash password", err)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&users.User{}).Where("id = ?", reset.UserID).Update("password", string(hashed)).Error; err != nil {
			return err
		}
		return tx.Delete(&reset).Error
	})
	if err != nil {
		apiutil.ServerError(c, "Failed to reset password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// POST /auth/change-password
func ChangePassword(c *gin.Context) {
	userID, ok := apiutil.UserID(c)
	if !ok {
		return
	}

	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if !isPasswordStrong(body.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be at least 8 characters with letters and numbers"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		apiutil.ServerError(c, "Failed to load user", err)
		return
	}

	if user.Password == nil || *user.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "This account does not have a password. Sign in with Google or set a password first.",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(body.OldPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Old password is incorrect"})
		return
	}

	hashedNew, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		apiutil.ServerError(c, "Failed to hash password", err)
		return
	}
	if err := database.DB.Model(&user).Update("password", string(hashedNew)).Error; err != nil {
		apiutil.ServerError(c, "Failed to update password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
