package users

import (
	"time"

	"restaurant-app/internal/domain/model"
)

const (
	TokenEmailVerification = "email_verification"
	TokenPasswordReset     = "password_reset"
)

type VerificationToken struct {
	model.Base
	UserID    int64  `gorm:"index;not null"`
	User      User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Token     string `gorm:"uniqueIndex;not null"`
	Type      string `gorm:"index;not null"`
	ExpiresAt time.Time
}

func (t VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
