package users

import (
	"strings"

	"restaurant-app/internal/domain/model"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	model.Base
	Name         string  `json:"name"`
	Lastname     string  `json:"lastname"`
	Tel          string  `json:"tel,omitempty"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	Password     *string `json:"-"`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsVerified   bool    `json:"is_verified"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Lastname)
}

// NormalizeEmail is applied to every email stored or compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
