package users

import "restaurant-app/internal/domain/access"

type MeResponse struct {
	User        UserDTO         `json:"user"`
	Memberships []MembershipDTO `json:"memberships"`
}

type UserDTO struct {
	ID           int64   `json:"id,string"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Lastname     string  `json:"lastname"`
	Tel          *string `json:"tel"`
	Role         string  `json:"role"`
	AuthProvider string  `json:"auth_provider"`
	IsVerified   bool    `json:"is_verified"`
}

type MembershipDTO struct {
	Org    OrgLiteDTO    `json:"org"`
	Role   string        `json:"role"`
	Access access.Policy `json:"access"`
}

type OrgLiteDTO struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
