package users

import (
	"time"

	"restaurant-app/internal/domain/access"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/users"
)

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Lastname:     u.Lastname,
		Tel:          stringPtrIfNotEmpty(u.Tel),
		Role:         u.Role,
		AuthProvider: u.AuthProvider,
		IsVerified:   u.IsVerified,
	}
}

func BuildMembershipDTO(now time.Time, m orgs.Membership) MembershipDTO {
	return MembershipDTO{
		Org: OrgLiteDTO{
			ID:   m.Org.ID,
			Name: m.Org.Name,
			Slug: m.Org.Slug,
		},
		Role:   string(m.Role),
		Access: access.ComputePolicy(now, m.Org),
	}
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
