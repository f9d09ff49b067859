package invitations

import (
	"time"

	"restaurant-app/internal/domain/model"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/users"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

type Invitation struct {
	model.Base
	OrgID       int64             `gorm:"not null;index" json:"org_id,string"`
	Org         orgs.Organization `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Email       string            `gorm:"not null;index" json:"email"`
	Role        orgs.Role         `gorm:"type:varchar(20);not null" json:"role"`
	TokenHash   string            `gorm:"type:char(64);not null;uniqueIndex" json:"-"`
	InvitedByID int64             `gorm:"not null" json:"invited_by_id,string"`
	InvitedBy   users.User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ExpiresAt   time.Time         `gorm:"not null" json:"expires_at"`
	AcceptedAt  *time.Time        `json:"accepted_at,omitempty"`
	AcceptedBy  *int64            `json:"accepted_by,string,omitempty"`
	RevokedAt   *time.Time        `json:"revoked_at,omitempty"`
}

// StatusAt derives the lifecycle state; revoked wins over accepted, accepted over expired.
func (i *Invitation) StatusAt(now time.Time) Status {
	switch {
	case i.RevokedAt != nil:
		return StatusRevoked
	case i.AcceptedAt != nil:
		return StatusAccepted
	case !now.Before(i.ExpiresAt):
		return StatusExpired
	default:
		return StatusPending
	}
}
