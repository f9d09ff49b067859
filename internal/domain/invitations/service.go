package invitations

import (
	"errors"
	"strings"
	"time"

	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/plans"
	"restaurant-app/internal/domain/users"
	"restaurant-app/internal/infra/dbx"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("invitation not found")
	ErrExpired         = errors.New("invitation expired")
	ErrRevoked         = errors.New("invitation revoked")
	ErrAlreadyAccepted = errors.New("invitation already accepted")
	ErrEmailMismatch   = errors.New("invitation was sent to a different email")
	ErrAlreadyMember   = errors.New("user is already a member")
	ErrSeatLimit       = errors.New("seat limit reached for current plan")
	ErrNotPending      = errors.New("invitation is no longer pending")
	ErrInvalidRole     = errors.New("invalid role for invitation")
)

type CreateInput struct {
	OrgID     int64
	Email     string
	Role      orgs.Role
	InvitedBy int64
	// ActorRole is the inviter's role; managers may only invite waiter/kitchen.
	ActorRole orgs.Role
	Limits    plans.Limits
	TTL       time.Duration
}

// Created is returned once; RawToken is never stored.
type Created struct {
	Invitation Invitation
	RawToken   string
}

func Create(db *gorm.DB, in CreateInput, now time.Time) (*Created, error) {
	email := users.NormalizeEmail(in.Email)
	if !orgs.CanAssign(in.ActorRole, in.Role) {
		if in.Role == orgs.RoleOwner || !in.Role.Valid() {
			return nil, ErrInvalidRole
		}
		return nil, orgs.ErrForbiddenRole
	}

	raw, hash, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	var inv Invitation
	err = db.Transaction(func(tx *gorm.DB) error {
		member, err := isMemberByEmail(tx, in.OrgID, email)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyMember
		}

		// an existing pending invite for this email is replaced, not duplicated
		if err := tx.Model(&Invitation{}).
			Where("org_id = ? AND email = ? AND accepted_at IS NULL AND revoked_at IS NULL", in.OrgID, email).
			Update("revoked_at", now).Error; err != nil {
			return err
		}

		used, err := seatsInUse(tx, in.OrgID, now)
		if err != nil {
			return err
		}
		if err := in.Limits.Check(plans.LimitSeats, used); err != nil {
			return ErrSeatLimit
		}

		inv = Invitation{
			OrgID:       in.OrgID,
			Email:       email,
			Role:        in.Role,
			TokenHash:   hash,
			InvitedByID: in.InvitedBy,
			ExpiresAt:   now.Add(in.TTL),
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}

	return &Created{Invitation: inv, RawToken: raw}, nil
}

// seatsInUse counts members plus pending, unexpired invitations.
func seatsInUse(tx *gorm.DB, orgID int64, now time.Time) (int64, error) {
	members, err := orgs.CountMembers(tx, orgID)
	if err != nil {
		return 0, err
	}
	var pending int64
	err = tx.Model(&Invitation{}).
		Where("org_id = ? AND accepted_at IS NULL AND revoked_at IS NULL AND expires_at > ?", orgID, now).
		Count(&pending).Error
	if err != nil {
		return 0, err
	}
	return members + pending, nil
}

func isMemberByEmail(tx *gorm.DB, orgID int64, email string) (bool, error) {
	var n int64
	err := tx.Model(&orgs.Membership{}).
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.org_id = ? AND users.email = ?", orgID, email).
		Count(&n).Error
	return n > 0, err
}

func FindByToken(db *gorm.DB, raw string) (*Invitation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNotFound
	}
	var inv Invitation
	err := db.Preload("Org").Where("token_hash = ?", HashToken(raw)).First(&inv).Error
	if dbx.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

type AcceptInput struct {
	RawToken string
	User     users.User
	// LimitsFor resolves the org's seat limits inside the transaction.
	LimitsFor func(tx *gorm.DB, orgID int64) (plans.Limits, error)
}

// Accept turns a pending invitation into a membership. Everything runs in one
// transaction; the conditional update and the (org_id, user_id) unique index
// keep concurrent accepts from creating two memberships.
func Accept(db *gorm.DB, in AcceptInput, now time.Time) (*orgs.Membership, error) {
	var membership orgs.Membership

	err := db.Transaction(func(tx *gorm.DB) error {
		var inv Invitation
		err := dbx.ForUpdate(tx).Where("token_hash = ?", HashToken(strings.TrimSpace(in.RawToken))).First(&inv).Error
		if dbx.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		switch inv.StatusAt(now) {
		case StatusRevoked:
			return ErrRevoked
		case StatusAccepted:
			return ErrAlreadyAccepted
		case StatusExpired:
			return ErrExpired
		}

		if users.NormalizeEmail(in.User.Email) != inv.Email {
			return ErrEmailMismatch
		}

		if _, err := orgs.FindMembership(tx, inv.OrgID, in.User.ID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, orgs.ErrNotMember) {
			return err
		}

		if in.LimitsFor != nil {
			limits, err := in.LimitsFor(tx, inv.OrgID)
			if err != nil {
				return err
			}
			members, err := orgs.CountMembers(tx, inv.OrgID)
			if err != nil {
				return err
			}
			if err := limits.Check(plans.LimitSeats, members); err != nil {
				return ErrSeatLimit
			}
		}

		res := tx.Model(&Invitation{}).
			Where("id = ? AND accepted_at IS NULL AND revoked_at IS NULL", inv.ID).
			Updates(map[string]any{"accepted_at": now, "accepted_by": in.User.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrAlreadyAccepted
		}

		membership = orgs.Membership{OrgID: inv.OrgID, UserID: in.User.ID, Role: inv.Role}
		if err := tx.Create(&membership).Error; err != nil {
			if dbx.IsUniqueViolation(err) {
				return ErrAlreadyMember
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func Get(db *gorm.DB, orgID, id int64) (*Invitation, error) {
	var inv Invitation
	err := db.Where("org_id = ? AND id = ?", orgID, id).First(&inv).Error
	if dbx.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Revoke marks a pending invitation revoked.
func Revoke(db *gorm.DB, orgID, id int64, now time.Time) error {
	inv, err := Get(db, orgID, id)
	if err != nil {
		return err
	}
	if inv.StatusAt(now) == StatusAccepted || inv.StatusAt(now) == StatusRevoked {
		return ErrNotPending
	}
	return db.Model(inv).Update("revoked_at", now).Error
}

// Resend rotates the token and pushes the expiry out. Expired invites can be resent.
func Resend(db *gorm.DB, orgID, id int64, ttl time.Duration, now time.Time) (*Created, error) {
	inv, err := Get(db, orgID, id)
	if err != nil {
		return nil, err
	}
	if st := inv.StatusAt(now); st == StatusAccepted || st == StatusRevoked {
		return nil, ErrNotPending
	}

	raw, hash, err := GenerateToken()
	if err != nil {
		return nil, err
	}
	inv.TokenHash = hash
	inv.ExpiresAt = now.Add(ttl)
	if err := db.Model(inv).Updates(map[string]any{"token_hash": hash, "expires_at": inv.ExpiresAt}).Error; err != nil {
		return nil, err
	}
	return &Created{Invitation: *inv, RawToken: raw}, nil
}

// List returns invitations of an org filtered by derived status ("" or "all" returns everything).
func List(db *gorm.DB, orgID int64, status Status, now time.Time) ([]Invitation, error) {
	q := db.Where("org_id = ?", orgID)
	switch status {
	case StatusPending:
		q = q.Where("accepted_at IS NULL AND revoked_at IS NULL AND expires_at > ?", now)
	case StatusAccepted:
		q = q.Where("accepted_at IS NOT NULL AND revoked_at IS NULL")
	case StatusRevoked:
		q = q.Where("revoked_at IS NOT NULL")
	case StatusExpired:
		q = q.Where("accepted_at IS NULL AND revoked_at IS NULL AND expires_at <= ?", now)
	}

	var out []Invitation
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Cleanup removes invitations that expired or were revoked before cutoff.
func Cleanup(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("accepted_at IS NULL AND (expires_at < ? OR revoked_at < ?)", cutoff, cutoff).
		Delete(&Invitation{})
	return res.RowsAffected, res.Error
}
