package orgs

import (
	"errors"
	"strings"
	"time"

	"restaurant-app/internal/infra/dbx"

	"gorm.io/gorm"
)

var (
	ErrNotMember        = errors.New("not a member of this organization")
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrOwnerImmutable   = errors.New("owner role can only change through ownership transfer")
	ErrForbiddenRole    = errors.New("not allowed to manage this role")
	ErrInvalidRole      = errors.New("invalid role")
	ErrSelfTransfer     = errors.New("cannot transfer ownership to yourself")
	ErrOwnerCannotLeave = errors.New("owner must transfer ownership before leaving")
)

type CreateInput struct {
	Name           string
	Slug           string
	Currency       string
	Timezone       string
	Address        string
	WhatsAppNumber string
}

// Create inserts the org and the creator's owner membership in one transaction.
// The org starts a trial of trialDays (0 disables it).
func Create(db *gorm.DB, ownerID int64, in CreateInput, now time.Time, trialDays int) (*Organization, error) {
	var org Organization

	err := db.Transaction(func(tx *gorm.DB) error {
		slug, err := ResolveSlug(tx, in.Name, in.Slug)
		if err != nil {
			return err
		}

		org = Organization{
			Name:           strings.TrimSpace(in.Name),
			Slug:           slug,
			Currency:       normalizeCurrency(in.Currency),
			Timezone:       normalizeTimezone(in.Timezone),
			Address:        strings.TrimSpace(in.Address),
			WhatsAppNumber: NormalizePhone(in.WhatsAppNumber),
		}
		if trialDays > 0 {
			start := now.UTC()
			end := start.AddDate(0, 0, trialDays)
			org.TrialStartAt = &start
			org.TrialEndAt = &end
		}

		if err := tx.Create(&org).Error; err != nil {
			if dbx.IsUniqueViolation(err) {
				return ErrSlugTaken
			}
			return err
		}

		return tx.Create(&Membership{
			OrgID:  org.ID,
			UserID: ownerID,
			Role:   RoleOwner,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func FindMembership(db *gorm.DB, orgID, userID int64) (*Membership, error) {
	var m Membership
	err := db.Where("org_id = ? AND user_id = ?", orgID, userID).First(&m).Error
	if dbx.IsNotFound(err) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func CountMembers(db *gorm.DB, orgID int64) (int64, error) {
	var n int64
	err := db.Model(&Membership{}).Where("org_id = ?", orgID).Count(&n).Error
	return n, err
}

// ChangeRole updates target's role on behalf of actor.
func ChangeRole(db *gorm.DB, orgID int64, actor Role, targetUserID int64, role Role) (*Membership, error) {
	if role == RoleOwner {
		return nil, ErrOwnerImmutable
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var m *Membership
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		m, err = FindMembership(dbx.ForUpdate(tx), orgID, targetUserID)
		if err != nil {
			return err
		}
		if m.Role == RoleOwner {
			return ErrOwnerImmutable
		}
		if !CanManageMember(actor, m.Role) || !CanAssign(actor, role) {
			return ErrForbiddenRole
		}
		m.Role = role
		return tx.Model(m).Update("role", role).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMember deletes target's membership. A non-owner may always remove themselves.
func RemoveMember(db *gorm.DB, orgID int64, actorUserID int64, actor Role, targetUserID int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		m, err := FindMembership(dbx.ForUpdate(tx), orgID, targetUserID)
		if err != nil {
			return err
		}
		if m.Role == RoleOwner {
			if actorUserID == targetUserID {
				return ErrOwnerCannotLeave
			}
			return ErrOwnerImmutable
		}
		if actorUserID != targetUserID && !CanManageMember(actor, m.Role) {
			return ErrForbiddenRole
		}
		return tx.Delete(m).Error
	})
}

// TransferOwnership hands the owner role to another member; the previous owner
// becomes a manager. Both updates commit together so the org never has zero or
// two owners.
func TransferOwnership(db *gorm.DB, orgID, currentOwnerID, newOwnerID int64) error {
	if currentOwnerID == newOwnerID {
		return ErrSelfTransfer
	}

	return db.Transaction(func(tx *gorm.DB) error {
		current, err := FindMembership(dbx.ForUpdate(tx), orgID, currentOwnerID)
		if err != nil {
			return err
		}
		if current.Role != RoleOwner {
			return ErrForbiddenRole
		}

		next, err := FindMembership(dbx.ForUpdate(tx), orgID, newOwnerID)
		if err != nil {
			return err
		}

		if err := tx.Model(current).Update("role", RoleManager).Error; err != nil {
			return err
		}
		return tx.Model(next).Update("role", RoleOwner).Error
	})
}

// OwnerUserID returns the user id of the org's owner.
func OwnerUserID(db *gorm.DB, orgID int64) (int64, error) {
	var m Membership
	if err := db.Where("org_id = ? AND role = ?", orgID, RoleOwner).First(&m).Error; err != nil {
		return 0, err
	}
	return m.UserID, nil
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) != 3 {
		return "EUR"
	}
	return c
}

func normalizeTimezone(tz string) string {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "UTC"
	}
	return tz
}

// NormalizePhone keeps digits only, the format wa.me expects.
func NormalizePhone(p string) string {
	var b strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Location returns the org's time zone, UTC when unknown.
func (o *Organization) Location() *time.Location {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
