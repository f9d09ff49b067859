package tables

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"

	"restaurant-app/internal/domain/model"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/infra/dbx"

	"gorm.io/gorm"
)

type Table struct {
	model.Base
	OrgID   int64             `gorm:"not null;uniqueIndex:idx_tables_org_name,priority:1" json:"org_id,string"`
	Org     orgs.Organization `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name    string            `gorm:"not null;uniqueIndex:idx_tables_org_name,priority:2" json:"name"`
	Seats   int               `gorm:"not null;default:2" json:"seats"`
	Area    string            `json:"area,omitempty"`
	Active  bool              `gorm:"not null;default:true" json:"active"`
	QRToken string            `gorm:"not null;uniqueIndex" json:"qr_token"`
}

var (
	ErrNotFound  = errors.New("table not found")
	ErrNameTaken = errors.New("a table with this name already exists")
)

func NewQRToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// QRTargetURL is what the printed QR code points at.
func QRTargetURL(appURL, orgSlug, token string) string {
	return strings.TrimRight(appURL, "/") + "/m/" + url.PathEscape(orgSlug) + "?table=" + url.QueryEscape(token)
}

func Get(db *gorm.DB, orgID, id int64) (*Table, error) {
	var t Table
	err := db.Where("org_id = ? AND id = ?", orgID, id).First(&t).Error
	if dbx.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByToken resolves an active table from its QR token, org preloaded.
func FindByToken(db *gorm.DB, token string) (*Table, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotFound
	}
	var t Table
	err := db.Preload("Org").Where("qr_token = ? AND active = ?", token, true).First(&t).Error
	if dbx.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func Count(db *gorm.DB, orgID int64) (int64, error) {
	var n int64
	err := db.Model(&Table{}).Where("org_id = ?", orgID).Count(&n).Error
	return n, err
}
