package payments

import (
	"restaurant-app/internal/domain/model"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodOther    Method = "other"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodOther:
		return true
	}
	return false
}

type Payment struct {
	model.Base
	OrgID        int64             `gorm:"not null;index" json:"org_id,string"`
	Org          orgs.Organization `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	OrderID      int64             `gorm:"not null;index" json:"order_id,string"`
	Order        orders.Order      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AmountCents  int64             `gorm:"not null" json:"amount_cents"`
	Method       Method            `gorm:"type:varchar(20);not null" json:"method"`
	Reference    string            `json:"reference,omitempty"`
	ReceivedByID *int64            `json:"received_by_id,string,omitempty"`
}
