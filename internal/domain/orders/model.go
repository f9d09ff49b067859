package orders

import (
	"time"

	"restaurant-app/internal/domain/model"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/domain/tables"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Source string

const (
	SourceQR  Source = "qr"
	SourcePOS Source = "pos"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

type Order struct {
	model.Base
	OrgID         int64             `gorm:"not null;uniqueIndex:idx_orders_org_number,priority:1;index:idx_orders_org_status,priority:1" json:"org_id,string"`
	Org           orgs.Organization `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Number        int64             `gorm:"not null;uniqueIndex:idx_orders_org_number,priority:2" json:"number"`
	TableID       *int64            `gorm:"index" json:"table_id,string,omitempty"`
	Table         *tables.Table     `gorm:"constraint:OnDelete:SET NULL" json:"table,omitempty"`
	Source        Source            `gorm:"type:varchar(10);not null" json:"source"`
	Status        Status            `gorm:"type:varchar(20);not null;index:idx_orders_org_status,priority:2" json:"status"`
	CustomerName  string            `json:"customer_name,omitempty"`
	Note          string            `json:"note,omitempty"`
	SubtotalCents int64             `gorm:"not null;default:0" json:"subtotal_cents"`
	TotalCents    int64             `gorm:"not null;default:0" json:"total_cents"`
	PaidCents     int64             `gorm:"not null;default:0" json:"paid_cents"`
	PaymentStatus PaymentStatus     `gorm:"type:varchar(10);not null;default:'unpaid'" json:"payment_status"`
	CreatedByID   *int64            `json:"created_by_id,string,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	Items         []OrderItem       `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	model.Base
	OrderID        int64  `gorm:"not null;index" json:"order_id,string"`
	MenuItemID     *int64 `json:"menu_item_id,string,omitempty"`
	Name           string `gorm:"not null" json:"name"`
	UnitPriceCents int64  `gorm:"not null" json:"unit_price_cents"`
	Quantity       int    `gorm:"not null" json:"quantity"`
	Note           string `json:"note,omitempty"`
	LineTotalCents int64  `gorm:"not null" json:"line_total_cents"`
}

func (o *Order) Outstanding() int64 {
	if o.TotalCents <= o.PaidCents {
		return 0
	}
	return o.TotalCents - o.PaidCents
}

// RecalcTotals recomputes subtotal/total from items and the payment status from paid cents.
func (o *Order) RecalcTotals() {
	var sub int64
	for i := range o.Items {
		it := &o.Items[i]
		it.LineTotalCents = it.UnitPriceCents * int64(it.Quantity)
		sub += it.LineTotalCents
	}
	o.SubtotalCents = sub
	o.TotalCents = sub
	o.PaymentStatus = PaymentStatusFor(o.TotalCents, o.PaidCents)
}

func PaymentStatusFor(total, paid int64) PaymentStatus {
	switch {
	case paid <= 0:
		if total == 0 {
			return PaymentPaid
		}
		return PaymentUnpaid
	case paid >= total:
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

func (o *Order) Active() bool {
	return o.Status != StatusCompleted && o.Status != StatusCancelled
}
