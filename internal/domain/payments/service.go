package payments

import (
	"errors"
	"strings"
	"time"

	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/infra/dbx"

	"gorm.io/gorm"
)

var (
	ErrInvalidAmount  = errors.New("amount must be greater than zero")
	ErrOverpayment    = errors.New("amount exceeds outstanding balance")
	ErrInvalidMethod  = errors.New("invalid payment method")
	ErrOrderCancelled = errors.New("cannot pay a cancelled order")
)

type RecordInput struct {
	OrgID        int64
	OrderID      int64
	AmountCents  int64
	Method       Method
	Reference    string
	ReceivedByID *int64
}

// Record stores a payment and updates the order's paid amount in the same transaction.
func Record(db *gorm.DB, in RecordInput) (*Payment, *orders.Order, error) {
	if in.AmountCents <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if !in.Method.Valid() {
		return nil, nil, ErrInvalidMethod
	}

	var (
		payment Payment
		order   orders.Order
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		err := dbx.ForUpdate(tx).Where("org_id = ? AND id = ?", in.OrgID, in.OrderID).First(&order).Error
		if dbx.IsNotFound(err) {
			return orders.ErrNotFound
		}
		if err != nil {
			return err
		}
		if order.Status == orders.StatusCancelled {
			return ErrOrderCancelled
		}
		if in.AmountCents > order.Outstanding() {
			return ErrOverpayment
		}

		payment = Payment{
			OrgID:        in.OrgID,
			OrderID:      order.ID,
			AmountCents:  in.AmountCents,
			Method:       in.Method,
			Reference:    strings.TrimSpace(in.Reference),
			ReceivedByID: in.ReceivedByID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		order.PaidCents += in.AmountCents
		order.PaymentStatus = orders.PaymentStatusFor(order.TotalCents, order.PaidCents)
		return tx.Model(&order).Updates(map[string]any{
			"paid_cents":     order.PaidCents,
			"payment_status": order.PaymentStatus,
		}).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &payment, &order, nil
}

func ListForOrder(db *gorm.DB, orgID, orderID int64) ([]Payment, error) {
	var out []Payment
	err := db.Where("org_id = ? AND order_id = ?", orgID, orderID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func ListForOrg(db *gorm.DB, orgID int64, from, to *time.Time) ([]Payment, error) {
	q := db.Where("org_id = ?", orgID)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}
	var out []Payment
	err := q.Order("created_at DESC").Limit(500).Find(&out).Error
	return out, err
}
