package orders

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/orgs"
	"restaurant-app/internal/infra/dbx"

	"gorm.io/gorm"
)

const MaxQuantity = 50

var (
	ErrNotFound    = errors.New("order not found")
	ErrEmptyOrder  = errors.New("order has no items")
	ErrInvalidItem = errors.New("menu item unavailable")
	ErrQuantity    = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	ErrLocked      = errors.New("order no longer accepts items")
	ErrNumberRetry = errors.New("could not allocate order number")
)

type Line struct {
	MenuItemID int64
	Quantity   int
	Note       string
}

type CreateInput struct {
	OrgID        int64
	TableID      *int64
	Source       Source
	CustomerName string
	Note         string
	Lines        []Line
	CreatedByID  *int64
}

// buildItems prices lines from the DB; client prices are never trusted.
func buildItems(tx *gorm.DB, orgID int64, lines []Line) ([]OrderItem, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || l.Quantity > MaxQuantity {
			return nil, ErrQuantity
		}
		ids = append(ids, l.MenuItemID)
	}

	byID, err := menu.ItemsByID(tx, orgID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		mi, ok := byID[l.MenuItemID]
		if !ok || !mi.Available {
			return nil, ErrInvalidItem
		}
		id := mi.ID
		out = append(out, OrderItem{
			MenuItemID:     &id,
			Name:           mi.Name,
			UnitPriceCents: mi.PriceCents,
			Quantity:       l.Quantity,
			Note:           strings.TrimSpace(l.Note),
			LineTotalCents: mi.PriceCents * int64(l.Quantity),
		})
	}
	return out, nil
}

// Create prices and inserts an order. QR orders start pending, POS orders confirmed.
func Create(db *gorm.DB, in CreateInput) (*Order, error) {
	status := StatusPending
	if in.Source == SourcePOS {
		status = StatusConfirmed
	}

	var order Order
	err := db.Transaction(func(tx *gorm.DB) error {
		items, err := buildItems(tx, in.OrgID, in.Lines)
		if err != nil {
			return err
		}

		number, err := nextNumber(tx, in.OrgID)
		if err != nil {
			return err
		}

		order = Order{
			OrgID:        in.OrgID,
			Number:       number,
			TableID:      in.TableID,
			Source:       in.Source,
			Status:       status,
			CustomerName: strings.TrimSpace(in.CustomerName),
			Note:         strings.TrimSpace(in.Note),
			CreatedByID:  in.CreatedByID,
			Items:        items,
		}
		order.RecalcTotals()

		if err := tx.Create(&order).Error; err != nil {
			if dbx.IsUniqueViolation(err) {
				return ErrNumberRetry
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// nextNumber locks the org row (postgres) so concurrent orders get distinct numbers.
func nextNumber(tx *gorm.DB, orgID int64) (int64, error) {
	var org orgs.Organization
	if err := dbx.ForUpdate(tx).Select("id").First(&org, orgID).Error; err != nil {
		return 0, err
	}
	var last sql.NullInt64
	if err := tx.Model(&Order{}).Where("org_id = ?", orgID).Select("MAX(number)").Row().Scan(&last); err != nil {
		return 0, err
	}
	return last.Int64 + 1, nil
}

func Get(db *gorm.DB, orgID, id int64) (*Order, error) {
	var o Order
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Table").
		Where("org_id = ? AND id = ?", orgID, id).First(&o).Error
	if dbx.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID is used by public tracking, where the org is not known upfront.
func GetByID(db *gorm.DB, id int64) (*Order, error) {
	var o Order
	err := db.Preload("Items").Preload("Table").First(&o, id).Error
	if dbx.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

type Filter struct {
	Statuses []Status
	TableID  *int64
	From     *time.Time
	To       *time.Time
	Limit    int
	// OldestFirst is used by the kitchen display.
	OldestFirst bool
}

func List(db *gorm.DB, orgID int64, f Filter) ([]Order, error) {
	q := db.Where("org_id = ?", orgID)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.TableID != nil {
		q = q.Where("table_id = ?", *f.TableID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 200
	}
	order := "created_at DESC"
	if f.OldestFirst {
		order = "created_at ASC"
	}

	var out []Order
	err := q.Preload("Items").Preload("Table").Order(order).Limit(f.Limit).Find(&out).Error
	return out, err
}

// Transition moves the order to next, enforcing the status machine and role rules.
func Transition(db *gorm.DB, orgID, id int64, next Status, role orgs.Role, now time.Time) (*Order, error) {
	var out *Order
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, orgID, id)
		if err != nil {
			return err
		}
		if err := CheckTransition(o, next, role); err != nil {
			return err
		}

		updates := map[string]any{"status": next}
		switch next {
		case StatusCompleted:
			updates["completed_at"] = now
		case StatusCancelled:
			updates["cancelled_at"] = now
		}
		if err := tx.Model(o).Updates(updates).Error; err != nil {
			return err
		}
		out, err = Get(tx, orgID, id)
		return err
	})
	return out, err
}

// AddItems appends lines to an order that has not reached the pass yet.
func AddItems(db *gorm.DB, orgID, id int64, lines []Line) (*Order, error) {
	var out *Order
	err := db.Transaction(func(tx *gorm.DB) error {
		o, err := lockOrder(tx, orgID, id)
		if err != nil {
			return err
		}
		if !acceptsItems(o.Status) {
			return ErrLocked
		}

		items, err := buildItems(tx, orgID, lines)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		full, err := Get(tx, orgID, id)
		if err != nil {
			return err
		}
		full.RecalcTotals()
		if err := tx.Model(full).Updates(map[string]any{
			"subtotal_cents": full.SubtotalCents,
			"total_cents":    full.TotalCents,
			"payment_status": full.PaymentStatus,
		}).Error; err != nil {
			return err
		}
		out = full
		return nil
	})
	return out, err
}

func lockOrder(tx *gorm.DB, orgID, id int64) (*Order, error) {
	var o Order
	err := dbx.ForUpdate(tx).Where("org_id = ? AND id = ?", orgID, id).First(&o).Error
	if dbx.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
