package reports

import (
	"sort"
	"time"

	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/payments"

	"gorm.io/gorm"
)

const topItemsLimit = 10

type DaySales struct {
	Date       string `json:"date"`
	Orders     int64  `json:"orders"`
	GrossCents int64  `json:"gross_cents"`
}

type ItemSales struct {
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	GrossCents int64  `json:"gross_cents"`
}

type Sales struct {
	From            time.Time        `json:"from"`
	To              time.Time        `json:"to"`
	Orders          int64            `json:"orders"`
	Completed       int64            `json:"completed"`
	Cancelled       int64            `json:"cancelled"`
	GrossCents      int64            `json:"gross_cents"`
	CollectedCents  int64            `json:"collected_cents"`
	AverageTicket   int64            `json:"average_ticket_cents"`
	ByPaymentMethod map[string]int64 `json:"by_payment_method"`
	BySource        map[string]int64 `json:"by_source"`
	ByDay           []DaySales       `json:"by_day"`
	TopItems        []ItemSales      `json:"top_items"`
}

// SalesReport aggregates orders and payments of [from, to) in Go so it runs
// the same on every dialect. Days are bucketed in loc.
func SalesReport(db *gorm.DB, orgID int64, from, to time.Time, loc *time.Location) (*Sales, error) {
	var ords []orders.Order
	err := db.Preload("Items").
		Where("org_id = ? AND created_at >= ? AND created_at < ?", orgID, from, to).
		Find(&ords).Error
	if err != nil {
		return nil, err
	}

	var pays []payments.Payment
	err = db.Where("org_id = ? AND created_at >= ? AND created_at < ?", orgID, from, to).
		Find(&pays).Error
	if err != nil {
		return nil, err
	}

	return aggregate(ords, pays, from, to, loc), nil
}

func aggregate(ords []orders.Order, pays []payments.Payment, from, to time.Time, loc *time.Location) *Sales {
	if loc == nil {
		loc = time.UTC
	}
	s := &Sales{
		From:            from,
		To:              to,
		ByPaymentMethod: map[string]int64{},
		BySource:        map[string]int64{},
		ByDay:           []DaySales{},
		TopItems:        []ItemSales{},
	}

	days := map[string]*DaySales{}
	items := map[string]*ItemSales{}
	var counted int64

	for _, o := range ords {
		s.Orders++
		switch o.Status {
		case orders.StatusCompleted:
			s.Completed++
		case orders.StatusCancelled:
			s.Cancelled++
			continue
		}

		counted++
		s.GrossCents += o.TotalCents
		s.BySource[string(o.Source)] += o.TotalCents

		key := o.CreatedAt.In(loc).Format("2006-01-02")
		d := days[key]
		if d == nil {
			d = &DaySales{Date: key}
			days[key] = d
		}
		d.Orders++
		d.GrossCents += o.TotalCents

		for _, it := range o.Items {
			is := items[it.Name]
			if is == nil {
				is = &ItemSales{Name: it.Name}
				items[it.Name] = is
			}
			is.Quantity += int64(it.Quantity)
			is.GrossCents += it.LineTotalCents
		}
	}

	for _, p := range pays {
		s.CollectedCents += p.AmountCents
		s.ByPaymentMethod[string(p.Method)] += p.AmountCents
	}

	if counted > 0 {
		s.AverageTicket = s.GrossCents / counted
	}

	for _, d := range days {
		s.ByDay = append(s.ByDay, *d)
	}
	sort.Slice(s.ByDay, func(i, j int) bool { return s.ByDay[i].Date < s.ByDay[j].Date })

	for _, is := range items {
		s.TopItems = append(s.TopItems, *is)
	}
	sort.Slice(s.TopItems, func(i, j int) bool {
		if s.TopItems[i].Quantity != s.TopItems[j].Quantity {
			return s.TopItems[i].Quantity > s.TopItems[j].Quantity
		}
		return s.TopItems[i].Name < s.TopItems[j].Name
	})
	if len(s.TopItems) > topItemsLimit {
		s.TopItems = s.TopItems[:topItemsLimit]
	}

	return s
}

// ParseRange reads YYYY-MM-DD bounds in loc; to is inclusive of that day.
// Defaults to the last 30 days.
func ParseRange(fromStr, toStr string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)

	to := today.AddDate(0, 0, 1)
	if toStr != "" {
		t, err := time.ParseInLocation("2006-01-02", toStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t.AddDate(0, 0, 1)
	}

	from := to.AddDate(0, 0, -30)
	if fromStr != "" {
		f, err := time.ParseInLocation("2006-01-02", fromStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = f
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return from, to, nil
}
