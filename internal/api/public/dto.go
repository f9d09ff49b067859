package public

import (
	"time"

	"restaurant-app/internal/domain/menu"
	"restaurant-app/internal/domain/orders"
	"restaurant-app/internal/domain/orgs"
)

type OrgDTO struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Currency    string `json:"currency"`
	Address     string `json:"address,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	CanOrder    bool   `json:"can_order"`
	HasWhatsApp bool   `json:"has_whatsapp"`
}

type ItemDTO struct {
	ID          int64    `json:"id,string"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PriceCents  int64    `json:"price_cents"`
	ImageURL    string   `json:"image_url,omitempty"`
	Tags        []string `json:"tags"`
}

type CategoryDTO struct {
	ID    int64     `json:"id,string"`
	Name  string    `json:"name"`
	Items []ItemDTO `json:"items"`
}

type MenuResponse struct {
	Org        OrgDTO        `json:"org"`
	Categories []CategoryDTO `json:"categories"`
}

type OrderLineDTO struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
	Note           string `json:"note,omitempty"`
}

// OrderStatusResponse is what a guest sees; internal ids stay hidden.
type OrderStatusResponse struct {
	Code          string               `json:"code"`
	Number        int64                `json:"number"`
	Status        orders.Status        `json:"status"`
	PaymentStatus orders.PaymentStatus `json:"payment_status"`
	Table         string               `json:"table,omitempty"`
	Currency      string               `json:"currency"`
	SubtotalCents int64                `json:"subtotal_cents"`
	TotalCents    int64                `json:"total_cents"`
	Items         []OrderLineDTO       `json:"items"`
	CreatedAt     time.Time            `json:"created_at"`
	WhatsAppURL   string               `json:"whatsapp_url,omitempty"`
}

func buildMenu(org *orgs.Organization, canOrder, hasWhatsApp bool, cats []menu.Category) MenuResponse {
	out := MenuResponse{
		Org: OrgDTO{
			Name:        org.Name,
			Slug:        org.Slug,
			Currency:    org.Currency,
			Address:     org.Address,
			LogoURL:     org.LogoURL,
			CanOrder:    canOrder,
			HasWhatsApp: hasWhatsApp,
		},
		Categories: make([]CategoryDTO, 0, len(cats)),
	}
	for _, c := range cats {
		cd := CategoryDTO{ID: c.ID, Name: c.Name, Items: make([]ItemDTO, 0, len(c.Items))}
		for _, it := range c.Items {
			cd.Items = append(cd.Items, ItemDTO{
				ID:          it.ID,
				Name:        it.Name,
				Description: it.Description,
				PriceCents:  it.PriceCents,
				ImageURL:    it.ImageURL,
				Tags:        it.TagList(),
			})
		}
		out.Categories = append(out.Categories, cd)
	}
	return out
}

func buildOrderStatus(code, currency string, o *orders.Order) OrderStatusResponse {
	out := OrderStatusResponse{
		Code:          code,
		Number:        o.Number,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Currency:      currency,
		SubtotalCents: o.SubtotalCents,
		TotalCents:    o.TotalCents,
		Items:         make([]OrderLineDTO, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
	}
	if o.Table != nil {
		out.Table = o.Table.Name
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderLineDTO{
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
			Note:           it.Note,
		})
	}
	return out
}
