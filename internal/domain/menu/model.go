package menu

import (
	"strings"

	"restaurant-app/internal/domain/model"
	"restaurant-app/internal/domain/orgs"
)

type Category struct {
	model.Base
	OrgID     int64             `gorm:"not null;uniqueIndex:idx_menu_categories_org_name,priority:1" json:"org_id,string"`
	Org       orgs.Organization `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name      string            `gorm:"not null;uniqueIndex:idx_menu_categories_org_name,priority:2" json:"name"`
	SortIndex int               `gorm:"not null;default:0" json:"sort_index"`
	Active    bool              `gorm:"not null;default:true" json:"active"`
	Items     []Item            `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

func (Category) TableName() string { return "menu_categories" }

type Item struct {
	model.Base
	OrgID       int64    `gorm:"not null;index" json:"org_id,string"`
	CategoryID  int64    `gorm:"not null;index" json:"category_id,string"`
	Category    Category `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string   `gorm:"not null" json:"name"`
	Description string   `json:"description,omitempty"`
	PriceCents  int64    `gorm:"not null" json:"price_cents"`
	ImageURL    string   `json:"image_url,omitempty"`
	Available   bool     `gorm:"not null;default:true" json:"available"`
	SortIndex   int      `gorm:"not null;default:0" json:"sort_index"`
	// comma separated, e.g. "vegan,spicy"
	Tags string `json:"-"`
}

func (Item) TableName() string { return "menu_items" }

func (i Item) TagList() []string {
	if strings.TrimSpace(i.Tags) == "" {
		return []string{}
	}
	parts := strings.Split(i.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func JoinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || strings.Contains(t, ",") || seen[t] {
			continue
		}
		seen[t] = true
		clean = append(clean, t)
	}
	return strings.Join(clean, ",")
}
