package menu

import (
	"errors"

	"restaurant-app/internal/infra/dbx"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("menu item not found")
	ErrCategoryTaken    = errors.New("a category with this name already exists")
	ErrCategoryNotEmpty = errors.New("category still has items")
)

func GetCategory(db *gorm.DB, orgID, id int64) (*Category, error) {
	var c Category
	err := db.Where("org_id = ? AND id = ?", orgID, id).First(&c).Error
	if dbx.IsNotFound(err) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func GetItem(db *gorm.DB, orgID, id int64) (*Item, error) {
	var it Item
	err := db.Where("org_id = ? AND id = ?", orgID, id).First(&it).Error
	if dbx.IsNotFound(err) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func CountItems(db *gorm.DB, orgID int64) (int64, error) {
	var n int64
	err := db.Model(&Item{}).Where("org_id = ?", orgID).Count(&n).Error
	return n, err
}

// FullMenu returns all categories of an org with their items, ordered for display.
// publicOnly drops inactive categories and unavailable items.
func FullMenu(db *gorm.DB, orgID int64, publicOnly bool) ([]Category, error) {
	q := db.Where("org_id = ?", orgID)
	if publicOnly {
		q = q.Where("active = ?", true)
	}

	var cats []Category
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		if publicOnly {
			db = db.Where("available = ?", true)
		}
		return db.Order("sort_index ASC, name ASC")
	}).Order("sort_index ASC, name ASC").Find(&cats).Error
	if err != nil {
		return nil, err
	}

	if publicOnly {
		out := cats[:0]
		for _, c := range cats {
			if len(c.Items) > 0 {
				out = append(out, c)
			}
		}
		cats = out
	}
	return cats, nil
}

// ItemsByID loads items of one org keyed by id. Items under an inactive
// category are left out.
func ItemsByID(db *gorm.DB, orgID int64, ids []int64) (map[int64]Item, error) {
	out := make(map[int64]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []Item
	err := db.Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Where("menu_items.org_id = ? AND menu_items.id IN ? AND menu_categories.active = ?", orgID, ids, true).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// Reorder sets sort_index of the given categories to their position in ids.
func Reorder(db *gorm.DB, orgID int64, ids []int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			res := tx.Model(&Category{}).Where("org_id = ? AND id = ?", orgID, id).Update("sort_index", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrCategoryNotFound
			}
		}
		return nil
	})
}
