package model

import (
	"time"

	"restaurant-app/internal/infra/ids"

	"gorm.io/gorm"
)

// Base is embedded by every table: snowflake id plus timestamps.
type Base struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == 0 {
		b.ID = ids.New()
	}
	return nil
}
