package domain

import "time"

type ItemCategory string

const (
	CategoryCamera ItemCategory = "camera"
	CategoryLight  ItemCategory = "light"
	CategoryCable  ItemCategory = "cable"
	CategoryOther  ItemCategory = "other"
)

// ItemCategories lists every category in display order.
var ItemCategories = []ItemCategory{CategoryCamera, CategoryLight, CategoryCable, CategoryOther}

func (c ItemCategory) Valid() bool {
	for _, known := range ItemCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Item is a stock line of physical equipment. TotalStock never goes negative.
type Item struct {
	ID         int64        `json:"id" gorm:"primaryKey"`
	Name       string       `json:"name" gorm:"not null;index"`
	Category   ItemCategory `json:"category" gorm:"type:varchar(16);not null;index"`
	TotalStock int          `json:"total_stock" gorm:"not null;default:0;check:chk_items_total_stock,total_stock >= 0"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (Item) TableName() string { return "items" }
