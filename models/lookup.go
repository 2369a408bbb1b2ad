package models

import "time"

// FundCategory represents the fund_categories table
type FundCategory struct {
	CategoryID   int        `gorm:"primaryKey;column:category_id" json:"category_id"`
	CategoryName string     `gorm:"column:category_name" json:"category_name"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// FundSubcategory represents the fund_subcategories table
type FundSubcategory struct {
	SubcategoryID   int        `gorm:"primaryKey;column:subcategory_id" json:"subcategory_id"`
	CategoryID      int        `gorm:"column:category_id" json:"category_id"`
	SubcategoryName string     `gorm:"column:subcategory_name" json:"subcategory_name"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (FundCategory) TableName() string {
	return "fund_categories"
}

func (FundSubcategory) TableName() string {
	return "fund_subcategories"
}

// Lookups is a snapshot of the category/subcategory name tables.
type Lookups struct {
	Categories    map[int]string `json:"categories"`
	Subcategories map[int]string `json:"subcategories"`
}
