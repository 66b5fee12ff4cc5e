package models

import (
	"time"
)

// Product represents an inventory record. Rows are never physically removed
// through the API: "deleted" products flip is_active and keep their SKU
// reserved. The quantity check mirrors the database-level constraint so the
// invariant also holds under AutoMigrate in tests.
type Product struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;not null;index"`
	SKU         string    `gorm:"column:sku;not null;uniqueIndex:uq_products_sku"`
	Type        *string   `gorm:"column:type"`
	ImageURL    *string   `gorm:"column:image_url"`
	Description *string   `gorm:"column:description"`
	Quantity    int       `gorm:"column:quantity;not null;default:0;check:quantity >= 0"`
	Price       float64   `gorm:"column:price;not null"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedByID *int64    `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether the product has sellable quantity. Derived, never
// stored.
func (p Product) InStock() bool {
	return p.Quantity > 0
}
