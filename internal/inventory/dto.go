package inventory

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// ProductDTO is the public projection of an inventory record. in_stock is
// derived from quantity at read time and never stored.
type ProductDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Type        *string   `json:"type,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Description *string   `json:"description,omitempty"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	InStock     bool      `json:"in_stock"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	SKU         string
	Type        *string
	ImageURL    *string
	Description *string
	Quantity    int
	Price       float64
}

// UpdateProductInput holds optional mutation values for a product. SKU and
// quantity are deliberately absent: SKU is immutable and quantity changes go
// through the dedicated quantity operation.
type UpdateProductInput struct {
	Name        *string
	Type        *string
	ImageURL    *string
	Description *string
	Price       *float64
}

// ListInput captures pagination for the product listing.
type ListInput struct {
	Page    int
	PerPage int
}

// ListResult is one page of active products plus paging metadata.
type ListResult struct {
	Items   []ProductDTO `json:"items"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
	Total   int64        `json:"total"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		SKU:         product.SKU,
		Type:        product.Type,
		ImageURL:    product.ImageURL,
		Description: product.Description,
		Quantity:    product.Quantity,
		Price:       product.Price,
		InStock:     product.InStock(),
		IsActive:    product.IsActive,
		CreatedBy:   product.CreatedByID,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func toProductDTOs(products []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *toProductDTO(&products[i]))
	}
	return dtos
}
