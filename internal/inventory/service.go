package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Service exposes inventory management operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput, createdBy int64) (*ProductDTO, error)
	GetByID(ctx context.Context, id int64) (*ProductDTO, error)
	GetBySKU(ctx context.Context, sku string) (*ProductDTO, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*ProductDTO, error)
	UpdateFields(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error)
	SoftDelete(ctx context.Context, id int64) error
	Search(ctx context.Context, term string) ([]ProductDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	dbClient txRunner
}

// NewService constructs the inventory service.
func NewService(repo *Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// Create validates and inserts a new product. The SKU unique index is the
// arbiter for duplicates, including SKUs held by soft-deleted rows.
func (s *service) Create(ctx context.Context, input CreateProductInput, createdBy int64) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	sku := strings.TrimSpace(input.SKU)

	if len(name) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must be at least 2 characters").
			WithDetails(map[string]any{"field": "name"})
	}
	if len(sku) < 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku must be at least 3 characters").
			WithDetails(map[string]any{"field": "sku"})
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative").
			WithDetails(map[string]any{"field": "quantity"})
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative").
			WithDetails(map[string]any{"field": "price"})
	}

	product := &models.Product{
		Name:        name,
		SKU:         sku,
		Type:        input.Type,
		ImageURL:    input.ImageURL,
		Description: input.Description,
		Quantity:    input.Quantity,
		Price:       input.Price,
		IsActive:    true,
	}
	if createdBy > 0 {
		product.CreatedByID = &createdBy
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, product)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}

	return toProductDTO(product), nil
}

// GetByID returns the active product with the given id. Soft-deleted rows
// read as not found.
func (s *service) GetByID(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductDTO(product), nil
}

// GetBySKU returns the active product with the given SKU.
func (s *service) GetBySKU(ctx context.Context, sku string) (*ProductDTO, error) {
	product, err := s.repo.FindActiveBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return toProductDTO(product), nil
}

// UpdateQuantity sets the stock level to an absolute value. The write is one
// guarded UPDATE, so concurrent calls against the same row serialize at the
// database and the final quantity is always exactly one of the submitted
// values.
func (s *service) UpdateQuantity(ctx context.Context, id int64, quantity int) (*ProductDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative").
			WithDetails(map[string]any{"field": "quantity"})
	}

	affected, err := s.repo.SetQuantity(ctx, id, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating quantity")
	}
	if affected == 0 {
		return nil, s.classifyMissedWrite(ctx, id)
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading product")
	}
	return toProductDTO(product), nil
}

// UpdateFields applies a partial update to the product's descriptive fields.
func (s *service) UpdateFields(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error) {
	updates := map[string]any{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 2 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must be at least 2 characters").
				WithDetails(map[string]any{"field": "name"})
		}
		updates["name"] = name
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative").
				WithDetails(map[string]any{"field": "price"})
		}
		updates["price"] = *input.Price
	}
	if input.Type != nil {
		updates["type"] = nilIfEmpty(*input.Type)
	}
	if input.ImageURL != nil {
		updates["image_url"] = nilIfEmpty(*input.ImageURL)
	}
	if input.Description != nil {
		updates["description"] = nilIfEmpty(*input.Description)
	}

	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.UpdateFields(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	if affected == 0 {
		return nil, s.classifyMissedWrite(ctx, id)
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading product")
	}
	return toProductDTO(product), nil
}

// SoftDelete deactivates the product. Deleting an already inactive product is
// a no-op, not an error. The SKU stays reserved either way.
func (s *service) SoftDelete(ctx context.Context, id int64) error {
	affected, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivating product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// Search returns active products whose name contains the term.
func (s *service) Search(ctx context.Context, term string) ([]ProductDTO, error) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required").
			WithDetails(map[string]any{"field": "q"})
	}

	products, err := s.repo.SearchActiveByName(ctx, trimmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching products")
	}
	return toProductDTOs(products), nil
}

// List returns one page of active products.
func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	perPage := input.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	total, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting products")
	}

	products, err := s.repo.ListActive(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	return &ListResult{
		Items:   toProductDTOs(products),
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}, nil
}

func (s *service) loadActive(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// classifyMissedWrite tells a missing row apart from an inactive one after a
// guarded UPDATE touched nothing.
func (s *service) classifyMissedWrite(ctx context.Context, id int64) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !product.IsActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product is inactive").
			WithDetails(map[string]any{"id": id})
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "update touched no rows")
}

func nilIfEmpty(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
