package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// Repository wires product persistence helpers to a GORM connection.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the product. SKU uniqueness is arbitrated by the unique
// index so concurrent creates with the same SKU cannot both succeed.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads the product regardless of active state.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveBySKU loads an active product by exact SKU match.
func (r *Repository) FindActiveBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "sku = ? AND is_active = ?", sku, true).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SetQuantity replaces the stock level in a single guarded UPDATE. The guard
// keeps writes off inactive rows and the statement itself is the atomicity
// boundary: two concurrent calls serialize at the row lock and the row ends
// at exactly one of the submitted values.
func (r *Repository) SetQuantity(ctx context.Context, id int64, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("quantity", quantity)
	return result.RowsAffected, result.Error
}

// UpdateFields applies a partial update to an active product row.
func (r *Repository) UpdateFields(ctx context.Context, id int64, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// Deactivate soft-deletes the product. Applying it to an already inactive row
// is harmless, so the guard only checks existence.
func (r *Repository) Deactivate(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// SearchActiveByName returns active products whose name contains the term,
// ordered by id so repeated searches are deterministic.
func (r *Repository) SearchActiveByName(ctx context.Context, term string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND name LIKE ?", true, "%"+term+"%").
		Order("id ASC").
		Find(&products).
		Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListActive returns one page of active products ordered by id.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&products).
		Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// CountActive returns the number of active products.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
