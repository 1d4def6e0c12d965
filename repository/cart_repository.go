package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quickbasket/storefront/models"
)

// CartRepository defines the interface for cart line data access
type CartRepository interface {
	List(ctx context.Context, sessionID string) ([]models.CartItem, error)
	GetItem(ctx context.Context, sessionID, productID, variantID string) (*models.CartItem, error)
	Upsert(ctx context.Context, item *models.CartItem) error
	SetQuantity(ctx context.Context, sessionID, productID, variantID string, quantity int, totalPriceCents int64) error
	Remove(ctx context.Context, sessionID, productID, variantID string) error
	Clear(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new instance of GormCartRepository
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

// List retrieves all cart lines for a session, oldest first.
func (r *GormCartRepository) List(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem retrieves a single cart line by its natural key.
func (r *GormCartRepository) GetItem(ctx context.Context, sessionID, productID, variantID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ? AND variant_id = ?", sessionID, productID, variantID).
		First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Upsert inserts a cart line, or adds its quantity to the existing line for
// the same (session, product, variant) key. The price snapshot is refreshed
// from the incoming row so a stale line picks up the current catalog price.
func (r *GormCartRepository) Upsert(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "product_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":          gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"unit_price_cents":  gorm.Expr("EXCLUDED.unit_price_cents"),
			"total_price_cents": gorm.Expr("(cart_items.quantity + EXCLUDED.quantity) * EXCLUDED.unit_price_cents"),
			"product_name":      gorm.Expr("EXCLUDED.product_name"),
			"image_url":         gorm.Expr("EXCLUDED.image_url"),
			"expires_at":        gorm.Expr("EXCLUDED.expires_at"),
			"updated_at":        gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(item).Error
}

// SetQuantity replaces the quantity of an existing line.
func (r *GormCartRepository) SetQuantity(ctx context.Context, sessionID, productID, variantID string, quantity int, totalPriceCents int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("session_id = ? AND product_id = ? AND variant_id = ?", sessionID, productID, variantID).
		Updates(map[string]interface{}{
			"quantity":          quantity,
			"total_price_cents": totalPriceCents,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Remove deletes a cart line. Removing a line that does not exist is a no-op.
func (r *GormCartRepository) Remove(ctx context.Context, sessionID, productID, variantID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ? AND variant_id = ?", sessionID, productID, variantID).
		Delete(&models.CartItem{}).Error
}

// Clear deletes all cart lines for a session.
func (r *GormCartRepository) Clear(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.CartItem{}).Error
}

// DeleteExpired removes cart lines whose TTL has elapsed and reports how many
// rows were deleted.
func (r *GormCartRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
