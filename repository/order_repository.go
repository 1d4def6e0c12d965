package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quickbasket/storefront/models"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// CreateFromCart atomically snapshots a session's cart lines, builds an
	// order from them via the supplied callback, persists it, and clears the
	// cart. The whole sequence runs in one transaction.
	CreateFromCart(ctx context.Context, sessionID string, build func(items []models.CartItem) (*models.Order, error)) (*models.Order, error)
	FindByStripeSessionID(ctx context.Context, stripeSessionID string) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	// FindByCartSessionID returns the most recent order materialized from the
	// given cart session.
	FindByCartSessionID(ctx context.Context, cartSessionID string) (*models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetPaymentIntentID(ctx context.Context, id, paymentIntentID string) error
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new instance of GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateFromCart(ctx context.Context, sessionID string, build func(items []models.CartItem) (*models.Order, error)) (*models.Order, error) {
	var order *models.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", sessionID).
			Order("created_at ASC").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		built, err := build(items)
		if err != nil {
			return err
		}

		// Association insert writes order_items in the same transaction.
		if err := tx.Create(built).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateOrder
			}
			return err
		}

		if err := tx.
			Where("session_id = ?", sessionID).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		order = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormOrderRepository) FindByStripeSessionID(ctx context.Context, stripeSessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("stripe_session_id = ?", stripeSessionID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByCartSessionID(ctx context.Context, cartSessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("cart_session_id = ?", cartSessionID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll retrieves all orders with pagination, newest first.
func (r *GormOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("OrderItems").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == models.OrderStatusCancelled {
		updates["cancelled_at"] = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SetPaymentIntentID fills in the payment intent correlation on an order that
// was materialized before the intent id was known.
func (r *GormOrderRepository) SetPaymentIntentID(ctx context.Context, id, paymentIntentID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("stripe_payment_intent_id", paymentIntentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
