package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/repository"
)

// CartService implements the session-scoped cart operations. Every mutation
// returns the full reconciled cart so clients can replace their local state
// instead of patching it.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	pricing  PricingPolicy
	cartTTL  time.Duration
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, pricing PricingPolicy, cartTTL time.Duration) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		pricing:  pricing,
		cartTTL:  cartTTL,
	}
}

// GetCart returns the session's cart with a freshly computed summary. A
// session with no lines gets an empty cart, not an error.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	items, err := s.carts.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.assemble(sessionID, items), nil
}

// AddToCart resolves the product, validates stock, and inserts or increments
// the line for (product, variant). Display fields are snapshotted from the
// catalog at this point.
func (s *CartService) AddToCart(ctx context.Context, sessionID, productID, variantID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if variantID != "" && product.Variant(variantID) == nil {
		return nil, ErrVariantNotFound
	}

	if product.TrackStock {
		existing := 0
		if item, err := s.carts.GetItem(ctx, sessionID, productID, variantID); err == nil {
			existing = item.Quantity
		} else if !errors.Is(err, repository.ErrItemNotFound) {
			return nil, err
		}
		if existing+quantity > product.Stock {
			return nil, ErrOutOfStock
		}
	}

	unitPrice := product.UnitPriceCents(variantID)
	currency := product.Currency
	if currency == "" {
		currency = s.pricing.Currency
	}
	now := time.Now()
	item := &models.CartItem{
		SessionID:       sessionID,
		ProductID:       productID,
		VariantID:       variantID,
		Quantity:        quantity,
		ProductName:     product.Name,
		UnitPriceCents:  unitPrice,
		Currency:        currency,
		ImageURL:        product.MainImage(),
		TotalPriceCents: unitPrice * int64(quantity),
		ExpiresAt:       now.Add(s.cartTTL),
	}
	if err := s.carts.Upsert(ctx, item); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, sessionID)
}

// UpdateQuantity replaces a line's quantity. A quantity of zero or less
// removes the line, so setting and removing share one code path.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID, variantID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, sessionID, productID, variantID)
	}

	item, err := s.carts.GetItem(ctx, sessionID, productID, variantID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err == nil && product.TrackStock && quantity > product.Stock {
		return nil, ErrOutOfStock
	}
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return nil, err
	}
	// A product retired from the catalog keeps its snapshot price; the line
	// stays editable until checkout.

	total := item.UnitPriceCents * int64(quantity)
	if err := s.carts.SetQuantity(ctx, sessionID, productID, variantID, quantity, total); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return s.GetCart(ctx, sessionID)
}

// RemoveFromCart deletes a line. Removing an absent line is a no-op so
// repeated deletes converge on the same state.
func (s *CartService) RemoveFromCart(ctx context.Context, sessionID, productID, variantID string) (*models.Cart, error) {
	if err := s.carts.Remove(ctx, sessionID, productID, variantID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, sessionID)
}

// ClearCart empties the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	return s.carts.Clear(ctx, sessionID)
}

// SweepExpired deletes lines past their TTL. Called periodically from main.
func (s *CartService) SweepExpired(ctx context.Context) {
	deleted, err := s.carts.DeleteExpired(ctx, time.Now())
	if err != nil {
		logger.Log.Error("Cart expiry sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Log.Info("Cart expiry sweep", zap.Int64("deleted", deleted))
	}
}

func (s *CartService) assemble(sessionID string, items []models.CartItem) *models.Cart {
	if items == nil {
		items = []models.CartItem{}
	}
	return &models.Cart{
		SessionID: sessionID,
		Items:     items,
		Summary:   s.pricing.ComputeSummary(items, 0),
	}
}
