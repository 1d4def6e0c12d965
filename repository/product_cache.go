package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
)

// CachedProductRepository decorates a ProductRepository with a Redis cache.
// Concurrent misses for the same product are collapsed with singleflight so
// only one request hits the catalog.
type CachedProductRepository struct {
	inner ProductRepository
	redis *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedProductRepository(inner ProductRepository, client *redis.Client, ttl time.Duration) ProductRepository {
	return &CachedProductRepository{
		inner: inner,
		redis: client,
		ttl:   ttl,
	}
}

func (r *CachedProductRepository) cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (r *CachedProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key := r.cacheKey(id)

	data, err := r.redis.Get(ctx, key).Result()
	if err == nil {
		var product models.Product
		if err := json.Unmarshal([]byte(data), &product); err == nil {
			return &product, nil
		}
		// Corrupt entry, fall through to reload
	} else if err != redis.Nil {
		logger.Log.Warn("Redis get failed, falling back to catalog",
			zap.String("key", key), zap.Error(err))
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		product, err := r.inner.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if encoded, err := json.Marshal(product); err == nil {
			if err := r.redis.Set(ctx, key, encoded, r.ttl).Err(); err != nil {
				logger.Log.Warn("Redis set failed", zap.String("key", key), zap.Error(err))
			}
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

// FindAll is not cached; listings are paginated and change with the catalog.
func (r *CachedProductRepository) FindAll(ctx context.Context, category string, page, limit int64) ([]models.Product, int64, error) {
	return r.inner.FindAll(ctx, category, page, limit)
}
