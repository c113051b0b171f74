package service

import (
	"context"
	"errors"
	"time"

	"comanda-service/internal/lifecycle"
	"comanda-service/internal/models"
	"comanda-service/internal/redisclient"
	"comanda-service/internal/store"
	"comanda-service/internal/util"

	"go.uber.org/zap"
)

// CachedCatalog is a CatalogReader backed by Postgres with a Redis
// read-through cache. Cache failures degrade to direct store lookups; the
// database stays the source of truth.
type CachedCatalog struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCachedCatalog creates a new cached catalog reader
func NewCachedCatalog(store *store.Store, redis *redisclient.Client) *CachedCatalog {
	return &CachedCatalog{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// LookupProduct resolves a product snapshot, preferring the cache.
// Inactive and unknown products both fail with ErrProductUnavailable:
// neither may enter a cart.
func (c *CachedCatalog) LookupProduct(ctx context.Context, productID int64) (models.ProductSnapshot, error) {
	product, err := c.redis.GetProduct(ctx, productID)
	if err == nil {
		util.CatalogCacheHitsTotal.WithLabelValues("hit").Inc()
		return checkActive(product)
	}
	if !errors.Is(err, redisclient.ErrCacheMiss) {
		c.logger.Warn("Catalog cache read failed, falling back to store",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	util.CatalogCacheHitsTotal.WithLabelValues("miss").Inc()

	product, err = c.store.GetProductByID(ctx, productID)
	if err != nil {
		return models.ProductSnapshot{}, err
	}

	// Synchronous on purpose: a goroutine per cache miss is unbounded
	// under a cold cache, and the lookup already runs outside any
	// session lock so the bounded wait is acceptable.
	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.redis.SetProduct(writeCtx, product); err != nil {
		c.logger.Warn("Catalog cache write failed",
			zap.Int64("product_id", product.ProductID),
			zap.Error(err))
	}

	return checkActive(product)
}

// Menu lists all active products, straight from the store.
func (c *CachedCatalog) Menu(ctx context.Context) ([]models.ProductSnapshot, error) {
	return c.store.GetActiveProducts(ctx)
}

// Invalidate drops a product from the cache after a catalog edit.
func (c *CachedCatalog) Invalidate(ctx context.Context, productID int64) error {
	return c.redis.InvalidateProduct(ctx, productID)
}

// WarmCache preloads every active product into Redis at startup.
func (c *CachedCatalog) WarmCache(ctx context.Context) error {
	products, err := c.store.GetActiveProducts(ctx)
	if err != nil {
		return err
	}

	for _, product := range products {
		if err := c.redis.SetProduct(ctx, product); err != nil {
			c.logger.Warn("Failed to warm product cache",
				zap.Int64("product_id", product.ProductID),
				zap.Error(err))
		}
	}

	c.logger.Info("Catalog cache warmed", zap.Int("count", len(products)))
	return nil
}

func checkActive(product models.ProductSnapshot) (models.ProductSnapshot, error) {
	if !product.Active {
		return models.ProductSnapshot{}, lifecycle.ErrProductUnavailable
	}
	return product, nil
}
