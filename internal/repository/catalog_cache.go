package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clinlix/service-booking/internal/domain/catalog"
)

const (
	catalogCacheTTL     = 10 * time.Minute
	packageKeyPrefix    = "catalog:package:"
	packageListCacheKey = "catalog:packages"
	addonListCacheKey   = "catalog:addons"
)

// CachedCatalogRepository is a Redis read-through cache in front of the
// catalog repository. Catalog rows change rarely and are read on every
// booking, so a short TTL keeps pricing fresh without hitting Postgres per
// request. Cache failures fall back to the inner repository.
type CachedCatalogRepository struct {
	inner  catalog.Repository
	client *redis.Client
	logger *zap.Logger
}

// NewCachedCatalogRepository wraps the given repository with a Redis cache.
func NewCachedCatalogRepository(inner catalog.Repository, client *redis.Client, logger *zap.Logger) *CachedCatalogRepository {
	return &CachedCatalogRepository{inner: inner, client: client, logger: logger}
}

// FindPackageByID retrieves a service package, cache first.
func (r *CachedCatalogRepository) FindPackageByID(ctx context.Context, id uuid.UUID) (*catalog.ServicePackage, error) {
	key := packageKeyPrefix + id.String()

	var pkg catalog.ServicePackage
	if ok := r.get(ctx, key, &pkg); ok {
		return &pkg, nil
	}

	fresh, err := r.inner.FindPackageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, fresh)
	return fresh, nil
}

// FindAddonsByIDs retrieves addons by ID. Per-booking addon sets vary, so
// this path goes straight to the inner repository.
func (r *CachedCatalogRepository) FindAddonsByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Addon, error) {
	return r.inner.FindAddonsByIDs(ctx, ids)
}

// ListPackages retrieves all active packages, cache first.
func (r *CachedCatalogRepository) ListPackages(ctx context.Context) ([]*catalog.ServicePackage, error) {
	var packages []*catalog.ServicePackage
	if ok := r.get(ctx, packageListCacheKey, &packages); ok {
		return packages, nil
	}

	fresh, err := r.inner.ListPackages(ctx)
	if err != nil {
		return nil, err
	}
	r.set(ctx, packageListCacheKey, fresh)
	return fresh, nil
}

// ListAddons retrieves all active addons, cache first.
func (r *CachedCatalogRepository) ListAddons(ctx context.Context) ([]*catalog.Addon, error) {
	var addons []*catalog.Addon
	if ok := r.get(ctx, addonListCacheKey, &addons); ok {
		return addons, nil
	}

	fresh, err := r.inner.ListAddons(ctx)
	if err != nil {
		return nil, err
	}
	r.set(ctx, addonListCacheKey, fresh)
	return fresh, nil
}

func (r *CachedCatalogRepository) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		r.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *CachedCatalogRepository) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("failed to marshal catalog cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, key, data, catalogCacheTTL).Err(); err != nil {
		r.logger.Warn(fmt.Sprintf("catalog cache write failed for %s", key), zap.Error(err))
	}
}
