package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	productSlugKeyPrefix = "catalog:product:slug:"
	productIDKeyPrefix   = "catalog:product:id:"
	categoriesKey        = "catalog:categories"
)

/*
CacheAsideCatalogRepo caches product detail and the category list.
Cache errors never fail a read, the database stays the source of truth.
Stock shown on a cached product may lag by at most ttl; cart and checkout always read variants from the database.
*/
type CacheAsideCatalogRepo struct {
	db.ICatalogRepository
	cache  ICache
	ttl    time.Duration
	group  singleflight.Group
	logger *zerolog.Logger
}

func NewCacheAsideCatalogRepo(repo db.ICatalogRepository, cache ICache, ttl time.Duration, logger *zerolog.Logger) *CacheAsideCatalogRepo {
	if repo == nil {
		panic("NewCacheAsideCatalogRepo: catalog repository cannot be nil")
	}
	if cache == nil {
		panic("NewCacheAsideCatalogRepo: cache cannot be nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CacheAsideCatalogRepo{ICatalogRepository: repo, cache: cache, ttl: ttl, logger: logger}
}

func (r *CacheAsideCatalogRepo) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	key := productSlugKeyPrefix + slug
	var product model.Product
	if r.readCache(ctx, key, &product) {
		return &product, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		p, err := r.ICatalogRepository.GetProductBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		r.writeCache(ctx, key, p)
		r.writeRaw(ctx, productIDKeyPrefix+strconv.FormatUint(uint64(p.ID), 10), []byte(slug))
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Product), nil
}

func (r *CacheAsideCatalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if r.readCache(ctx, categoriesKey, &categories) {
		return categories, nil
	}

	v, err, _ := r.group.Do(categoriesKey, func() (any, error) {
		c, err := r.ICatalogRepository.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		r.writeCache(ctx, categoriesKey, c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Category), nil
}

func (r *CacheAsideCatalogRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := r.ICatalogRepository.CreateCategory(ctx, category); err != nil {
		return err
	}
	r.evict(ctx, categoriesKey)
	return nil
}

// UpdateProductPrice writes through to the database, then evicts the cached detail.
func (r *CacheAsideCatalogRepo) UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) error {
	if err := r.ICatalogRepository.UpdateProductPrice(ctx, productID, price); err != nil {
		return err
	}
	idKey := productIDKeyPrefix + strconv.FormatUint(uint64(productID), 10)
	slug, err := r.cache.Get(ctx, idKey)
	if err != nil {
		return nil
	}
	r.evict(ctx, productSlugKeyPrefix+string(slug), idKey)
	return nil
}

func (r *CacheAsideCatalogRepo) readCache(ctx context.Context, key string, dst any) bool {
	b, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("catalog cache entry corrupt")
		r.evict(ctx, key)
		return false
	}
	return true
}

func (r *CacheAsideCatalogRepo) writeCache(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("catalog cache encode failed")
		return
	}
	r.writeRaw(ctx, key, b)
}

func (r *CacheAsideCatalogRepo) writeRaw(ctx context.Context, key string, b []byte) {
	if err := r.cache.Set(ctx, key, b, r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func (r *CacheAsideCatalogRepo) evict(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn().Err(fmt.Errorf("evict %v: %w", keys, err)).Msg("catalog cache evict failed")
	}
}

var _ db.ICatalogRepository = (*CacheAsideCatalogRepo)(nil)
