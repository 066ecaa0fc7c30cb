package repo

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/rogerio-castellano/product-catalog/internal/redissvc"
)

const productKeyPrefix = "product:"

// CachedProductRepository is a read-through Redis cache in front of another
// ProductRepository. Cache failures are logged and bypassed.
//
// Every write bumps a per-product generation counter after it reaches the
// backing store. A fill only lands if the counter is unchanged since before
// the backing read.
type CachedProductRepository struct {
	next   ProductRepository
	cache  *redissvc.RedisService
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedProductRepository(next ProductRepository, cache *redissvc.RedisService, ttl time.Duration, logger *slog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func productKey(id int) string {
	return productKeyPrefix + strconv.Itoa(id)
}

func productGenerationKey(id int) string {
	return productKey(id) + ":gen"
}

func (r *CachedProductRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	var p models.Product
	err := r.cache.GetJSON(ctx, productKey(id), &p)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, redissvc.ErrCacheMiss) {
		r.logger.WarnContext(ctx, "product cache read failed",
			slog.Int("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	gen, genErr := r.cache.Generation(ctx, productGenerationKey(id))
	if genErr != nil {
		r.logger.WarnContext(ctx, "product cache generation read failed",
			slog.Int("product_id", id),
			slog.String("error", genErr.Error()),
		)
	}

	p, err = r.next.GetByID(ctx, id)
	if err != nil || genErr != nil {
		return p, err
	}

	stored, err := r.cache.SetJSONIfGeneration(ctx, productKey(id), productGenerationKey(id), gen, p, r.ttl)
	if err != nil {
		r.logger.WarnContext(ctx, "product cache write failed",
			slog.Int("product_id", id),
			slog.String("error", err.Error()),
		)
	} else if !stored {
		r.logger.DebugContext(ctx, "product cache fill skipped after concurrent write", slog.Int("product_id", id))
	}
	return p, nil
}

func (r *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.next.GetAll(ctx)
}

func (r *CachedProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	return r.next.Create(ctx, product)
}

func (r *CachedProductRepository) UpdateIfMatching(ctx context.Context, product models.Product) (UpdateResult, error) {
	res, err := r.next.UpdateIfMatching(ctx, product)
	r.evict(ctx, product.ID)
	return res, err
}

func (r *CachedProductRepository) Remove(ctx context.Context, product models.Product) error {
	err := r.next.Remove(ctx, product)
	r.evict(ctx, product.ID)
	return err
}

func (r *CachedProductRepository) evict(ctx context.Context, id int) {
	if err := r.cache.Invalidate(ctx, productKey(id), productGenerationKey(id)); err != nil {
		r.logger.WarnContext(ctx, "product cache eviction failed",
			slog.Int("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}
