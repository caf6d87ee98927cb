package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/repository"
)

// productRepository is a read-through cache over the catalog. Condition
// evaluation looks every cart product up once per condition, so a short
// TTL saves most of the round trips during a scan pass.
type productRepository struct {
	inner repository.ProductRepository
	cache *cache.Cache
}

func NewProductRepository(inner repository.ProductRepository, ttl time.Duration) repository.ProductRepository {
	return &productRepository{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *productRepository) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	key := id.String()
	if cached, found := r.cache.Get(key); found {
		if cached == nil {
			return nil, nil
		}
		return cached.(*model.Product), nil
	}

	product, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Misses are cached too; an unknown product stays unknown for the TTL.
	if product == nil {
		r.cache.Set(key, nil, cache.DefaultExpiration)
		return nil, nil
	}

	r.cache.Set(key, product, cache.DefaultExpiration)
	return product, nil
}
