package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// cachedProductService is a read-through cache in front of ProductService.
// Only single-product reads are cached; list and search results change too
// often to be worth the invalidation bookkeeping.
type cachedProductService struct {
	next        ProductService
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewCachedProductService(next ProductService, redisClient *redis.Client, cacheTTL time.Duration) ProductService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute * 10
	}

	return &cachedProductService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *cachedProductService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return s.next.Create(ctx, product)
}

func (s *cachedProductService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productCacheKey(id)

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
	}

	product, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		s.redisClient.Set(ctx, key, data, s.cacheTTL)
	}

	return product, nil
}

func (s *cachedProductService) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.next.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.redisClient.Del(ctx, productCacheKey(id))
	return product, nil
}

func (s *cachedProductService) Delete(ctx context.Context, id int64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}

	s.redisClient.Del(ctx, productCacheKey(id))
	return nil
}

func (s *cachedProductService) List(ctx context.Context, filter domain.ProductFilter, limit, offset int64) ([]domain.Product, int64, error) {
	return s.next.List(ctx, filter, limit, offset)
}

func (s *cachedProductService) Search(ctx context.Context, keyword string, limit, offset int64) ([]domain.Product, int64, error) {
	return s.next.Search(ctx, keyword, limit, offset)
}

func (s *cachedProductService) FindLowStock(ctx context.Context, threshold int32) ([]domain.Product, error) {
	return s.next.FindLowStock(ctx, threshold)
}
