package service

import (
	"context"
	"fmt"

	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/pkg/applog"
	"go.uber.org/zap"
)

// ProductService owns catalog maintenance. Stock movements driven by
// orders go through StockService instead.
type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ProductFilter, limit, offset int64) ([]domain.Product, int64, error)
	Search(ctx context.Context, keyword string, limit, offset int64) ([]domain.Product, int64, error)
	FindLowStock(ctx context.Context, threshold int32) ([]domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *productService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidArgument)
	}

	if product.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	}

	if product.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must not be negative", ErrInvalidArgument)
	}

	result, err := s.productRepo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	applog.Info(
		ctx,
		s.logger,
		"Product created",
		zap.Int64("product_id", result.ID),
		zap.String("name", result.Name),
	)

	return result, nil
}

func (s *productService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidArgument)
	}

	if patch.StockQuantity != nil && *patch.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must not be negative", ErrInvalidArgument)
	}

	if err := s.productRepo.Update(ctx, id, &patch); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	applog.Info(
		ctx,
		s.logger,
		"Product deleted",
		zap.Int64("product_id", id),
	)

	return nil
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter, limit, offset int64) ([]domain.Product, int64, error) {
	if limit <= 0 {
		limit = 10
	}

	return s.productRepo.List(ctx, &filter, limit, offset)
}

func (s *productService) Search(ctx context.Context, keyword string, limit, offset int64) ([]domain.Product, int64, error) {
	if limit <= 0 {
		limit = 10
	}

	return s.productRepo.Search(ctx, keyword, limit, offset)
}

func (s *productService) FindLowStock(ctx context.Context, threshold int32) ([]domain.Product, error) {
	if threshold <= 0 {
		threshold = 10
	}

	return s.productRepo.FindLowStock(ctx, threshold)
}
