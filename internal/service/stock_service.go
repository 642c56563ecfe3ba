package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/pkg/applog"
	"go.uber.org/zap"
)

// StockService is the stock ledger: it validates a product and decrements
// its stock inside the caller's transaction, so a failure for any later
// line item rolls the whole reservation back.
type StockService interface {
	Reserve(ctx context.Context, tx pgx.Tx, productID int64, quantity int32) (*domain.Product, error)
}

type stockService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewStockService(productRepo repository.ProductRepository, logger *zap.Logger) StockService {
	return &stockService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *stockService) Reserve(ctx context.Context, tx pgx.Tx, productID int64, quantity int32) (*domain.Product, error) {
	product, err := s.productRepo.GetForUpdate(ctx, tx, productID)
	if err != nil {
		applog.Warn(
			ctx,
			s.logger,
			"Product lookup failed during reservation",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)

		return nil, err
	}

	if !product.Active {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
	}

	if product.StockQuantity < quantity {
		applog.Warn(
			ctx,
			s.logger,
			"Insufficient stock",
			zap.Int64("product_id", productID),
			zap.Int32("requested", quantity),
			zap.Int32("available", product.StockQuantity),
		)

		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
	}

	if err := s.productRepo.DecrementStock(ctx, tx, productID, quantity); err != nil {
		return nil, err
	}

	product.StockQuantity -= quantity

	return product, nil
}
