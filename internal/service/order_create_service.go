package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/pkg/applog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateOrderItemInput struct {
	ProductID int64
	Quantity  int32
}

type CreateOrderInput struct {
	ShippingAddress  string
	ShippingCost     *decimal.Decimal
	TaxAmount        *decimal.Decimal
	DiscountAmount   *decimal.Decimal
	PaymentMethod    *string
	PaymentReference *string
	TrackingNumber   *string
	Items            []CreateOrderItemInput
}

// OrderCreationService assembles an order aggregate from a request,
// reserving stock per line item and persisting everything atomically.
type OrderCreationService interface {
	CreateOrder(ctx context.Context, principal domain.Principal, input CreateOrderInput) (*domain.Order, error)
}

type orderCreationService struct {
	pool      *pgxpool.Pool
	orderRepo repository.OrderRepository
	stock     StockService
	authz     AuthorizationService
	logger    *zap.Logger
}

func NewOrderCreationService(
	pool *pgxpool.Pool,
	orderRepo repository.OrderRepository,
	stock StockService,
	authz AuthorizationService,
	logger *zap.Logger,
) OrderCreationService {
	return &orderCreationService{
		pool:      pool,
		orderRepo: orderRepo,
		stock:     stock,
		authz:     authz,
		logger:    logger,
	}
}

func (s *orderCreationService) CreateOrder(ctx context.Context, principal domain.Principal, input CreateOrderInput) (*domain.Order, error) {
	order, err := s.initializeOrder(input)
	if err != nil {
		return nil, err
	}

	user, err := s.authz.CurrentUser(ctx, principal)
	if err != nil {
		return nil, err
	}
	order.UserID = user.ID

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		applog.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(cleanupCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			applog.Warn(
				cleanupCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	items, err := s.assembleItems(ctx, tx, input.Items)
	if err != nil {
		return nil, err
	}

	order.Items = items
	order.RecalculateTotal()

	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		applog.Error(
			ctx,
			s.logger,
			"Failed to create order",
			zap.Int64("user_id", order.UserID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		applog.Error(
			ctx,
			s.logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	applog.Info(
		ctx,
		s.logger,
		"Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.Int("items_count", len(order.Items)),
	)

	return order, nil
}

func (s *orderCreationService) initializeOrder(input CreateOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, fmt.Errorf("%w: shipping address is required", ErrInvalidArgument)
	}

	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", ErrInvalidArgument)
	}

	for _, item := range input.Items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("%w: item product id is required", ErrInvalidArgument)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", ErrInvalidArgument)
		}
	}

	order := &domain.Order{
		Status:          domain.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
		ShippingCost:    decimal.Zero,
		TaxAmount:       decimal.Zero,
		DiscountAmount:  decimal.Zero,
	}

	if input.ShippingCost != nil {
		order.ShippingCost = *input.ShippingCost
	}
	if input.TaxAmount != nil {
		order.TaxAmount = *input.TaxAmount
	}
	if input.DiscountAmount != nil {
		order.DiscountAmount = *input.DiscountAmount
	}
	if input.PaymentReference != nil {
		order.PaymentReference = *input.PaymentReference
	}
	if input.TrackingNumber != nil {
		order.TrackingNumber = *input.TrackingNumber
	}

	if input.PaymentMethod != nil {
		method, err := domain.ParsePaymentMethod(*input.PaymentMethod)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		order.PaymentMethod = method
	}

	return order, nil
}

// assembleItems reserves stock per line item and captures the product's
// current price and name. Client-supplied prices are never trusted.
func (s *orderCreationService) assembleItems(ctx context.Context, tx pgx.Tx, inputs []CreateOrderItemInput) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(inputs))

	for _, in := range inputs {
		product, err := s.stock.Reserve(ctx, tx, in.ProductID, in.Quantity)
		if err != nil {
			return nil, err
		}

		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    in.Quantity,
		})
	}

	return items, nil
}
