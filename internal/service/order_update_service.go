package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/pkg/applog"
	"go.uber.org/zap"
)

// OrderUpdateService applies a partial header update to an existing order.
// Line items are never touched here; the total is recomputed from the
// stored items plus the patched monetary fields.
type OrderUpdateService interface {
	UpdateOrder(ctx context.Context, principal domain.Principal, orderID int64, patch domain.OrderPatch) (*domain.Order, error)
}

type orderUpdateService struct {
	pool      *pgxpool.Pool
	orderRepo repository.OrderRepository
	authz     AuthorizationService
	logger    *zap.Logger
}

func NewOrderUpdateService(pool *pgxpool.Pool, orderRepo repository.OrderRepository, authz AuthorizationService, logger *zap.Logger) OrderUpdateService {
	return &orderUpdateService{
		pool:      pool,
		orderRepo: orderRepo,
		authz:     authz,
		logger:    logger,
	}
}

func (s *orderUpdateService) UpdateOrder(ctx context.Context, principal domain.Principal, orderID int64, patch domain.OrderPatch) (*domain.Order, error) {
	user, err := s.authz.CurrentUser(ctx, principal)
	if err != nil {
		return nil, err
	}

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

	// Lock the row so the patch applies on top of the latest committed
	// header, not a stale read that Save would then clobber.
	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		applog.Warn(
			ctx,
			s.logger,
			"Order not found for update",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return nil, err
	}

	if err := s.authz.CheckUpdatePermission(user, order); err != nil {
		return nil, err
	}

	if err := applyOrderPatch(order, patch); err != nil {
		return nil, err
	}

	order.RecalculateTotal()

	if err := s.orderRepo.Save(ctx, tx, order); err != nil {
		applog.Error(
			ctx,
			s.logger,
			"Failed to save order",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return nil, err
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
		"Order updated",
		zap.Int64("order_id", orderID),
	)

	return order, nil
}

func applyOrderPatch(order *domain.Order, patch domain.OrderPatch) error {
	if patch.Status != nil {
		status, err := domain.ParseOrderStatus(*patch.Status)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		order.Status = status
	}

	if patch.PaymentMethod != nil {
		method, err := domain.ParsePaymentMethod(*patch.PaymentMethod)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		order.PaymentMethod = method
	}

	if patch.PaymentReference != nil {
		order.PaymentReference = *patch.PaymentReference
	}

	if patch.ShippingAddress != nil {
		order.ShippingAddress = *patch.ShippingAddress
	}

	if patch.ShippingCost != nil {
		order.ShippingCost = *patch.ShippingCost
	}

	if patch.TaxAmount != nil {
		order.TaxAmount = *patch.TaxAmount
	}

	if patch.DiscountAmount != nil {
		order.DiscountAmount = *patch.DiscountAmount
	}

	if patch.TrackingNumber != nil {
		order.TrackingNumber = *patch.TrackingNumber
	}

	return nil
}
