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

// OrderStatusService validates and applies order status transitions under
// role-based rules. Admins may set any status; owners may only move their
// own orders along the permitted edges.
type OrderStatusService interface {
	UpdateStatus(ctx context.Context, principal domain.Principal, orderID int64, newStatus domain.OrderStatus) (*domain.Order, error)
}

type orderStatusService struct {
	pool      *pgxpool.Pool
	orderRepo repository.OrderRepository
	authz     AuthorizationService
	logger    *zap.Logger
}

func NewOrderStatusService(pool *pgxpool.Pool, orderRepo repository.OrderRepository, authz AuthorizationService, logger *zap.Logger) OrderStatusService {
	return &orderStatusService{
		pool:      pool,
		orderRepo: orderRepo,
		authz:     authz,
		logger:    logger,
	}
}

func (s *orderStatusService) UpdateStatus(ctx context.Context, principal domain.Principal, orderID int64, newStatus domain.OrderStatus) (*domain.Order, error) {
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

	// The transition check must run against the current status, so the
	// read takes a row lock and the write lands in the same transaction.
	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		applog.Warn(
			ctx,
			s.logger,
			"Order not found for status update",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return nil, err
	}

	if err := validateStatusChange(order, newStatus, user); err != nil {
		applog.Warn(
			ctx,
			s.logger,
			"Status change rejected",
			zap.Int64("order_id", orderID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(newStatus)),
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)

		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, tx, orderID, newStatus); err != nil {
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

	order.Status = newStatus

	applog.Info(
		ctx,
		s.logger,
		"Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", string(newStatus)),
	)

	return order, nil
}

// validateStatusChange enforces the transition rules. Admins bypass the
// state graph entirely and may set any status.
func validateStatusChange(order *domain.Order, newStatus domain.OrderStatus, user *domain.User) error {
	if user.IsAdmin() {
		return nil
	}

	if order.UserID != user.ID {
		return ErrOrderAccessDenied
	}

	switch newStatus {
	case domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusRefunded:
		return fmt.Errorf("%w: status %s is reserved for administrators", ErrOrderAccessDenied, newStatus)
	}

	if newStatus == domain.OrderStatusCancelled && order.Status != domain.OrderStatusPending {
		return fmt.Errorf("%w: only pending orders can be cancelled", ErrInvalidStatusTransition)
	}

	return nil
}
