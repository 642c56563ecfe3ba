package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/pkg/applog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const orderColumns = `id, user_id, status, total_amount, shipping_cost, tax_amount,
		discount_amount, payment_method, payment_reference, shipping_address,
		tracking_number, created_at, updated_at`

type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error)
	Save(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.OrderStatus) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter *domain.OrderFilter, limit, offset int64) ([]domain.Order, int64, error)
	FindByStatusBetween(ctx context.Context, status domain.OrderStatus, start, end time.Time) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
}

type orderRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/order_repo"),
	}
}

// Create persists the order header and its items inside the caller's
// transaction so a failing item insert aborts the whole aggregate.
func (r *orderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", order.UserID),
		attribute.Int("items_count", len(order.Items)),
	)

	queryOrder := `
		INSERT INTO orders (user_id, status, total_amount, shipping_cost, tax_amount,
			discount_amount, payment_method, payment_reference, shipping_address,
			tracking_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at;
	`

	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.UserID,
		string(order.Status),
		order.TotalAmount,
		order.ShippingCost,
		order.TaxAmount,
		order.DiscountAmount,
		string(order.PaymentMethod),
		order.PaymentReference,
		order.ShippingAddress,
		order.TrackingNumber,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Int64("user_id", order.UserID),
			zap.Error(err),
		)

		return fmt.Errorf("error inserting order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (order_id, product_id, product_name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		if err := tx.QueryRow(
			ctx,
			queryItem,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.Price,
			item.Quantity,
		).Scan(&item.ID); err != nil {
			span.RecordError(err)

			applog.Error(
				ctx,
				r.logger,
				"Failed to insert order item",
				zap.Int64("order_id", order.ID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)

			return fmt.Errorf("error inserting order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1;`, orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to query order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error finding order: %w", err)
	}

	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// GetForUpdate reads an order with a row-level lock so concurrent header
// updates against the same order serialize on the storage engine. Items
// are immutable after creation and read without a lock.
func (r *orderRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 FOR UPDATE;`, orderColumns)

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to lock order row",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error locking order: %w", err)
	}

	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// Save updates the mutable header fields inside the caller's transaction.
// Items are immutable after creation and are not written here.
func (r *orderRepo) Save(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", order.ID),
	)

	query := `
		UPDATE orders
		SET status = $2, total_amount = $3, shipping_cost = $4, tax_amount = $5,
			discount_amount = $6, payment_method = $7, payment_reference = $8,
			shipping_address = $9, tracking_number = $10, updated_at = NOW()
		WHERE id = $1;
	`

	commandTag, err := tx.Exec(
		ctx,
		query,
		order.ID,
		string(order.Status),
		order.TotalAmount,
		order.ShippingCost,
		order.TaxAmount,
		order.DiscountAmount,
		string(order.PaymentMethod),
		order.PaymentReference,
		order.ShippingAddress,
		order.TrackingNumber,
	)
	if err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to update order",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)

		return fmt.Errorf("error updating order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.OrderStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2;
	`

	commandTag, err := tx.Exec(ctx, query, string(status), id)
	if err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating order status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Delete removes the order; order_items go with it via ON DELETE CASCADE.
func (r *orderRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1;`, id)
	if err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to delete order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepo) List(ctx context.Context, filter *domain.OrderFilter, limit, offset int64) ([]domain.Order, int64, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var conditions []string
	var args []interface{}
	argID := 1

	if filter != nil {
		if filter.ID != nil {
			conditions = append(conditions, fmt.Sprintf("id = $%d", argID))
			args = append(args, *filter.ID)
			argID++
		}

		if filter.UserID != nil {
			conditions = append(conditions, fmt.Sprintf("user_id = $%d", argID))
			args = append(args, *filter.UserID)
			argID++
		}

		if filter.Status != nil {
			conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
			args = append(args, string(*filter.Status))
			argID++
		}

		if filter.StartDate != nil {
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argID))
			args = append(args, *filter.StartDate)
			argID++
		}

		if filter.EndDate != nil {
			conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argID))
			args = append(args, *filter.EndDate)
			argID++
		}

		if filter.MinAmount != nil {
			conditions = append(conditions, fmt.Sprintf("total_amount >= $%d", argID))
			args = append(args, *filter.MinAmount)
			argID++
		}

		if filter.MaxAmount != nil {
			conditions = append(conditions, fmt.Sprintf("total_amount <= $%d", argID))
			args = append(args, *filter.MaxAmount)
			argID++
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("error counting orders: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM orders%s ORDER BY id LIMIT $%d OFFSET $%d",
		orderColumns, where, argID, argID+1)
	args = append(args, limit, offset)

	orders, err := r.queryOrders(ctx, span, query, args...)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachItems(ctx, span, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepo) FindByStatusBetween(ctx context.Context, status domain.OrderStatus, start, end time.Time) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.FindByStatusBetween")
	defer span.End()

	span.SetAttributes(
		attribute.String("status", string(status)),
	)

	query := fmt.Sprintf(
		"SELECT %s FROM orders WHERE status = $1 AND created_at BETWEEN $2 AND $3 ORDER BY created_at",
		orderColumns)

	return r.queryOrders(ctx, span, query, string(status), start, end)
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.FindAll")
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM orders ORDER BY id", orderColumns)

	return r.queryOrders(ctx, span, query)
}

func (r *orderRepo) queryOrders(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to query orders",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error querying orders: %w", err)
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning order row: %w", err)
		}

		result = append(result, *order)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

func (r *orderRepo) attachItems(ctx context.Context, span trace.Span, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return err
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return nil
}

func (r *orderRepo) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		applog.Error(
			ctx,
			r.logger,
			"Failed to query order items",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error querying order items: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Price,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("error scanning order item row: %w", err)
		}

		result[item.OrderID] = append(result[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status, paymentMethod string

	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&status,
		&o.TotalAmount,
		&o.ShippingCost,
		&o.TaxAmount,
		&o.DiscountAmount,
		&paymentMethod,
		&o.PaymentReference,
		&o.ShippingAddress,
		&o.TrackingNumber,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	o.PaymentMethod = domain.PaymentMethod(paymentMethod)

	return &o, nil
}
