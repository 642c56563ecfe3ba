package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/pkg/applog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const productColumns = `id, name, description, category, price, stock_quantity, active, created_at, updated_at`

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error
	Update(ctx context.Context, id int64, patch *domain.ProductPatch) error
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context, filter *domain.ProductFilter, limit, offset int64) ([]domain.Product, int64, error)
	Search(ctx context.Context, keyword string, limit, offset int64) ([]domain.Product, int64, error)
	FindLowStock(ctx context.Context, threshold int32) ([]domain.Product, error)
}

type productRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/product_repo"),
	}
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", product.Name),
	)

	query := `
		INSERT INTO products (name, description, category, price, stock_quantity, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at;
	`

	if err := r.pool.QueryRow(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.StockQuantity,
		product.Active,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt); err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to insert product",
			zap.String("name", product.Name),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating product: %w", err)
	}

	return product, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", id),
	)

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1;`, productColumns)

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to query product",
			zap.Int64("product_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error finding product: %w", err)
	}

	return product, nil
}

// GetForUpdate reads a product row with a row-level lock so concurrent
// reservations against the same product serialize on the storage engine.
func (r *productRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", id),
	)

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 FOR UPDATE;`, productColumns)

	product, err := scanProduct(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to lock product row",
			zap.Int64("product_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error locking product: %w", err)
	}

	return product, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DecrementStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", id),
		attribute.Int("quantity", int(quantity)),
	)

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1;
	`

	commandTag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to decrement stock",
			zap.Int64("product_id", id),
			zap.Int32("quantity", quantity),
			zap.Error(err),
		)

		return fmt.Errorf("error decrementing stock for product %d: %w", id, err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) Update(ctx context.Context, id int64, patch *domain.ProductPatch) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", id),
	)

	var updates []string
	var args []interface{}
	argID := 1

	if patch.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argID))
		args = append(args, *patch.Name)
		argID++
	}

	if patch.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argID))
		args = append(args, *patch.Description)
		argID++
	}

	if patch.Category != nil {
		updates = append(updates, fmt.Sprintf("category = $%d", argID))
		args = append(args, *patch.Category)
		argID++
	}

	if patch.Price != nil {
		updates = append(updates, fmt.Sprintf("price = $%d", argID))
		args = append(args, *patch.Price)
		argID++
	}

	if patch.StockQuantity != nil {
		updates = append(updates, fmt.Sprintf("stock_quantity = $%d", argID))
		args = append(args, *patch.StockQuantity)
		argID++
	}

	if patch.Active != nil {
		updates = append(updates, fmt.Sprintf("active = $%d", argID))
		args = append(args, *patch.Active)
		argID++
	}

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, "updated_at = NOW()")

	query := "UPDATE products SET " + strings.Join(updates, ", ") +
		fmt.Sprintf(" WHERE id = $%d", argID)
	args = append(args, id)

	commandTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to update product",
			zap.Int64("product_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", id),
	)

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to delete product",
			zap.Int64("product_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) List(ctx context.Context, filter *domain.ProductFilter, limit, offset int64) ([]domain.Product, int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	var conditions []string
	var args []interface{}
	argID := 1

	if filter != nil {
		if filter.Category != nil {
			conditions = append(conditions, fmt.Sprintf("LOWER(category) = LOWER($%d)", argID))
			args = append(args, *filter.Category)
			argID++
		}

		if filter.Description != nil {
			conditions = append(conditions, fmt.Sprintf("description ILIKE '%%' || $%d || '%%'", argID))
			args = append(args, *filter.Description)
			argID++
		}

		if filter.MinPrice != nil {
			conditions = append(conditions, fmt.Sprintf("price >= $%d", argID))
			args = append(args, *filter.MinPrice)
			argID++
		}

		if filter.MaxPrice != nil {
			conditions = append(conditions, fmt.Sprintf("price <= $%d", argID))
			args = append(args, *filter.MaxPrice)
			argID++
		}

		if filter.Active != nil {
			conditions = append(conditions, fmt.Sprintf("active = $%d", argID))
			args = append(args, *filter.Active)
			argID++
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM products" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("error counting products: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY id LIMIT $%d OFFSET $%d",
		productColumns, where, argID, argID+1)
	args = append(args, limit, offset)

	products, err := r.queryProducts(ctx, span, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepo) Search(ctx context.Context, keyword string, limit, offset int64) ([]domain.Product, int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Search")
	defer span.End()

	span.SetAttributes(
		attribute.String("keyword", keyword),
	)

	where := ` WHERE name ILIKE '%' || $1 || '%'
		OR description ILIKE '%' || $1 || '%'
		OR category ILIKE '%' || $1 || '%'`

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products"+where, keyword).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("error counting products: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY id LIMIT $2 OFFSET $3", productColumns, where)

	products, err := r.queryProducts(ctx, span, query, keyword, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepo) FindLowStock(ctx context.Context, threshold int32) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindLowStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int("threshold", int(threshold)),
	)

	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE stock_quantity <= $1 AND active = true ORDER BY stock_quantity",
		productColumns)

	return r.queryProducts(ctx, span, query, threshold)
}

func (r *productRepo) queryProducts(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		applog.Error(
			ctx,
			r.logger,
			"Failed to query products",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error querying products: %w", err)
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning product row: %w", err)
		}

		result = append(result, *product)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.StockQuantity,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}
