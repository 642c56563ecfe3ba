package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/kippeer/go-store-api/internal/domain"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProductRepo struct {
	repository.ProductRepository

	products    map[int64]*domain.Product
	decremented map[int64]int32
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{
		products:    make(map[int64]*domain.Product),
		decremented: make(map[int64]int32),
	}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) GetForUpdate(_ context.Context, _ pgx.Tx, id int64) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, _ pgx.Tx, id int64, quantity int32) error {
	product, ok := r.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}

	product.StockQuantity -= quantity
	r.decremented[id] += quantity
	return nil
}

func TestReserve_DecrementsStock(t *testing.T) {
	repo := newFakeProductRepo(&domain.Product{
		ID:            1,
		Name:          "Notebook",
		Price:         decimal.RequireFromString("3500.00"),
		StockQuantity: 5,
		Active:        true,
	})
	stock := NewStockService(repo, zap.NewNop())

	product, err := stock.Reserve(context.Background(), nil, 1, 3)

	require.NoError(t, err)
	assert.Equal(t, int32(2), product.StockQuantity)
	assert.Equal(t, int32(3), repo.decremented[1])

	// 2 left, asking for 4 must fail and leave stock untouched
	_, err = stock.Reserve(context.Background(), nil, 1, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, int32(2), repo.products[1].StockQuantity)
}

func TestReserve_InactiveProduct(t *testing.T) {
	repo := newFakeProductRepo(&domain.Product{
		ID:            2,
		Name:          "Discontinued",
		StockQuantity: 10,
		Active:        false,
	})
	stock := NewStockService(repo, zap.NewNop())

	_, err := stock.Reserve(context.Background(), nil, 2, 1)

	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Empty(t, repo.decremented)
}

func TestReserve_ProductNotFound(t *testing.T) {
	stock := NewStockService(newFakeProductRepo(), zap.NewNop())

	_, err := stock.Reserve(context.Background(), nil, 99, 1)

	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestReserve_ExactStock(t *testing.T) {
	repo := newFakeProductRepo(&domain.Product{
		ID:            3,
		Name:          "Last units",
		StockQuantity: 4,
		Active:        true,
	})
	stock := NewStockService(repo, zap.NewNop())

	product, err := stock.Reserve(context.Background(), nil, 3, 4)

	require.NoError(t, err)
	assert.Equal(t, int32(0), product.StockQuantity)
}
