package service

import (
	"context"
	"database/sql"
	"testing"

	"packhouse/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProductRepository struct {
	FindByIDTxFunc      func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	FindSubproductsFunc func(ctx context.Context, tx *sql.Tx, parentID int) ([]domain.Product, error)
	SetStockFunc        func(ctx context.Context, tx *sql.Tx, id, stock int) error
}

func (m *mockProductRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
	return m.FindByIDTxFunc(ctx, tx, id)
}

func (m *mockProductRepository) FindSubproducts(ctx context.Context, tx *sql.Tx, parentID int) ([]domain.Product, error) {
	return m.FindSubproductsFunc(ctx, tx, parentID)
}

func (m *mockProductRepository) SetStock(ctx context.Context, tx *sql.Tx, id, stock int) error {
	return m.SetStockFunc(ctx, tx, id, stock)
}

type mockBatchSummer struct {
	SumLiveQuantityFunc func(ctx context.Context, tx *sql.Tx, productID int) (int, error)
}

func (m *mockBatchSummer) SumLiveQuantity(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
	return m.SumLiveQuantityFunc(ctx, tx, productID)
}

func intPtr(i int) *int {
	return &i
}

func TestSync_RecomputesFromBatchesAndCascades(t *testing.T) {
	// Product 1 owns batches summing to 100. Product 2 derives from 1 with
	// 20% loss, product 3 derives from 2 with another 20%.
	subtree := map[int][]domain.Product{
		1: {{ID: 2, ParentProductID: intPtr(1), EstimatedLossPercentage: 20}},
		2: {{ID: 3, ParentProductID: intPtr(2), EstimatedLossPercentage: 20}},
		3: {},
	}

	written := map[int]int{}
	products := &mockProductRepository{
		FindSubproductsFunc: func(ctx context.Context, tx *sql.Tx, parentID int) ([]domain.Product, error) {
			return subtree[parentID], nil
		},
		SetStockFunc: func(ctx context.Context, tx *sql.Tx, id, stock int) error {
			written[id] = stock
			return nil
		},
	}
	batches := &mockBatchSummer{
		SumLiveQuantityFunc: func(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
			return 100, nil
		},
	}

	syncer := NewStockSynchronizer(products, batches, zap.NewNop())

	stock, err := syncer.Sync(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, stock)

	assert.Equal(t, 100, written[1])
	assert.Equal(t, 80, written[2], "level one floors 100 * 0.8")
	assert.Equal(t, 64, written[3], "level two floors from the freshly written 80, not from the root")
}

func TestRecompute_DoesNotPersist(t *testing.T) {
	products := &mockProductRepository{
		SetStockFunc: func(ctx context.Context, tx *sql.Tx, id, stock int) error {
			t.Fatal("recompute must not write")
			return nil
		},
	}
	batches := &mockBatchSummer{
		SumLiveQuantityFunc: func(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
			return 37, nil
		},
	}

	syncer := NewStockSynchronizer(products, batches, zap.NewNop())

	stock, err := syncer.Recompute(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 37, stock)
}
