package usecase

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"packhouse/internal/domain"
	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProductStore struct {
	FindByIDFunc           func(ctx context.Context, id int) (*domain.Product, error)
	FindByIDTxFunc         func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	FindBelowThresholdFunc func(ctx context.Context) ([]domain.Product, error)
}

func (m *mockProductStore) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockProductStore) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
	return m.FindByIDTxFunc(ctx, tx, id)
}

func (m *mockProductStore) FindBelowThreshold(ctx context.Context) ([]domain.Product, error) {
	return m.FindBelowThresholdFunc(ctx)
}

type mockRecorder struct {
	RecordFunc func(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error)
}

func (m *mockRecorder) Record(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error) {
	return m.RecordFunc(ctx, tx, txn)
}

func plainProductStore(p *domain.Product) *mockProductStore {
	return &mockProductStore{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Product, error) {
			return p, nil
		},
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
			return p, nil
		},
	}
}

func TestConsumeStock_CreatesSaleEntryWhenNoTransactionGiven(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	product := &domain.Product{ID: 4, CurrentStock: 30}

	var recorded *domain.InventoryTransaction
	recorder := &mockRecorder{
		RecordFunc: func(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error) {
			recorded = &txn
			return 61, nil
		},
	}
	consumer := &mockConsumer{
		ConsumeFunc: func(ctx context.Context, tx *sql.Tx, productID, quantity int, transactionID int64) (*dto.ConsumptionResult, error) {
			assert.Equal(t, int64(61), transactionID)
			return &dto.ConsumptionResult{
				Lines: []domain.BatchConsumption{{BatchID: 1, QuantityConsumed: quantity}},
			}, nil
		},
	}
	syncer := &mockSynchronizer{
		SyncFunc: func(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
			return 18, nil
		},
	}

	uc := NewConsumeStockUseCase(db, plainProductStore(product), &mockTransactionStore{}, consumer, syncer, recorder, zap.NewNop(), 5*time.Second)

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := uc.ConsumeStock(context.Background(), ConsumeStockInput{ProductID: 4, Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, result.TotalConsumed())

	require.NotNil(t, recorded)
	assert.Equal(t, domain.TransactionTypeSale, recorded.Type)
	assert.Equal(t, -12, recorded.Quantity)
	assert.Equal(t, 30, recorded.PreviousStock)
	assert.Equal(t, 18, recorded.NewStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeStock_AttachesToExistingTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	product := &domain.Product{ID: 4, CurrentStock: 30}

	txns := &mockTransactionStore{
		FindByIDForUpdateFunc: func(ctx context.Context, tx *sql.Tx, id int64) (*domain.InventoryTransaction, error) {
			assert.Equal(t, int64(33), id)
			return &domain.InventoryTransaction{ID: id, ProductID: 4}, nil
		},
	}
	recorder := &mockRecorder{
		RecordFunc: func(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error) {
			t.Fatal("no new ledger entry when a transaction id is supplied")
			return 0, nil
		},
	}
	consumer := &mockConsumer{
		ConsumeFunc: func(ctx context.Context, tx *sql.Tx, productID, quantity int, transactionID int64) (*dto.ConsumptionResult, error) {
			assert.Equal(t, int64(33), transactionID)
			return &dto.ConsumptionResult{}, nil
		},
	}
	syncer := &mockSynchronizer{
		SyncFunc: func(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
			return 18, nil
		},
	}

	uc := NewConsumeStockUseCase(db, plainProductStore(product), txns, consumer, syncer, recorder, zap.NewNop(), 5*time.Second)

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err = uc.ConsumeStock(context.Background(), ConsumeStockInput{ProductID: 4, Quantity: 12, TransactionID: 33})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeStock_SubproductRedirectsToParent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	parent := &domain.Product{ID: 1, CurrentStock: 100}
	sub := &domain.Product{ID: 2, ParentProductID: func() *int { i := 1; return &i }(), EstimatedLossPercentage: 20}

	products := &mockProductStore{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Product, error) {
			return sub, nil
		},
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
			if id == 1 {
				return parent, nil
			}
			return sub, nil
		},
	}
	recorder := &mockRecorder{
		RecordFunc: func(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error) {
			assert.Equal(t, 1, txn.ProductID)
			assert.Equal(t, -10, txn.Quantity, "8 subproduct units need 10 parent units at 20% loss")
			return 70, nil
		},
	}
	consumer := &mockConsumer{
		ConsumeFunc: func(ctx context.Context, tx *sql.Tx, productID, quantity int, transactionID int64) (*dto.ConsumptionResult, error) {
			assert.Equal(t, 1, productID)
			assert.Equal(t, 10, quantity)
			return &dto.ConsumptionResult{}, nil
		},
	}
	syncer := &mockSynchronizer{
		SyncFunc: func(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
			assert.Equal(t, 1, productID)
			return 90, nil
		},
	}

	uc := NewConsumeStockUseCase(db, products, &mockTransactionStore{}, consumer, syncer, recorder, zap.NewNop(), 5*time.Second)

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err = uc.ConsumeStock(context.Background(), ConsumeStockInput{ProductID: 2, Quantity: 8})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeStock_RejectsNonPositiveQuantity(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	uc := NewConsumeStockUseCase(db, &mockProductStore{}, &mockTransactionStore{}, &mockConsumer{}, &mockSynchronizer{}, &mockRecorder{}, zap.NewNop(), 5*time.Second)

	_, err = uc.ConsumeStock(context.Background(), ConsumeStockInput{ProductID: 4, Quantity: 0})
	require.Error(t, err)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}
