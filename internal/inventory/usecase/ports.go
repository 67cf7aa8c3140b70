package usecase

import (
	"context"
	"database/sql"

	"packhouse/internal/domain"
	"packhouse/internal/dto"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type BatchStore interface {
	FindByID(ctx context.Context, id int64) (*domain.InventoryBatch, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.InventoryBatch, error)
	Insert(ctx context.Context, tx *sql.Tx, batch domain.InventoryBatch) (int64, error)
	Debit(ctx context.Context, tx *sql.Tx, batchID int64, quantity int) error
	Credit(ctx context.Context, tx *sql.Tx, batchID int64, quantity int) error
}

type ConsumptionStore interface {
	Insert(ctx context.Context, tx *sql.Tx, line domain.BatchConsumption) (int64, error)
}

type TransactionStore interface {
	FindByID(ctx context.Context, id int64) (*domain.InventoryTransaction, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.InventoryTransaction, error)
	UpdateForEdit(ctx context.Context, tx *sql.Tx, id int64, quantity, previousStock, newStock int, notes string) error
}

type ProductStore interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	FindBelowThreshold(ctx context.Context) ([]domain.Product, error)
}

type Consumer interface {
	Consume(ctx context.Context, tx *sql.Tx, productID, quantity int, transactionID int64) (*dto.ConsumptionResult, error)
	Restore(ctx context.Context, tx *sql.Tx, transactionID int64) error
}

type Synchronizer interface {
	Sync(ctx context.Context, tx *sql.Tx, productID int) (int, error)
}

type Recorder interface {
	Record(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error)
}
