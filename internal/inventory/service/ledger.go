package service

import (
	"context"
	"database/sql"

	"packhouse/internal/domain"
	"packhouse/internal/errors"

	"go.uber.org/zap"
)

type TransactionRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error)
}

// Ledger appends immutable movement records. Every batch debit or credit is
// justified by exactly one entry created in the same transaction.
type Ledger struct {
	transactions TransactionRepository
	logger       *zap.Logger
}

func NewLedger(transactions TransactionRepository, logger *zap.Logger) *Ledger {
	return &Ledger{
		transactions: transactions,
		logger:       logger,
	}
}

func (l *Ledger) Record(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error) {
	if txn.PreviousStock+txn.Quantity != txn.NewStock {
		return 0, errors.NewInternalError("ledger entry stock arithmetic does not balance", nil)
	}

	id, err := l.transactions.Insert(ctx, tx, txn)
	if err != nil {
		return 0, err
	}

	l.logger.Info("ledger entry recorded",
		zap.Int64("transactionId", id),
		zap.Int("productId", txn.ProductID),
		zap.String("type", string(txn.Type)),
		zap.Int("quantity", txn.Quantity),
	)

	return id, nil
}
