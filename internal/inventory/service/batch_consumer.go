package service

import (
	"context"
	"database/sql"
	"time"

	"packhouse/internal/domain"
	"packhouse/internal/dto"
	"packhouse/internal/errors"

	"go.uber.org/zap"
)

type BatchRepository interface {
	LiveBatches(ctx context.Context, tx *sql.Tx, productID int) ([]domain.InventoryBatch, error)
	Debit(ctx context.Context, tx *sql.Tx, batchID int64, quantity int) error
	Credit(ctx context.Context, tx *sql.Tx, batchID int64, quantity int) error
}

type ConsumptionRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, line domain.BatchConsumption) (int64, error)
	FindByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) ([]domain.BatchConsumption, error)
	DeleteByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) error
}

// BatchConsumer drains a product's live batches in FEFO order to satisfy a
// requested quantity and records the consumption lines that make the ledger
// transaction reversible. It never commits: callers own the transaction
// boundary so that a failed consumption leaves no partial debits behind.
type BatchConsumer struct {
	batches       BatchRepository
	consumptions  ConsumptionRepository
	logger        *zap.Logger
	expiryHorizon time.Duration
	now           func() time.Time
}

func NewBatchConsumer(
	batches BatchRepository,
	consumptions ConsumptionRepository,
	logger *zap.Logger,
	expiryHorizon time.Duration,
) *BatchConsumer {
	return &BatchConsumer{
		batches:       batches,
		consumptions:  consumptions,
		logger:        logger,
		expiryHorizon: expiryHorizon,
		now:           time.Now,
	}
}

func (c *BatchConsumer) Consume(ctx context.Context, tx *sql.Tx, productID, quantity int, transactionID int64) (*dto.ConsumptionResult, error) {
	if quantity <= 0 {
		return nil, errors.NewValidationError("consumption quantity must be positive", errors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive integer",
		})
	}

	batches, err := c.batches.LiveBatches(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	available := 0
	for _, b := range batches {
		available += b.QuantityRemaining
	}
	if available < quantity {
		return nil, errors.NewInsufficientStockError(productID, quantity, available)
	}

	result := &dto.ConsumptionResult{}
	now := c.now()
	outstanding := quantity

	for _, batch := range batches {
		if outstanding == 0 {
			break
		}

		take := outstanding
		if batch.QuantityRemaining < take {
			take = batch.QuantityRemaining
		}

		if err := c.batches.Debit(ctx, tx, batch.ID, take); err != nil {
			return nil, err
		}

		line := domain.BatchConsumption{
			BatchID:          batch.ID,
			TransactionID:    transactionID,
			QuantityConsumed: take,
			CostPerUnit:      batch.CostPerUnit,
			TotalCost:        int64(take) * batch.CostPerUnit,
		}
		lineID, err := c.consumptions.Insert(ctx, tx, line)
		if err != nil {
			return nil, err
		}
		line.ID = lineID
		result.Lines = append(result.Lines, line)

		if batch.ExpiresWithin(c.expiryHorizon, now) {
			result.ExpiryWarnings = append(result.ExpiryWarnings, dto.ExpiryWarning{
				BatchID:          batch.ID,
				ProductID:        productID,
				ExpiryDate:       *batch.ExpiryDate,
				QuantityConsumed: take,
			})
			c.logger.Warn("consumed batch near expiry",
				zap.Int64("batchId", batch.ID),
				zap.Int("productId", productID),
				zap.Time("expiryDate", *batch.ExpiryDate),
			)
		}

		outstanding -= take
	}

	c.logger.Info("batches consumed",
		zap.Int("productId", productID),
		zap.Int64("transactionId", transactionID),
		zap.Int("quantity", quantity),
		zap.Int("batchCount", len(result.Lines)),
	)

	return result, nil
}

// Restore reverses every consumption line tied to a transaction: each batch
// is re-credited by the quantity it supplied and the lines are deleted.
// Used exclusively by the compensating edit flow.
func (c *BatchConsumer) Restore(ctx context.Context, tx *sql.Tx, transactionID int64) error {
	lines, err := c.consumptions.FindByTransactionID(ctx, tx, transactionID)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if err := c.batches.Credit(ctx, tx, line.BatchID, line.QuantityConsumed); err != nil {
			return err
		}
	}

	if err := c.consumptions.DeleteByTransactionID(ctx, tx, transactionID); err != nil {
		return err
	}

	c.logger.Info("batch consumptions restored",
		zap.Int64("transactionId", transactionID),
		zap.Int("lineCount", len(lines)),
	)

	return nil
}
