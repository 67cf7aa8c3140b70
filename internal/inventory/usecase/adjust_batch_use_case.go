package usecase

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"packhouse/internal/audit"
	"packhouse/internal/domain"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/identity"

	"go.uber.org/zap"
)

// AdjustBatchUseCase covers the two administrative batch corrections: the
// full write-off of a batch and a manual quantity correction with an
// automatic corrective ledger entry.
type AdjustBatchUseCase struct {
	db           TransactionManager
	products     ProductStore
	batches      BatchStore
	consumptions ConsumptionStore
	syncer       Synchronizer
	recorder     Recorder
	auditor      audit.Sink
	resolver     identity.Resolver
	logger       *zap.Logger
	txTimeout    time.Duration
}

func NewAdjustBatchUseCase(
	db TransactionManager,
	products ProductStore,
	batches BatchStore,
	consumptions ConsumptionStore,
	syncer Synchronizer,
	recorder Recorder,
	auditor audit.Sink,
	resolver identity.Resolver,
	logger *zap.Logger,
	txTimeout time.Duration,
) *AdjustBatchUseCase {
	return &AdjustBatchUseCase{
		db:           db,
		products:     products,
		batches:      batches,
		consumptions: consumptions,
		syncer:       syncer,
		recorder:     recorder,
		auditor:      auditor,
		resolver:     resolver,
		logger:       logger,
		txTimeout:    txTimeout,
	}
}

// MarkBatchConsumed writes off whatever remains of a batch. The write-off
// records consumption lines like any other deduction, which is what makes
// it editable through the compensation flow later.
func (uc *AdjustBatchUseCase) MarkBatchConsumed(ctx context.Context, batchID int64, reason string, createdBy *int) error {
	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	batch, err := uc.batches.FindByIDForUpdate(txCtx, tx, batchID)
	if err != nil {
		return err
	}
	if !batch.IsLive() {
		return apperrors.NewInvalidStateError("batch is already fully consumed")
	}

	product, err := uc.products.FindByIDTx(txCtx, tx, batch.ProductID)
	if err != nil {
		return err
	}

	writeOff := domain.AdjustmentWriteOff
	quantity := batch.QuantityRemaining
	prev := product.CurrentStock

	transactionID, err := uc.recorder.Record(txCtx, tx, domain.InventoryTransaction{
		ProductID:      batch.ProductID,
		Type:           domain.TransactionTypeAdjustment,
		AdjustmentType: &writeOff,
		Quantity:       -quantity,
		PreviousStock:  prev,
		NewStock:       prev - quantity,
		CreatedBy:      createdBy,
		Notes:          reason,
	})
	if err != nil {
		return err
	}

	if err := uc.batches.Debit(txCtx, tx, batchID, quantity); err != nil {
		return err
	}

	if _, err := uc.consumptions.Insert(txCtx, tx, domain.BatchConsumption{
		BatchID:          batchID,
		TransactionID:    transactionID,
		QuantityConsumed: quantity,
		CostPerUnit:      batch.CostPerUnit,
		TotalCost:        int64(quantity) * batch.CostPerUnit,
	}); err != nil {
		return err
	}

	newStock, err := uc.syncer.Sync(txCtx, tx, batch.ProductID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.Int64("batchId", batchID), zap.Error(err))
		return err
	}

	uc.logger.Info("batch written off",
		zap.Int64("batchId", batchID),
		zap.Int("productId", batch.ProductID),
		zap.Int("quantity", quantity),
		zap.Int("newStock", newStock),
	)

	uc.auditor.Record(ctx, audit.Event{
		Actor:    identity.Describe(ctx, uc.resolver, createdBy),
		Action:   "batch.write_off",
		Entity:   "batch",
		EntityID: strconv.FormatInt(batchID, 10),
		Before:   quantity,
		After:    0,
	})

	return nil
}

// UpdateBatchQuantity sets a batch's remaining quantity to an exact count,
// recording the signed difference as a stock-count correction.
func (uc *AdjustBatchUseCase) UpdateBatchQuantity(ctx context.Context, batchID int64, newQuantity int, createdBy *int) error {
	if newQuantity < 0 {
		return apperrors.NewValidationError("newQuantity must be non-negative", apperrors.ValidationDetail{
			Field:   "newQuantity",
			Message: "newQuantity must be zero or a positive integer",
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	batch, err := uc.batches.FindByIDForUpdate(txCtx, tx, batchID)
	if err != nil {
		return err
	}

	delta := newQuantity - batch.QuantityRemaining
	if delta == 0 {
		return nil
	}

	product, err := uc.products.FindByIDTx(txCtx, tx, batch.ProductID)
	if err != nil {
		return err
	}

	correction := domain.AdjustmentCountCorrection
	prev := product.CurrentStock

	transactionID, err := uc.recorder.Record(txCtx, tx, domain.InventoryTransaction{
		ProductID:      batch.ProductID,
		Type:           domain.TransactionTypeAdjustment,
		AdjustmentType: &correction,
		Quantity:       delta,
		PreviousStock:  prev,
		NewStock:       prev + delta,
		CreatedBy:      createdBy,
		Notes:          "batch quantity corrected from physical count",
	})
	if err != nil {
		return err
	}

	if delta < 0 {
		if err := uc.batches.Debit(txCtx, tx, batchID, -delta); err != nil {
			return err
		}
		if _, err := uc.consumptions.Insert(txCtx, tx, domain.BatchConsumption{
			BatchID:          batchID,
			TransactionID:    transactionID,
			QuantityConsumed: -delta,
			CostPerUnit:      batch.CostPerUnit,
			TotalCost:        int64(-delta) * batch.CostPerUnit,
		}); err != nil {
			return err
		}
	} else {
		if err := uc.batches.Credit(txCtx, tx, batchID, delta); err != nil {
			return err
		}
	}

	newStock, err := uc.syncer.Sync(txCtx, tx, batch.ProductID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.Int64("batchId", batchID), zap.Error(err))
		return err
	}

	uc.logger.Info("batch quantity corrected",
		zap.Int64("batchId", batchID),
		zap.Int("productId", batch.ProductID),
		zap.Int("delta", delta),
		zap.Int("newStock", newStock),
	)

	uc.auditor.Record(ctx, audit.Event{
		Actor:    identity.Describe(ctx, uc.resolver, createdBy),
		Action:   "batch.quantity_correction",
		Entity:   "batch",
		EntityID: strconv.FormatInt(batchID, 10),
		Before:   batch.QuantityRemaining,
		After:    newQuantity,
	})

	return nil
}
