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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessStockUseCase converts stock of one product into another, e.g.
// whole produce into a trimmed variant. It emits a pair of processing
// transactions correlated by a shared batch number: a deduction on the
// source and an addition on the target, whose new batch carries the cost
// actually drawn from the source's cost layers.
type ProcessStockUseCase struct {
	db        TransactionManager
	products  ProductStore
	batches   BatchStore
	consumer  Consumer
	syncer    Synchronizer
	recorder  Recorder
	auditor   audit.Sink
	resolver  identity.Resolver
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewProcessStockUseCase(
	db TransactionManager,
	products ProductStore,
	batches BatchStore,
	consumer Consumer,
	syncer Synchronizer,
	recorder Recorder,
	auditor audit.Sink,
	resolver identity.Resolver,
	logger *zap.Logger,
	txTimeout time.Duration,
) *ProcessStockUseCase {
	return &ProcessStockUseCase{
		db:        db,
		products:  products,
		batches:   batches,
		consumer:  consumer,
		syncer:    syncer,
		recorder:  recorder,
		auditor:   auditor,
		resolver:  resolver,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

type ProcessStockInput struct {
	SourceProductID int
	TargetProductID int
	Quantity        int
	LossQuantity    int
	CreatedBy       *int
	Notes           string
}

type ProcessStockOutput struct {
	BatchNumber         string
	SourceTransactionID int64
	TargetTransactionID int64
	OutputQuantity      int
	TargetBatchID       int64
}

func (uc *ProcessStockUseCase) ProcessStock(ctx context.Context, in ProcessStockInput) (*ProcessStockOutput, error) {
	if err := uc.validate(in); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	source, err := uc.products.FindByIDTx(txCtx, tx, in.SourceProductID)
	if err != nil {
		return nil, err
	}
	target, err := uc.products.FindByIDTx(txCtx, tx, in.TargetProductID)
	if err != nil {
		return nil, err
	}
	if source.IsSubproduct() || target.IsSubproduct() {
		return nil, apperrors.NewInvalidStateError("processing must run between batch-owning products")
	}

	processing := domain.AdjustmentProcessing
	batchNumber := uuid.New().String()
	outputQuantity := in.Quantity - in.LossQuantity

	prevSource := source.CurrentStock
	sourceTxnID, err := uc.recorder.Record(txCtx, tx, domain.InventoryTransaction{
		ProductID:      source.ID,
		Type:           domain.TransactionTypeAdjustment,
		AdjustmentType: &processing,
		Quantity:       -in.Quantity,
		PreviousStock:  prevSource,
		NewStock:       prevSource - in.Quantity,
		BatchNumber:    &batchNumber,
		CreatedBy:      in.CreatedBy,
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, err
	}

	result, err := uc.consumer.Consume(txCtx, tx, source.ID, in.Quantity, sourceTxnID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.syncer.Sync(txCtx, tx, source.ID); err != nil {
		return nil, err
	}

	// The target batch inherits the cost actually consumed from the
	// source's layers, spread over the units that survived processing.
	var totalCost int64
	for _, line := range result.Lines {
		totalCost += line.TotalCost
	}
	costPerUnit := totalCost / int64(outputQuantity)

	targetBatchID, err := uc.batches.Insert(txCtx, tx, domain.InventoryBatch{
		ProductID:         target.ID,
		InitialQuantity:   outputQuantity,
		QuantityRemaining: outputQuantity,
		CostPerUnit:       costPerUnit,
		ReceivedAt:        time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	prevTarget := target.CurrentStock
	targetTxnID, err := uc.recorder.Record(txCtx, tx, domain.InventoryTransaction{
		ProductID:      target.ID,
		Type:           domain.TransactionTypeAdjustment,
		AdjustmentType: &processing,
		Quantity:       outputQuantity,
		PreviousStock:  prevTarget,
		NewStock:       prevTarget + outputQuantity,
		BatchNumber:    &batchNumber,
		CreatedBy:      in.CreatedBy,
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, err
	}

	if _, err := uc.syncer.Sync(txCtx, tx, target.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.String("batchNumber", batchNumber), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("stock processed",
		zap.Int("sourceProductId", source.ID),
		zap.Int("targetProductId", target.ID),
		zap.Int("quantity", in.Quantity),
		zap.Int("outputQuantity", outputQuantity),
		zap.String("batchNumber", batchNumber),
	)

	uc.auditor.Record(ctx, audit.Event{
		Actor:    identity.Describe(ctx, uc.resolver, in.CreatedBy),
		Action:   "stock.process",
		Entity:   "product",
		EntityID: strconv.Itoa(source.ID),
		Before:   in.Quantity,
		After:    outputQuantity,
	})

	return &ProcessStockOutput{
		BatchNumber:         batchNumber,
		SourceTransactionID: sourceTxnID,
		TargetTransactionID: targetTxnID,
		OutputQuantity:      outputQuantity,
		TargetBatchID:       targetBatchID,
	}, nil
}

func (uc *ProcessStockUseCase) validate(in ProcessStockInput) error {
	var details []apperrors.ValidationDetail

	if in.Quantity <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive integer",
		})
	}
	if in.LossQuantity < 0 || in.LossQuantity >= in.Quantity {
		details = append(details, apperrors.ValidationDetail{
			Field:   "lossQuantity",
			Message: "lossQuantity must be non-negative and smaller than quantity",
		})
	}
	if in.SourceProductID == in.TargetProductID {
		details = append(details, apperrors.ValidationDetail{
			Field:   "targetProductId",
			Message: "source and target products must differ",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
