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

type ReceiveStockUseCase struct {
	db        TransactionManager
	products  ProductStore
	batches   BatchStore
	syncer    Synchronizer
	recorder  Recorder
	auditor   audit.Sink
	resolver  identity.Resolver
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewReceiveStockUseCase(
	db TransactionManager,
	products ProductStore,
	batches BatchStore,
	syncer Synchronizer,
	recorder Recorder,
	auditor audit.Sink,
	resolver identity.Resolver,
	logger *zap.Logger,
	txTimeout time.Duration,
) *ReceiveStockUseCase {
	return &ReceiveStockUseCase{
		db:        db,
		products:  products,
		batches:   batches,
		syncer:    syncer,
		recorder:  recorder,
		auditor:   auditor,
		resolver:  resolver,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

type ReceiveStockInput struct {
	ProductID   int
	Quantity    int
	CostPerUnit int64
	ExpiryDate  *time.Time
	SupplierID  *int
	CreatedBy   *int
	Notes       string
}

type ReceiveStockOutput struct {
	BatchID       int64
	TransactionID int64
	NewStock      int
}

func (uc *ReceiveStockUseCase) ReceiveStock(ctx context.Context, in ReceiveStockInput) (*ReceiveStockOutput, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive integer",
		})
	}
	if in.CostPerUnit < 0 {
		return nil, apperrors.NewValidationError("costPerUnit must be non-negative", apperrors.ValidationDetail{
			Field:   "costPerUnit",
			Message: "costPerUnit must be non-negative",
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	product, err := uc.products.FindByIDTx(txCtx, tx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.IsSubproduct() {
		return nil, apperrors.NewInvalidStateError("subproducts own no batches; receive stock on the parent product")
	}

	batchID, err := uc.batches.Insert(txCtx, tx, domain.InventoryBatch{
		ProductID:         in.ProductID,
		InitialQuantity:   in.Quantity,
		QuantityRemaining: in.Quantity,
		CostPerUnit:       in.CostPerUnit,
		ReceivedAt:        time.Now().UTC(),
		ExpiryDate:        in.ExpiryDate,
		SupplierID:        in.SupplierID,
	})
	if err != nil {
		return nil, err
	}

	receipt := domain.AdjustmentReceipt
	prev := product.CurrentStock
	transactionID, err := uc.recorder.Record(txCtx, tx, domain.InventoryTransaction{
		ProductID:      in.ProductID,
		Type:           domain.TransactionTypeAdjustment,
		AdjustmentType: &receipt,
		Quantity:       in.Quantity,
		PreviousStock:  prev,
		NewStock:       prev + in.Quantity,
		CreatedBy:      in.CreatedBy,
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, err
	}

	newStock, err := uc.syncer.Sync(txCtx, tx, in.ProductID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.Int("productId", in.ProductID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("stock received",
		zap.Int("productId", in.ProductID),
		zap.Int64("batchId", batchID),
		zap.Int("quantity", in.Quantity),
		zap.Int("newStock", newStock),
	)

	uc.auditor.Record(ctx, audit.Event{
		Actor:    identity.Describe(ctx, uc.resolver, in.CreatedBy),
		Action:   "stock.receive",
		Entity:   "product",
		EntityID: strconv.Itoa(in.ProductID),
		Before:   prev,
		After:    newStock,
	})

	return &ReceiveStockOutput{
		BatchID:       batchID,
		TransactionID: transactionID,
		NewStock:      newStock,
	}, nil
}
