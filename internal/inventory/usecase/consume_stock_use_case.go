package usecase

import (
	"context"
	"database/sql"
	"time"

	"packhouse/internal/domain"
	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/inventory/service"

	"go.uber.org/zap"
)

// ConsumeStockUseCase is the operation-level entry point for consuming stock
// outside the order flow. When no transaction id is supplied, a sale ledger
// entry is created in the same atomic unit; when one is supplied, the
// consumption attaches to that existing entry.
type ConsumeStockUseCase struct {
	db        TransactionManager
	products  ProductStore
	txns      TransactionStore
	consumer  Consumer
	syncer    Synchronizer
	recorder  Recorder
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewConsumeStockUseCase(
	db TransactionManager,
	products ProductStore,
	txns TransactionStore,
	consumer Consumer,
	syncer Synchronizer,
	recorder Recorder,
	logger *zap.Logger,
	txTimeout time.Duration,
) *ConsumeStockUseCase {
	return &ConsumeStockUseCase{
		db:        db,
		products:  products,
		txns:      txns,
		consumer:  consumer,
		syncer:    syncer,
		recorder:  recorder,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

type ConsumeStockInput struct {
	ProductID     int
	Quantity      int
	TransactionID int64
	ReferenceType *string
	ReferenceID   *int64
	CreatedBy     *int
}

func (uc *ConsumeStockUseCase) ConsumeStock(ctx context.Context, in ConsumeStockInput) (*dto.ConsumptionResult, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive integer",
		})
	}

	if _, err := uc.products.FindByID(ctx, in.ProductID); err != nil {
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

	product, err := uc.products.FindByIDTx(txCtx, tx, in.ProductID)
	if err != nil {
		return nil, err
	}

	target, err := service.ResolveConsumingProduct(txCtx, tx, uc.products, product, in.Quantity)
	if err != nil {
		return nil, err
	}

	transactionID := in.TransactionID
	if transactionID == 0 {
		prev := target.Product.CurrentStock
		transactionID, err = uc.recorder.Record(txCtx, tx, domain.InventoryTransaction{
			ProductID:     target.Product.ID,
			Type:          domain.TransactionTypeSale,
			Quantity:      -target.Quantity,
			PreviousStock: prev,
			NewStock:      prev - target.Quantity,
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			CreatedBy:     in.CreatedBy,
		})
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := uc.txns.FindByIDForUpdate(txCtx, tx, transactionID); err != nil {
			return nil, err
		}
	}

	result, err := uc.consumer.Consume(txCtx, tx, target.Product.ID, target.Quantity, transactionID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.syncer.Sync(txCtx, tx, target.Product.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.Int("productId", in.ProductID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("stock consumed",
		zap.Int("productId", in.ProductID),
		zap.Int("consumingProductId", target.Product.ID),
		zap.Int("quantity", in.Quantity),
		zap.Int64("transactionId", transactionID),
	)

	return result, nil
}
