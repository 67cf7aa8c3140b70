package usecase

import (
	"context"
	"database/sql"
	"time"

	apperrors "packhouse/internal/errors"

	"go.uber.org/zap"
)

// SyncStockUseCase reconciles a product's stock counter with its batch
// ledger on demand. For a subproduct it climbs to the batch-owning root
// first; the cascade then rewrites every derived level on the way down.
type SyncStockUseCase struct {
	db        TransactionManager
	products  ProductStore
	syncer    Synchronizer
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewSyncStockUseCase(
	db TransactionManager,
	products ProductStore,
	syncer Synchronizer,
	logger *zap.Logger,
	txTimeout time.Duration,
) *SyncStockUseCase {
	return &SyncStockUseCase{
		db:        db,
		products:  products,
		syncer:    syncer,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

const maxAncestorDepth = 10

func (uc *SyncStockUseCase) SyncProductCurrentStock(ctx context.Context, productID int) (int, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return 0, err
	}
	defer tx.Rollback()

	product, err := uc.products.FindByIDTx(txCtx, tx, productID)
	if err != nil {
		return 0, err
	}

	root := product
	for depth := 0; root.IsSubproduct(); depth++ {
		if depth >= maxAncestorDepth {
			return 0, apperrors.NewInternalError("subproduct chain exceeds maximum depth", nil)
		}
		root, err = uc.products.FindByIDTx(txCtx, tx, *root.ParentProductID)
		if err != nil {
			return 0, err
		}
	}

	rootStock, err := uc.syncer.Sync(txCtx, tx, root.ID)
	if err != nil {
		return 0, err
	}

	stock := rootStock
	if product.ID != root.ID {
		refreshed, err := uc.products.FindByIDTx(txCtx, tx, product.ID)
		if err != nil {
			return 0, err
		}
		stock = refreshed.CurrentStock
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.Int("productId", productID), zap.Error(err))
		return 0, err
	}

	uc.logger.Info("product stock synchronized",
		zap.Int("productId", productID),
		zap.Int("rootProductId", root.ID),
		zap.Int("stock", stock),
	)

	return stock, nil
}
