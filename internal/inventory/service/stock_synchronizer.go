package service

import (
	"context"
	"database/sql"

	"packhouse/internal/domain"

	"go.uber.org/zap"
)

type ProductRepository interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	FindSubproducts(ctx context.Context, tx *sql.Tx, parentID int) ([]domain.Product, error)
	SetStock(ctx context.Context, tx *sql.Tx, id, stock int) error
}

type BatchSummer interface {
	SumLiveQuantity(ctx context.Context, tx *sql.Tx, productID int) (int, error)
}

// StockSynchronizer keeps the derived currentStock counter consistent with
// the batch ledger. It always recomputes from the live-batch sum instead of
// applying increments, so drift introduced by any code path that forgot a
// counter update is corrected on the next pass.
type StockSynchronizer struct {
	products ProductRepository
	batches  BatchSummer
	logger   *zap.Logger
}

func NewStockSynchronizer(products ProductRepository, batches BatchSummer, logger *zap.Logger) *StockSynchronizer {
	return &StockSynchronizer{
		products: products,
		batches:  batches,
		logger:   logger,
	}
}

// Recompute returns the authoritative stock for a product as the sum of its
// live batches, without persisting it. Fulfillment uses this together with
// a compare-and-swap write.
func (s *StockSynchronizer) Recompute(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
	return s.batches.SumLiveQuantity(ctx, tx, productID)
}

// Sync recomputes and persists a product's stock, then cascades the result
// through its subproduct tree. Returns the new stock value.
func (s *StockSynchronizer) Sync(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
	stock, err := s.batches.SumLiveQuantity(ctx, tx, productID)
	if err != nil {
		return 0, err
	}

	if err := s.products.SetStock(ctx, tx, productID, stock); err != nil {
		return 0, err
	}

	if err := s.Cascade(ctx, tx, productID, stock); err != nil {
		return 0, err
	}

	s.logger.Debug("product stock synchronized",
		zap.Int("productId", productID),
		zap.Int("stock", stock),
	)

	return stock, nil
}

// Cascade pushes a parent's stock down to every subproduct level. Loss
// percentages compose multiplicatively: each level floors from its parent's
// freshly computed stock, then recurses into its own children.
func (s *StockSynchronizer) Cascade(ctx context.Context, tx *sql.Tx, productID, parentStock int) error {
	subproducts, err := s.products.FindSubproducts(ctx, tx, productID)
	if err != nil {
		return err
	}

	for _, sub := range subproducts {
		stock := domain.SubproductStock(parentStock, sub.EstimatedLossPercentage)

		if err := s.products.SetStock(ctx, tx, sub.ID, stock); err != nil {
			return err
		}

		if err := s.Cascade(ctx, tx, sub.ID, stock); err != nil {
			return err
		}
	}

	return nil
}
