package usecase

import (
	"context"

	"packhouse/internal/domain"
	"packhouse/internal/dto"

	"go.uber.org/zap"
)

// LowStockUseCase lists products at or below their low-stock threshold for
// the replenishment view.
type LowStockUseCase struct {
	products ProductStore
	logger   *zap.Logger
}

func NewLowStockUseCase(products ProductStore, logger *zap.Logger) *LowStockUseCase {
	return &LowStockUseCase{
		products: products,
		logger:   logger,
	}
}

func (uc *LowStockUseCase) ListLowStock(ctx context.Context) ([]dto.LowStockWarning, error) {
	products, err := uc.products.FindBelowThreshold(ctx)
	if err != nil {
		return nil, err
	}

	warnings := make([]dto.LowStockWarning, 0, len(products))
	for _, p := range products {
		warnings = append(warnings, lowStockWarning(p))
	}

	return warnings, nil
}

func lowStockWarning(p domain.Product) dto.LowStockWarning {
	return dto.LowStockWarning{
		ProductID:    p.ID,
		CurrentStock: p.CurrentStock,
		Threshold:    p.LowStockThreshold,
	}
}
