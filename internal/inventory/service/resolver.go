package service

import (
	"context"
	"database/sql"
	"fmt"

	"packhouse/internal/domain"
	"packhouse/internal/errors"
)

// maxSubproductDepth bounds the parent walk so a cyclic parentProductId
// chain in bad data cannot loop forever.
const maxSubproductDepth = 10

// ProductFinder is the narrow lookup the parent walk needs; both the full
// product repository and the usecase-level stores satisfy it.
type ProductFinder interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
}

// ConsumptionTarget is the product whose batches are actually debited for a
// requested line, with the quantity scaled up through the loss percentages
// of every subproduct level in between.
type ConsumptionTarget struct {
	Product  *domain.Product
	Quantity int
}

// ResolveConsumingProduct walks from a (possibly subproduct) product up to
// the batch-owning ancestor. At each level the required quantity is
// converted into parent units via the level's loss percentage.
func ResolveConsumingProduct(ctx context.Context, tx *sql.Tx, products ProductFinder, product *domain.Product, quantity int) (*ConsumptionTarget, error) {
	current := product
	required := quantity

	for depth := 0; current.IsSubproduct(); depth++ {
		if depth >= maxSubproductDepth {
			return nil, errors.NewInternalError(
				fmt.Sprintf("subproduct chain for product %d exceeds maximum depth", product.ID), nil)
		}

		scaled := domain.ParentConsumption(required, current.EstimatedLossPercentage)
		if scaled == 0 && required > 0 {
			// Loss percentage at or above 100: nothing the parent holds
			// can yield the requested quantity.
			return nil, errors.NewInsufficientStockError(current.ID, required, 0)
		}

		parent, err := products.FindByIDTx(ctx, tx, *current.ParentProductID)
		if err != nil {
			return nil, err
		}

		current = parent
		required = scaled
	}

	return &ConsumptionTarget{Product: current, Quantity: required}, nil
}
