package domain

import (
	"math"
	"time"
)

// Product holds the derived stock counter. For a regular product,
// CurrentStock is a materialized projection of the sum of its live batches
// and is only ever written by a synchronization pass. A subproduct
// (ParentProductID set) owns no batches: its stock is a pure function of its
// parent's stock and the loss percentage applied when converting parent
// units into subproduct units.
type Product struct {
	ID                      int
	Name                    string
	Unit                    string
	CurrentStock            int
	LowStockThreshold       int
	ParentProductID         *int
	EstimatedLossPercentage float64
	IsDeleted               bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (p Product) IsSubproduct() bool {
	return p.ParentProductID != nil
}

func (p Product) BelowThreshold() bool {
	return p.CurrentStock <= p.LowStockThreshold
}

// SubproductStock converts parent stock into subproduct stock for a single
// level: floor(parentStock * (1 - lossPercentage/100)), clamped at zero.
// Multi-level chains compose by applying this level by level during cascade.
func SubproductStock(parentStock int, lossPercentage float64) int {
	if parentStock <= 0 {
		return 0
	}
	stock := int(math.Floor(float64(parentStock) * (1 - lossPercentage/100)))
	if stock < 0 {
		return 0
	}
	return stock
}

// ParentConsumption converts a subproduct quantity into the parent units
// that must be consumed to yield it, accounting for the estimated loss:
// ceil(quantity / (1 - lossPercentage/100)). A loss percentage at or above
// 100 makes the subproduct unproducible; zero is returned and the caller is
// expected to fail the availability check.
func ParentConsumption(quantity int, lossPercentage float64) int {
	if quantity <= 0 {
		return 0
	}
	retention := 1 - lossPercentage/100
	if retention <= 0 {
		return 0
	}
	return int(math.Ceil(float64(quantity) / retention))
}
