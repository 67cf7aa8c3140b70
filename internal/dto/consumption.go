package dto

import (
	"time"

	"packhouse/internal/domain"
)

// ExpiryWarning is informational side-channel data raised when consumption
// touched a batch expiring within the configured horizon. It never blocks
// the operation.
type ExpiryWarning struct {
	BatchID          int64
	ProductID        int
	ExpiryDate       time.Time
	QuantityConsumed int
}

type LowStockWarning struct {
	ProductID    int
	CurrentStock int
	Threshold    int
}

type ConsumptionResult struct {
	Lines          []domain.BatchConsumption
	ExpiryWarnings []ExpiryWarning
}

// TotalConsumed sums the consumed quantity across all lines.
func (r ConsumptionResult) TotalConsumed() int {
	total := 0
	for _, line := range r.Lines {
		total += line.QuantityConsumed
	}
	return total
}
