package domain

import "time"

// InventoryBatch is a discrete receipt of stock carrying its own cost layer
// and optional expiry. Batches are never deleted; an exhausted batch stays
// behind as historical record with IsConsumed set.
type InventoryBatch struct {
	ID                int64
	ProductID         int
	InitialQuantity   int
	QuantityRemaining int
	CostPerUnit       int64
	ReceivedAt        time.Time
	ExpiryDate        *time.Time
	IsConsumed        bool
	SupplierID        *int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (b InventoryBatch) IsLive() bool {
	return !b.IsConsumed && b.QuantityRemaining > 0
}

// ExpiresWithin reports whether the batch expires within the given horizon
// from now. Batches without an expiry date never do.
func (b InventoryBatch) ExpiresWithin(horizon time.Duration, now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return !b.ExpiryDate.After(now.Add(horizon))
}
