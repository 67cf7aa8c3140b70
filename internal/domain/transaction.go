package domain

import "time"

type TransactionType string

const (
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

type AdjustmentType string

const (
	AdjustmentPacking         AdjustmentType = "packing_adjustment"
	AdjustmentPackingReset    AdjustmentType = "packing_reset"
	AdjustmentWriteOff        AdjustmentType = "stock_write_off"
	AdjustmentCountCorrection AdjustmentType = "stock_count_correction"
	AdjustmentProcessing      AdjustmentType = "processing"
	AdjustmentReceipt         AdjustmentType = "stock_receipt"
)

// InventoryTransaction is an immutable, signed-quantity ledger entry
// justifying a stock movement. Negative quantity means stock leaving,
// positive means stock arriving. Entries are only ever changed through the
// compensating edit workflow, which preserves the audit trail in Notes.
type InventoryTransaction struct {
	ID             int64
	ProductID      int
	Type           TransactionType
	AdjustmentType *AdjustmentType
	Quantity       int
	PreviousStock  int
	NewStock       int
	ReferenceType  *string
	ReferenceID    *int64
	BatchNumber    *string
	CreatedBy      *int
	Notes          string
	CreatedAt      time.Time
}

func (t InventoryTransaction) IsDeduction() bool {
	return t.Quantity < 0
}

// Editable reports whether the transaction may go through the compensating
// edit workflow. Plain sales consumption follows a separate, non-editable
// path; only operational adjustments can be corrected after the fact.
func (t InventoryTransaction) Editable() bool {
	if t.Type != TransactionTypeAdjustment || t.AdjustmentType == nil {
		return false
	}
	switch *t.AdjustmentType {
	case AdjustmentWriteOff, AdjustmentProcessing, AdjustmentPacking, AdjustmentPackingReset:
		return true
	}
	return false
}
