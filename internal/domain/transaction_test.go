package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func adjPtr(a AdjustmentType) *AdjustmentType {
	return &a
}

func TestInventoryTransaction_Editable_AllowList(t *testing.T) {
	editable := []AdjustmentType{
		AdjustmentWriteOff,
		AdjustmentProcessing,
		AdjustmentPacking,
		AdjustmentPackingReset,
	}

	for _, at := range editable {
		txn := InventoryTransaction{Type: TransactionTypeAdjustment, AdjustmentType: adjPtr(at)}
		assert.True(t, txn.Editable(), "adjustment %s should be editable", at)
	}
}

func TestInventoryTransaction_Editable_RejectsOutsideAllowList(t *testing.T) {
	correction := InventoryTransaction{
		Type:           TransactionTypeAdjustment,
		AdjustmentType: adjPtr(AdjustmentCountCorrection),
	}
	receipt := InventoryTransaction{
		Type:           TransactionTypeAdjustment,
		AdjustmentType: adjPtr(AdjustmentReceipt),
	}
	sale := InventoryTransaction{Type: TransactionTypeSale}
	bare := InventoryTransaction{Type: TransactionTypeAdjustment}

	assert.False(t, correction.Editable())
	assert.False(t, receipt.Editable())
	assert.False(t, sale.Editable())
	assert.False(t, bare.Editable())
}

func TestInventoryTransaction_IsDeduction(t *testing.T) {
	assert.True(t, InventoryTransaction{Quantity: -5}.IsDeduction())
	assert.False(t, InventoryTransaction{Quantity: 5}.IsDeduction())
	assert.False(t, InventoryTransaction{Quantity: 0}.IsDeduction())
}
