package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int {
	return &i
}

func TestProduct_IsSubproduct(t *testing.T) {
	parent := Product{ID: 1}
	sub := Product{ID: 2, ParentProductID: intPtr(1)}

	assert.False(t, parent.IsSubproduct())
	assert.True(t, sub.IsSubproduct())
}

func TestSubproductStock_TwentyPercentLoss(t *testing.T) {
	assert.Equal(t, 64, SubproductStock(80, 20))
	assert.Equal(t, 80, SubproductStock(100, 20))
}

func TestSubproductStock_Floors(t *testing.T) {
	// 7 * 0.85 = 5.95 -> 5
	assert.Equal(t, 5, SubproductStock(7, 15))
}

func TestSubproductStock_ClampsAtZero(t *testing.T) {
	assert.Equal(t, 0, SubproductStock(0, 20))
	assert.Equal(t, 0, SubproductStock(-5, 20))
	assert.Equal(t, 0, SubproductStock(10, 100))
}

func TestSubproductStock_MultiLevelComposesMultiplicatively(t *testing.T) {
	// Root 100 -> level 1 at 20% loss -> level 2 at 10% loss.
	level1 := SubproductStock(100, 20)
	level2 := SubproductStock(level1, 10)

	assert.Equal(t, 80, level1)
	assert.Equal(t, 72, level2)
}

func TestParentConsumption_CeilsRequirement(t *testing.T) {
	// 64 subproduct units at 20% loss require 80 parent units.
	assert.Equal(t, 80, ParentConsumption(64, 20))
	// 10 units at 15% loss: 10 / 0.85 = 11.76 -> 12.
	assert.Equal(t, 12, ParentConsumption(10, 15))
	// No loss passes through unchanged.
	assert.Equal(t, 10, ParentConsumption(10, 0))
}

func TestParentConsumption_DegenerateInputs(t *testing.T) {
	assert.Equal(t, 0, ParentConsumption(0, 20))
	assert.Equal(t, 0, ParentConsumption(-3, 20))
	assert.Equal(t, 0, ParentConsumption(10, 100))
}

func TestProduct_BelowThreshold(t *testing.T) {
	p := Product{CurrentStock: 5, LowStockThreshold: 5}
	assert.True(t, p.BelowThreshold())

	p.CurrentStock = 6
	assert.False(t, p.BelowThreshold())
}
