package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "batch not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestInsufficientStockError_Creation(t *testing.T) {
	err := NewInsufficientStockError(7, 20, 15)

	assert.Equal(t, 7, err.ProductID)
	assert.Equal(t, 20, err.Requested)
	assert.Equal(t, 15, err.Available)
	assert.Equal(t, "insufficient stock for product 7: requested 20, available 15", err.Error())
}

func TestInsufficientStockError_IsInsufficientStockError(t *testing.T) {
	var err error = NewInsufficientStockError(1, 5, 0)

	ise, ok := IsInsufficientStockError(err)
	assert.True(t, ok)
	assert.Equal(t, 5, ise.Requested)

	_, ok = IsInsufficientStockError(errors.New("other"))
	assert.False(t, ok)
}

func TestAlreadyConsumedError_DistinctFromConflict(t *testing.T) {
	consumed := NewAlreadyConsumedError("stock already consumed for order 3")
	conflict := NewConflictError("order version changed")

	_, ok := IsAlreadyConsumedError(consumed)
	assert.True(t, ok)
	_, ok = IsConflictError(consumed)
	assert.False(t, ok)

	_, ok = IsConflictError(conflict)
	assert.True(t, ok)
	_, ok = IsAlreadyConsumedError(conflict)
	assert.False(t, ok)
}

func TestConflictError_Creation(t *testing.T) {
	err := NewConflictError("concurrent stock modification on product 9")

	assert.Equal(t, "concurrent stock modification on product 9", err.Error())

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.NotNil(t, ce)
}

func TestNotEditableError_Creation(t *testing.T) {
	err := NewNotEditableError("sale transactions cannot be edited")

	nee, ok := IsNotEditableError(err)
	assert.True(t, ok)
	assert.Equal(t, "sale transactions cannot be edited", nee.Message)
}

func TestInvalidStateError_Creation(t *testing.T) {
	err := NewInvalidStateError("order is not in packing status")

	ise, ok := IsInvalidStateError(err)
	assert.True(t, ok)
	assert.Equal(t, "order is not in packing status", ise.Message)

	_, ok = IsInvalidStateError(errors.New("other"))
	assert.False(t, ok)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "quantity", Message: "quantity must be positive"},
		{Field: "productId", Message: "required field"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.Equal(t, "failed to query database: database error", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestInternalError_NoCause(t *testing.T) {
	err := NewInternalError("something broke", nil)

	assert.Equal(t, "something broke", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
