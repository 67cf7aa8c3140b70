package errors

import "fmt"

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nfe, ok := err.(*NotFoundError); ok {
		return nfe, true
	}
	return nil, false
}

// InsufficientStockError is returned when a requested consumption exceeds the
// sum of live batches for a product. It is never silently clamped.
type InsufficientStockError struct {
	Message   string
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return e.Message
}

func NewInsufficientStockError(productID, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		Message:   fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", productID, requested, available),
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	if ise, ok := err.(*InsufficientStockError); ok {
		return ise, true
	}
	return nil, false
}

// AlreadyConsumedError signals an idempotency violation: a stock-affecting
// transition was attempted on an order whose stock was already deducted.
// Callers should treat it as "already done", not as a retryable failure.
type AlreadyConsumedError struct {
	Message string
}

func (e *AlreadyConsumedError) Error() string {
	return e.Message
}

func NewAlreadyConsumedError(message string) *AlreadyConsumedError {
	return &AlreadyConsumedError{Message: message}
}

func IsAlreadyConsumedError(err error) (*AlreadyConsumedError, bool) {
	if ace, ok := err.(*AlreadyConsumedError); ok {
		return ace, true
	}
	return nil, false
}

// ConflictError signals a failed compare-and-swap on product stock or on an
// order version token. The caller decides whether to retry with fresh data;
// the core never retries on its own.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	if ce, ok := err.(*ConflictError); ok {
		return ce, true
	}
	return nil, false
}

type NotEditableError struct {
	Message string
}

func (e *NotEditableError) Error() string {
	return e.Message
}

func NewNotEditableError(message string) *NotEditableError {
	return &NotEditableError{Message: message}
}

func IsNotEditableError(err error) (*NotEditableError, bool) {
	if nee, ok := err.(*NotEditableError); ok {
		return nee, true
	}
	return nil, false
}

type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func NewInvalidStateError(message string) *InvalidStateError {
	return &InvalidStateError{Message: message}
}

func IsInvalidStateError(err error) (*InvalidStateError, bool) {
	if ise, ok := err.(*InvalidStateError); ok {
		return ise, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
