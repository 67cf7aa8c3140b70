package dto

import "time"

// Request bodies. Quantities arrive as pointers so that a missing field can
// be told apart from an explicit zero during validation.

type MarkReadyRequest struct {
	UserID *int `json:"userId"`
}

type UpdateItemQuantityRequest struct {
	NewQuantity *int `json:"newQuantity"`
	UserID      *int `json:"userId"`
}

type PackingActionRequest struct {
	UserID *int `json:"userId"`
}

type ConsumeStockRequest struct {
	Quantity      int     `json:"quantity"`
	TransactionID int64   `json:"transactionId"`
	ReferenceType *string `json:"referenceType"`
	ReferenceID   *int64  `json:"referenceId"`
	UserID        *int    `json:"userId"`
}

type ReceiveStockRequest struct {
	Quantity    int        `json:"quantity"`
	CostPerUnit int64      `json:"costPerUnit"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	SupplierID  *int       `json:"supplierId"`
	Notes       string     `json:"notes"`
	UserID      *int       `json:"userId"`
}

type WriteOffBatchRequest struct {
	Reason string `json:"reason"`
	UserID *int   `json:"userId"`
}

type UpdateBatchQuantityRequest struct {
	NewQuantity *int `json:"newQuantity"`
	UserID      *int `json:"userId"`
}

type EditTransactionRequest struct {
	NewQuantity *int   `json:"newQuantity"`
	Notes       string `json:"notes"`
	EditReason  string `json:"editReason"`
	UserID      *int   `json:"userId"`
}

type ProcessStockRequest struct {
	SourceProductID int    `json:"sourceProductId"`
	TargetProductID int    `json:"targetProductId"`
	Quantity        int    `json:"quantity"`
	LossQuantity    int    `json:"lossQuantity"`
	Notes           string `json:"notes"`
	UserID          *int   `json:"userId"`
}

// Response bodies.

type ExpiryWarningDTO struct {
	BatchID          int64     `json:"batchId"`
	ProductID        int       `json:"productId"`
	ExpiryDate       time.Time `json:"expiryDate"`
	QuantityConsumed int       `json:"quantityConsumed"`
}

type LowStockWarningDTO struct {
	ProductID    int `json:"productId"`
	CurrentStock int `json:"currentStock"`
	Threshold    int `json:"threshold"`
}

type ConsumptionLineDTO struct {
	BatchID          int64 `json:"batchId"`
	QuantityConsumed int   `json:"quantityConsumed"`
	CostPerUnit      int64 `json:"costPerUnit"`
	TotalCost        int64 `json:"totalCost"`
}

type MarkReadyResponse struct {
	TraceID          string               `json:"traceId"`
	OrderID          uint                 `json:"orderId"`
	Status           string               `json:"status"`
	ConsumedLines    int                  `json:"consumedLines"`
	ExpiryWarnings   []ExpiryWarningDTO   `json:"expiryWarnings"`
	LowStockWarnings []LowStockWarningDTO `json:"lowStockWarnings"`
	SkippedProducts  []int                `json:"skippedProducts"`
	Timestamp        time.Time            `json:"timestamp"`
}

type QuantityUpdateResponse struct {
	TraceID       string    `json:"traceId"`
	OrderID       uint      `json:"orderId"`
	ProductID     int       `json:"productId"`
	NewQuantity   int       `json:"newQuantity"`
	NewStock      int       `json:"newStock"`
	NewSubtotal   int64     `json:"newSubtotal"`
	NewOrderTotal int64     `json:"newOrderTotal"`
	Timestamp     time.Time `json:"timestamp"`
}

type PackingActionResponse struct {
	TraceID   string    `json:"traceId"`
	OrderID   uint      `json:"orderId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type ConsumeStockResponse struct {
	TraceID          string               `json:"traceId"`
	ProductID        int                  `json:"productId"`
	QuantityConsumed int                  `json:"quantityConsumed"`
	Lines            []ConsumptionLineDTO `json:"lines"`
	ExpiryWarnings   []ExpiryWarningDTO   `json:"expiryWarnings"`
	Timestamp        time.Time            `json:"timestamp"`
}

type SyncStockResponse struct {
	TraceID      string    `json:"traceId"`
	ProductID    int       `json:"productId"`
	CurrentStock int       `json:"currentStock"`
	Timestamp    time.Time `json:"timestamp"`
}

type ReceiveStockResponse struct {
	TraceID       string    `json:"traceId"`
	ProductID     int       `json:"productId"`
	BatchID       int64     `json:"batchId"`
	TransactionID int64     `json:"transactionId"`
	NewStock      int       `json:"newStock"`
	Timestamp     time.Time `json:"timestamp"`
}

type BatchAdjustmentResponse struct {
	TraceID   string    `json:"traceId"`
	BatchID   int64     `json:"batchId"`
	Timestamp time.Time `json:"timestamp"`
}

type EditTransactionResponse struct {
	TraceID       string    `json:"traceId"`
	TransactionID int64     `json:"transactionId"`
	Timestamp     time.Time `json:"timestamp"`
}

type ProcessStockResponse struct {
	TraceID             string    `json:"traceId"`
	BatchNumber         string    `json:"batchNumber"`
	SourceTransactionID int64     `json:"sourceTransactionId"`
	TargetTransactionID int64     `json:"targetTransactionId"`
	OutputQuantity      int       `json:"outputQuantity"`
	TargetBatchID       int64     `json:"targetBatchId"`
	Timestamp           time.Time `json:"timestamp"`
}

type LowStockResponse struct {
	TraceID   string               `json:"traceId"`
	Products  []LowStockWarningDTO `json:"products"`
	Timestamp time.Time            `json:"timestamp"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpiryWarningDTOs(warnings []ExpiryWarning) []ExpiryWarningDTO {
	out := make([]ExpiryWarningDTO, len(warnings))
	for i, w := range warnings {
		out[i] = ExpiryWarningDTO{
			BatchID:          w.BatchID,
			ProductID:        w.ProductID,
			ExpiryDate:       w.ExpiryDate,
			QuantityConsumed: w.QuantityConsumed,
		}
	}
	return out
}

func NewLowStockWarningDTOs(warnings []LowStockWarning) []LowStockWarningDTO {
	out := make([]LowStockWarningDTO, len(warnings))
	for i, w := range warnings {
		out[i] = LowStockWarningDTO{
			ProductID:    w.ProductID,
			CurrentStock: w.CurrentStock,
			Threshold:    w.Threshold,
		}
	}
	return out
}
