package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/inventory/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConsumeStockUseCase interface {
	ConsumeStock(ctx context.Context, in usecase.ConsumeStockInput) (*dto.ConsumptionResult, error)
}

type SyncStockUseCase interface {
	SyncProductCurrentStock(ctx context.Context, productID int) (int, error)
}

type ReceiveStockUseCase interface {
	ReceiveStock(ctx context.Context, in usecase.ReceiveStockInput) (*usecase.ReceiveStockOutput, error)
}

type ProcessStockUseCase interface {
	ProcessStock(ctx context.Context, in usecase.ProcessStockInput) (*usecase.ProcessStockOutput, error)
}

type LowStockUseCase interface {
	ListLowStock(ctx context.Context) ([]dto.LowStockWarning, error)
}

// StockController exposes the product-level stock operations used by the
// back office.
type StockController struct {
	consume  ConsumeStockUseCase
	sync     SyncStockUseCase
	receive  ReceiveStockUseCase
	process  ProcessStockUseCase
	lowStock LowStockUseCase
	logger   *zap.Logger
}

func NewStockController(
	consume ConsumeStockUseCase,
	sync SyncStockUseCase,
	receive ReceiveStockUseCase,
	process ProcessStockUseCase,
	lowStock LowStockUseCase,
	logger *zap.Logger,
) *StockController {
	return &StockController{
		consume:  consume,
		sync:     sync,
		receive:  receive,
		process:  process,
		lowStock: lowStock,
		logger:   logger,
	}
}

func (c *StockController) ConsumeStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, ok := parseProductID(w, r, logger)
	if !ok {
		return
	}

	var req dto.ConsumeStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Quantity <= 0 {
		writeValidationError(w, logger, "invalid quantity", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive integer",
		})
		return
	}

	result, err := c.consume.ConsumeStock(r.Context(), usecase.ConsumeStockInput{
		ProductID:     productID,
		Quantity:      req.Quantity,
		TransactionID: req.TransactionID,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		CreatedBy:     req.UserID,
	})
	if err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	lines := make([]dto.ConsumptionLineDTO, len(result.Lines))
	for i, line := range result.Lines {
		lines[i] = dto.ConsumptionLineDTO{
			BatchID:          line.BatchID,
			QuantityConsumed: line.QuantityConsumed,
			CostPerUnit:      line.CostPerUnit,
			TotalCost:        line.TotalCost,
		}
	}

	writeJSON(w, logger, http.StatusOK, dto.ConsumeStockResponse{
		TraceID:          traceID,
		ProductID:        productID,
		QuantityConsumed: result.TotalConsumed(),
		Lines:            lines,
		ExpiryWarnings:   dto.NewExpiryWarningDTOs(result.ExpiryWarnings),
		Timestamp:        time.Now().UTC(),
	})
}

func (c *StockController) SyncStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, ok := parseProductID(w, r, logger)
	if !ok {
		return
	}

	stock, err := c.sync.SyncProductCurrentStock(r.Context(), productID)
	if err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.SyncStockResponse{
		TraceID:      traceID,
		ProductID:    productID,
		CurrentStock: stock,
		Timestamp:    time.Now().UTC(),
	})
}

func (c *StockController) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, ok := parseProductID(w, r, logger)
	if !ok {
		return
	}

	var req dto.ReceiveStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	var details []apperrors.ValidationDetail
	if req.Quantity <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be a positive integer",
		})
	}
	if req.CostPerUnit < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "costPerUnit",
			Message: "costPerUnit must be non-negative",
		})
	}
	if len(details) > 0 {
		writeValidationError(w, logger, "validation failed", details...)
		return
	}

	result, err := c.receive.ReceiveStock(r.Context(), usecase.ReceiveStockInput{
		ProductID:   productID,
		Quantity:    req.Quantity,
		CostPerUnit: req.CostPerUnit,
		ExpiryDate:  req.ExpiryDate,
		SupplierID:  req.SupplierID,
		CreatedBy:   req.UserID,
		Notes:       req.Notes,
	})
	if err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusCreated, dto.ReceiveStockResponse{
		TraceID:       traceID,
		ProductID:     productID,
		BatchID:       result.BatchID,
		TransactionID: result.TransactionID,
		NewStock:      result.NewStock,
		Timestamp:     time.Now().UTC(),
	})
}

func (c *StockController) ProcessStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ProcessStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	result, err := c.process.ProcessStock(r.Context(), usecase.ProcessStockInput{
		SourceProductID: req.SourceProductID,
		TargetProductID: req.TargetProductID,
		Quantity:        req.Quantity,
		LossQuantity:    req.LossQuantity,
		CreatedBy:       req.UserID,
		Notes:           req.Notes,
	})
	if err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusCreated, dto.ProcessStockResponse{
		TraceID:             traceID,
		BatchNumber:         result.BatchNumber,
		SourceTransactionID: result.SourceTransactionID,
		TargetTransactionID: result.TargetTransactionID,
		OutputQuantity:      result.OutputQuantity,
		TargetBatchID:       result.TargetBatchID,
		Timestamp:           time.Now().UTC(),
	})
}

func (c *StockController) ListLowStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	warnings, err := c.lowStock.ListLowStock(r.Context())
	if err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.LowStockResponse{
		TraceID:   traceID,
		Products:  dto.NewLowStockWarningDTOs(warnings),
		Timestamp: time.Now().UTC(),
	})
}

func parseProductID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	productIDStr := chi.URLParam(r, "productId")
	productID, err := strconv.Atoi(productIDStr)
	if err != nil || productID <= 0 {
		logger.Warn("invalid productId in path", zap.String("productId", productIDStr))
		writeValidationError(w, logger, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return 0, false
	}
	return productID, true
}
