package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"packhouse/internal/domain"
	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MarkReadyUseCase interface {
	MarkReady(ctx context.Context, orderID uint, actorID *int) (*dto.FulfillmentResult, error)
}

type UpdateQuantityUseCase interface {
	UpdateQuantity(ctx context.Context, orderID uint, productID, newQuantity int, updatedBy *int) (*dto.QuantityUpdateResult, error)
}

type FulfillmentController struct {
	markReady      MarkReadyUseCase
	updateQuantity UpdateQuantityUseCase
	logger         *zap.Logger
}

func NewFulfillmentController(markReady MarkReadyUseCase, updateQuantity UpdateQuantityUseCase, logger *zap.Logger) *FulfillmentController {
	return &FulfillmentController{
		markReady:      markReady,
		updateQuantity: updateQuantity,
		logger:         logger,
	}
}

func (c *FulfillmentController) MarkReady(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := parseOrderID(w, r, logger)
	if !ok {
		return
	}

	var req dto.MarkReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	result, err := c.markReady.MarkReady(r.Context(), orderID, req.UserID)
	if err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.MarkReadyResponse{
		TraceID:          traceID,
		OrderID:          result.OrderID,
		Status:           domain.OrderStatusReadyForDelivery,
		ConsumedLines:    result.ConsumedLines,
		ExpiryWarnings:   dto.NewExpiryWarningDTOs(result.ExpiryWarnings),
		LowStockWarnings: dto.NewLowStockWarningDTOs(result.LowStockWarnings),
		SkippedProducts:  result.SkippedProducts,
		Timestamp:        time.Now().UTC(),
	})
}

func (c *FulfillmentController) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := parseOrderID(w, r, logger)
	if !ok {
		return
	}

	productIDStr := chi.URLParam(r, "productId")
	productID, err := strconv.Atoi(productIDStr)
	if err != nil || productID <= 0 {
		logger.Warn("invalid productId in path", zap.String("productId", productIDStr))
		writeValidationError(w, logger, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	var req dto.UpdateItemQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.NewQuantity == nil || *req.NewQuantity < 0 {
		writeValidationError(w, logger, "invalid newQuantity", apperrors.ValidationDetail{
			Field:   "newQuantity",
			Message: "newQuantity is required and must be zero or a positive integer",
		})
		return
	}

	result, err := c.updateQuantity.UpdateQuantity(r.Context(), orderID, productID, *req.NewQuantity, req.UserID)
	if err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.QuantityUpdateResponse{
		TraceID:       traceID,
		OrderID:       result.OrderID,
		ProductID:     result.ProductID,
		NewQuantity:   result.NewQuantity,
		NewStock:      result.NewStock,
		NewSubtotal:   result.NewSubtotal,
		NewOrderTotal: result.NewOrderTotal,
		Timestamp:     time.Now().UTC(),
	})
}

func parseOrderID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uint, bool) {
	orderIDStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil || orderID == 0 {
		logger.Warn("invalid orderId in path", zap.String("orderId", orderIDStr))
		writeValidationError(w, logger, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return uint(orderID), true
}
