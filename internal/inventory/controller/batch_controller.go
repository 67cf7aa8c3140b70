package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdjustBatchUseCase interface {
	MarkBatchConsumed(ctx context.Context, batchID int64, reason string, createdBy *int) error
	UpdateBatchQuantity(ctx context.Context, batchID int64, newQuantity int, createdBy *int) error
}

type BatchController struct {
	useCase AdjustBatchUseCase
	logger  *zap.Logger
}

func NewBatchController(useCase AdjustBatchUseCase, logger *zap.Logger) *BatchController {
	return &BatchController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *BatchController) WriteOff(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	batchID, ok := parseBatchID(w, r, logger)
	if !ok {
		return
	}

	var req dto.WriteOffBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := c.useCase.MarkBatchConsumed(r.Context(), batchID, req.Reason, req.UserID); err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.BatchAdjustmentResponse{
		TraceID:   traceID,
		BatchID:   batchID,
		Timestamp: time.Now().UTC(),
	})
}

func (c *BatchController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	batchID, ok := parseBatchID(w, r, logger)
	if !ok {
		return
	}

	var req dto.UpdateBatchQuantityRequest
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

	if err := c.useCase.UpdateBatchQuantity(r.Context(), batchID, *req.NewQuantity, req.UserID); err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.BatchAdjustmentResponse{
		TraceID:   traceID,
		BatchID:   batchID,
		Timestamp: time.Now().UTC(),
	})
}

func parseBatchID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	batchIDStr := chi.URLParam(r, "batchId")
	batchID, err := strconv.ParseInt(batchIDStr, 10, 64)
	if err != nil || batchID <= 0 {
		logger.Warn("invalid batchId in path", zap.String("batchId", batchIDStr))
		writeValidationError(w, logger, "invalid batchId", apperrors.ValidationDetail{
			Field:   "batchId",
			Message: "batchId must be a positive integer",
		})
		return 0, false
	}
	return batchID, true
}
