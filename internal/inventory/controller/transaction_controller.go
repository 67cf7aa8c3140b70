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

type EditTransactionUseCase interface {
	EditTransaction(ctx context.Context, in usecase.EditTransactionInput) error
}

type TransactionController struct {
	useCase EditTransactionUseCase
	logger  *zap.Logger
}

func NewTransactionController(useCase EditTransactionUseCase, logger *zap.Logger) *TransactionController {
	return &TransactionController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *TransactionController) Edit(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	transactionIDStr := chi.URLParam(r, "transactionId")
	transactionID, err := strconv.ParseInt(transactionIDStr, 10, 64)
	if err != nil || transactionID <= 0 {
		logger.Warn("invalid transactionId in path", zap.String("transactionId", transactionIDStr))
		writeValidationError(w, logger, "invalid transactionId", apperrors.ValidationDetail{
			Field:   "transactionId",
			Message: "transactionId must be a positive integer",
		})
		return
	}

	var req dto.EditTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	var details []apperrors.ValidationDetail
	if req.NewQuantity == nil || *req.NewQuantity < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "newQuantity",
			Message: "newQuantity is required and must be zero or a positive integer",
		})
	}
	if req.EditReason == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "editReason",
			Message: "editReason is required",
		})
	}
	if len(details) > 0 {
		writeValidationError(w, logger, "validation failed", details...)
		return
	}

	if err := c.useCase.EditTransaction(r.Context(), usecase.EditTransactionInput{
		TransactionID: transactionID,
		NewQuantity:   *req.NewQuantity,
		Notes:         req.Notes,
		EditReason:    req.EditReason,
		EditedBy:      req.UserID,
	}); err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.EditTransactionResponse{
		TraceID:       traceID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	})
}
