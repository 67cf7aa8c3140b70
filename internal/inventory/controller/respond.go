package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"

	"go.uber.org/zap"
)

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func writeValidationError(w http.ResponseWriter, logger *zap.Logger, message string, details ...apperrors.ValidationDetail) {
	writeJSON(w, logger, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func writeError(w http.ResponseWriter, logger *zap.Logger, traceID string, status int, code, message string) {
	writeJSON(w, logger, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func handleUseCaseError(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeValidationError(w, logger, ve.Message, ve.Details...)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, logger, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		writeError(w, logger, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}
	if _, ok := apperrors.IsInsufficientStockError(err); ok {
		writeError(w, logger, traceID, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", err.Error())
		return
	}
	if _, ok := apperrors.IsInvalidStateError(err); ok {
		writeError(w, logger, traceID, http.StatusUnprocessableEntity, "INVALID_STATE", err.Error())
		return
	}
	if _, ok := apperrors.IsNotEditableError(err); ok {
		writeError(w, logger, traceID, http.StatusUnprocessableEntity, "NOT_EDITABLE", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeError(w, logger, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}
