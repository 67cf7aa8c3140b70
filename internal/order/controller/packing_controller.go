package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"packhouse/internal/domain"
	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PackingUseCase interface {
	StartPacking(ctx context.Context, orderID uint, actor *int) error
	PausePacking(ctx context.Context, orderID uint, actor *int) error
	ResumePacking(ctx context.Context, orderID uint, actor *int) error
	ResetPacking(ctx context.Context, orderID uint, actor *int) error
}

type PackingController struct {
	useCase PackingUseCase
	logger  *zap.Logger
}

func NewPackingController(useCase PackingUseCase, logger *zap.Logger) *PackingController {
	return &PackingController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *PackingController) Start(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, c.useCase.StartPacking, domain.OrderStatusPacking)
}

func (c *PackingController) Pause(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, c.useCase.PausePacking, domain.OrderStatusPacking)
}

func (c *PackingController) Resume(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, c.useCase.ResumePacking, domain.OrderStatusPacking)
}

func (c *PackingController) Reset(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, c.useCase.ResetPacking, domain.OrderStatusConfirmed)
}

func (c *PackingController) handle(w http.ResponseWriter, r *http.Request, action func(context.Context, uint, *int) error, resultStatus string) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := parseOrderID(w, r, logger)
	if !ok {
		return
	}

	var req dto.PackingActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeValidationError(w, logger, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := action(r.Context(), orderID, req.UserID); err != nil {
		handleUseCaseError(w, logger, traceID, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, dto.PackingActionResponse{
		TraceID:   traceID,
		OrderID:   orderID,
		Status:    resultStatus,
		Timestamp: time.Now().UTC(),
	})
}
