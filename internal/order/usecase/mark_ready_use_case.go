package usecase

import (
	"context"
	"fmt"
	"strconv"

	"packhouse/internal/audit"
	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/identity"
	"packhouse/internal/notify"

	"go.uber.org/zap"
)

// MarkReadyUseCase drives the ready-for-delivery transition. The cheap
// idempotency and status checks run here, before any transaction is opened;
// the service repeats them under the transaction because this optimistic
// read can race with a concurrent request.
type MarkReadyUseCase struct {
	orders    OrderStore
	fulfiller Fulfiller
	notifier  notify.Notifier
	auditor   audit.Sink
	resolver  identity.Resolver
	logger    *zap.Logger
}

func NewMarkReadyUseCase(
	orders OrderStore,
	fulfiller Fulfiller,
	notifier notify.Notifier,
	auditor audit.Sink,
	resolver identity.Resolver,
	logger *zap.Logger,
) *MarkReadyUseCase {
	return &MarkReadyUseCase{
		orders:    orders,
		fulfiller: fulfiller,
		notifier:  notifier,
		auditor:   auditor,
		resolver:  resolver,
		logger:    logger,
	}
}

func (uc *MarkReadyUseCase) MarkReady(ctx context.Context, orderID uint, actorID *int) (*dto.FulfillmentResult, error) {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StockConsumed {
		return nil, apperrors.NewAlreadyConsumedError(fmt.Sprintf("stock already consumed for order %d", orderID))
	}
	if !order.CanMarkReady() {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("order %d cannot be marked ready from status %q", orderID, order.Status))
	}

	result, err := uc.fulfiller.MarkReady(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}

	// Stock is committed at this point; notification failures are logged
	// and swallowed.
	if err := uc.notifier.OrderReady(ctx, order.CustomerEmail, order.CustomerName, order.OrderNumber, order.DeliveryDate); err != nil {
		uc.logger.Warn("order ready notification failed",
			zap.Uint("orderId", orderID),
			zap.String("orderNumber", order.OrderNumber),
			zap.Error(err),
		)
	}

	uc.auditor.Record(ctx, audit.Event{
		Actor:    identity.Describe(ctx, uc.resolver, actorID),
		Action:   "order.mark_ready",
		Entity:   "order",
		EntityID: strconv.FormatUint(uint64(orderID), 10),
		Before:   order.Status,
		After:    "ready_for_delivery",
	})

	return result, nil
}
