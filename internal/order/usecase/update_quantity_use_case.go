package usecase

import (
	"context"
	"fmt"
	"strconv"

	"packhouse/internal/audit"
	"packhouse/internal/domain"
	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/identity"

	"go.uber.org/zap"
)

// UpdateQuantityUseCase adjusts an order line while the order is being
// packed, keeping the stock ledger and the order totals in step.
type UpdateQuantityUseCase struct {
	orders    OrderStore
	fulfiller Fulfiller
	auditor   audit.Sink
	resolver  identity.Resolver
	logger    *zap.Logger
}

func NewUpdateQuantityUseCase(
	orders OrderStore,
	fulfiller Fulfiller,
	auditor audit.Sink,
	resolver identity.Resolver,
	logger *zap.Logger,
) *UpdateQuantityUseCase {
	return &UpdateQuantityUseCase{
		orders:    orders,
		fulfiller: fulfiller,
		auditor:   auditor,
		resolver:  resolver,
		logger:    logger,
	}
}

func (uc *UpdateQuantityUseCase) UpdateQuantity(ctx context.Context, orderID uint, productID, newQuantity int, updatedBy *int) (*dto.QuantityUpdateResult, error) {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StockConsumed {
		return nil, apperrors.NewAlreadyConsumedError(fmt.Sprintf("stock already consumed for order %d; quantities can no longer be adjusted", orderID))
	}
	if order.Status != domain.OrderStatusPacking {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("order %d is not being packed", orderID))
	}

	result, err := uc.fulfiller.UpdateItemQuantity(ctx, orderID, productID, newQuantity, updatedBy)
	if err != nil {
		return nil, err
	}

	uc.auditor.Record(ctx, audit.Event{
		Actor:    identity.Describe(ctx, uc.resolver, updatedBy),
		Action:   "order.update_item_quantity",
		Entity:   "order",
		EntityID: strconv.FormatUint(uint64(orderID), 10),
		Before:   fmt.Sprintf("product %d", productID),
		After:    newQuantity,
	})

	return result, nil
}
