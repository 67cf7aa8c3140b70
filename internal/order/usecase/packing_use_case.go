package usecase

import (
	"context"
	"fmt"
	"strconv"

	"packhouse/internal/audit"
	"packhouse/internal/domain"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/identity"

	"go.uber.org/zap"
)

// PackingUseCase drives the packing sub-lifecycle. Each transition is a
// single guarded UPDATE carrying the version token, so these flows need no
// explicit transaction: the status checks here give callers precise errors,
// and the guarded write catches any race that slips past them.
type PackingUseCase struct {
	orders   OrderStore
	packing  PackingStore
	auditor  audit.Sink
	resolver identity.Resolver
	logger   *zap.Logger
}

func NewPackingUseCase(
	orders OrderStore,
	packing PackingStore,
	auditor audit.Sink,
	resolver identity.Resolver,
	logger *zap.Logger,
) *PackingUseCase {
	return &PackingUseCase{
		orders:   orders,
		packing:  packing,
		auditor:  auditor,
		resolver: resolver,
		logger:   logger,
	}
}

func (uc *PackingUseCase) StartPacking(ctx context.Context, orderID uint, actor *int) error {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusConfirmed {
		return apperrors.NewInvalidStateError(fmt.Sprintf("order %d cannot start packing from status %q", orderID, order.Status))
	}

	if err := uc.packing.StartPacking(ctx, orderID, order.Version); err != nil {
		return err
	}

	uc.audit(ctx, "order.start_packing", orderID, actor, order.Status, domain.OrderStatusPacking)
	return nil
}

func (uc *PackingUseCase) PausePacking(ctx context.Context, orderID uint, actor *int) error {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPacking {
		return apperrors.NewInvalidStateError(fmt.Sprintf("order %d is not being packed", orderID))
	}
	if order.IsPaused() {
		return apperrors.NewInvalidStateError(fmt.Sprintf("packing of order %d is already paused", orderID))
	}

	if err := uc.packing.PausePacking(ctx, orderID, order.Version); err != nil {
		return err
	}

	uc.audit(ctx, "order.pause_packing", orderID, actor, "packing", "packing_paused")
	return nil
}

func (uc *PackingUseCase) ResumePacking(ctx context.Context, orderID uint, actor *int) error {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.IsPaused() {
		return apperrors.NewInvalidStateError(fmt.Sprintf("packing of order %d is not paused", orderID))
	}

	if err := uc.packing.ResumePacking(ctx, orderID, order.Version); err != nil {
		return err
	}

	uc.audit(ctx, "order.resume_packing", orderID, actor, "packing_paused", "packing")
	return nil
}

// ResetPacking returns the order to confirmed and clears packing progress.
// It is only legal while no stock has been consumed: a reset never needs
// compensating ledger entries because nothing was deducted yet.
func (uc *PackingUseCase) ResetPacking(ctx context.Context, orderID uint, actor *int) error {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.StockConsumed {
		return apperrors.NewAlreadyConsumedError(fmt.Sprintf("stock already consumed for order %d; packing cannot be reset", orderID))
	}
	if order.Status != domain.OrderStatusPacking {
		return apperrors.NewInvalidStateError(fmt.Sprintf("order %d is not being packed", orderID))
	}

	if err := uc.packing.ResetPacking(ctx, orderID, order.Version); err != nil {
		return err
	}

	uc.audit(ctx, "order.reset_packing", orderID, actor, order.Status, domain.OrderStatusConfirmed)
	return nil
}

func (uc *PackingUseCase) audit(ctx context.Context, action string, orderID uint, actor *int, before, after string) {
	uc.auditor.Record(ctx, audit.Event{
		Actor:    identity.Describe(ctx, uc.resolver, actor),
		Action:   action,
		Entity:   "order",
		EntityID: strconv.FormatUint(uint64(orderID), 10),
		Before:   before,
		After:    after,
	})
}
