package usecase

import (
	"context"

	"packhouse/internal/domain"
	"packhouse/internal/dto"
)

type OrderStore interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
}

type PackingStore interface {
	StartPacking(ctx context.Context, id uint, expectedVersion int) error
	PausePacking(ctx context.Context, id uint, expectedVersion int) error
	ResumePacking(ctx context.Context, id uint, expectedVersion int) error
	ResetPacking(ctx context.Context, id uint, expectedVersion int) error
}

type Fulfiller interface {
	MarkReady(ctx context.Context, orderID uint, actor *int) (*dto.FulfillmentResult, error)
	UpdateItemQuantity(ctx context.Context, orderID uint, productID, newQuantity int, actor *int) (*dto.QuantityUpdateResult, error)
}
