package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"packhouse/internal/audit"
	"packhouse/internal/domain"
	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockOrderStore struct {
	FindByIDFunc func(ctx context.Context, id uint) (*domain.Order, error)
}

func (m *mockOrderStore) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockFulfiller struct {
	MarkReadyFunc          func(ctx context.Context, orderID uint, actor *int) (*dto.FulfillmentResult, error)
	UpdateItemQuantityFunc func(ctx context.Context, orderID uint, productID, newQuantity int, actor *int) (*dto.QuantityUpdateResult, error)
}

func (m *mockFulfiller) MarkReady(ctx context.Context, orderID uint, actor *int) (*dto.FulfillmentResult, error) {
	return m.MarkReadyFunc(ctx, orderID, actor)
}

func (m *mockFulfiller) UpdateItemQuantity(ctx context.Context, orderID uint, productID, newQuantity int, actor *int) (*dto.QuantityUpdateResult, error) {
	return m.UpdateItemQuantityFunc(ctx, orderID, productID, newQuantity, actor)
}

type mockNotifier struct {
	OrderReadyFunc func(ctx context.Context, customerEmail, customerName, orderNumber string, deliveryDate *time.Time) error
	calls          int
}

func (m *mockNotifier) OrderReady(ctx context.Context, customerEmail, customerName, orderNumber string, deliveryDate *time.Time) error {
	m.calls++
	if m.OrderReadyFunc == nil {
		return nil
	}
	return m.OrderReadyFunc(ctx, customerEmail, customerName, orderNumber, deliveryDate)
}

type mockAuditSink struct {
	events []audit.Event
}

func (m *mockAuditSink) Record(_ context.Context, event audit.Event) {
	m.events = append(m.events, event)
}

func confirmedOrder(id uint) *domain.Order {
	return &domain.Order{
		ID:            id,
		OrderNumber:   "ORD-42",
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Status:        domain.OrderStatusConfirmed,
		Version:       1,
	}
}

func TestMarkReady_HappyPathNotifiesAndAudits(t *testing.T) {
	notifier := &mockNotifier{}
	auditor := &mockAuditSink{}

	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return confirmedOrder(id), nil
		},
	}
	fulfiller := &mockFulfiller{
		MarkReadyFunc: func(ctx context.Context, orderID uint, actor *int) (*dto.FulfillmentResult, error) {
			return &dto.FulfillmentResult{OrderID: orderID, ConsumedLines: 2}, nil
		},
	}

	uc := NewMarkReadyUseCase(orders, fulfiller, notifier, auditor, identity.NewFallbackResolver(), zap.NewNop())

	result, err := uc.MarkReady(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(7), result.OrderID)
	assert.Equal(t, 1, notifier.calls)
	require.Len(t, auditor.events, 1)
	assert.Equal(t, "order.mark_ready", auditor.events[0].Action)
	assert.Equal(t, "system", auditor.events[0].Actor)
}

func TestMarkReady_NotificationFailureDoesNotFailOperation(t *testing.T) {
	notifier := &mockNotifier{
		OrderReadyFunc: func(ctx context.Context, customerEmail, customerName, orderNumber string, deliveryDate *time.Time) error {
			return errors.New("smtp unreachable")
		},
	}

	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return confirmedOrder(id), nil
		},
	}
	fulfiller := &mockFulfiller{
		MarkReadyFunc: func(ctx context.Context, orderID uint, actor *int) (*dto.FulfillmentResult, error) {
			return &dto.FulfillmentResult{OrderID: orderID}, nil
		},
	}

	uc := NewMarkReadyUseCase(orders, fulfiller, notifier, &mockAuditSink{}, identity.NewFallbackResolver(), zap.NewNop())

	_, err := uc.MarkReady(context.Background(), 7, nil)
	require.NoError(t, err)
}

func TestMarkReady_OptimisticIdempotencyCheck(t *testing.T) {
	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			order := confirmedOrder(id)
			order.StockConsumed = true
			return order, nil
		},
	}
	fulfiller := &mockFulfiller{
		MarkReadyFunc: func(ctx context.Context, orderID uint, actor *int) (*dto.FulfillmentResult, error) {
			t.Fatal("fulfillment must not start when stock is already consumed")
			return nil, nil
		},
	}

	uc := NewMarkReadyUseCase(orders, fulfiller, &mockNotifier{}, &mockAuditSink{}, identity.NewFallbackResolver(), zap.NewNop())

	_, err := uc.MarkReady(context.Background(), 7, nil)
	require.Error(t, err)
	_, ok := apperrors.IsAlreadyConsumedError(err)
	assert.True(t, ok)
}

func TestMarkReady_IllegalStatus(t *testing.T) {
	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			order := confirmedOrder(id)
			order.Status = domain.OrderStatusReadyForDelivery
			return order, nil
		},
	}

	uc := NewMarkReadyUseCase(orders, &mockFulfiller{}, &mockNotifier{}, &mockAuditSink{}, identity.NewFallbackResolver(), zap.NewNop())

	_, err := uc.MarkReady(context.Background(), 7, nil)
	require.Error(t, err)
	_, ok := apperrors.IsInvalidStateError(err)
	assert.True(t, ok)
}
