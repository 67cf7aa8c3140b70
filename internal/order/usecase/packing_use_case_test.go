package usecase

import (
	"context"
	"testing"
	"time"

	"packhouse/internal/domain"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPackingStore struct {
	StartPackingFunc  func(ctx context.Context, id uint, expectedVersion int) error
	PausePackingFunc  func(ctx context.Context, id uint, expectedVersion int) error
	ResumePackingFunc func(ctx context.Context, id uint, expectedVersion int) error
	ResetPackingFunc  func(ctx context.Context, id uint, expectedVersion int) error
}

func (m *mockPackingStore) StartPacking(ctx context.Context, id uint, expectedVersion int) error {
	return m.StartPackingFunc(ctx, id, expectedVersion)
}

func (m *mockPackingStore) PausePacking(ctx context.Context, id uint, expectedVersion int) error {
	return m.PausePackingFunc(ctx, id, expectedVersion)
}

func (m *mockPackingStore) ResumePacking(ctx context.Context, id uint, expectedVersion int) error {
	return m.ResumePackingFunc(ctx, id, expectedVersion)
}

func (m *mockPackingStore) ResetPacking(ctx context.Context, id uint, expectedVersion int) error {
	return m.ResetPackingFunc(ctx, id, expectedVersion)
}

func newPackingUseCase(orders OrderStore, packing PackingStore) *PackingUseCase {
	return NewPackingUseCase(orders, packing, &mockAuditSink{}, identity.NewFallbackResolver(), zap.NewNop())
}

func TestStartPacking_FromConfirmed(t *testing.T) {
	versionSeen := -1
	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.OrderStatusConfirmed, Version: 4}, nil
		},
	}
	packing := &mockPackingStore{
		StartPackingFunc: func(ctx context.Context, id uint, expectedVersion int) error {
			versionSeen = expectedVersion
			return nil
		},
	}

	err := newPackingUseCase(orders, packing).StartPacking(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, versionSeen)
}

func TestStartPacking_RejectsWrongStatus(t *testing.T) {
	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.OrderStatusPacking, Version: 4}, nil
		},
	}

	err := newPackingUseCase(orders, &mockPackingStore{}).StartPacking(context.Background(), 7, nil)
	require.Error(t, err)
	_, ok := apperrors.IsInvalidStateError(err)
	assert.True(t, ok)
}

func TestPausePacking_AlreadyPaused(t *testing.T) {
	paused := time.Now()
	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.OrderStatusPacking, PackingPausedAt: &paused}, nil
		},
	}

	err := newPackingUseCase(orders, &mockPackingStore{}).PausePacking(context.Background(), 7, nil)
	require.Error(t, err)
	_, ok := apperrors.IsInvalidStateError(err)
	assert.True(t, ok)
}

func TestResumePacking_RequiresPause(t *testing.T) {
	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.OrderStatusPacking}, nil
		},
	}

	err := newPackingUseCase(orders, &mockPackingStore{}).ResumePacking(context.Background(), 7, nil)
	require.Error(t, err)
	_, ok := apperrors.IsInvalidStateError(err)
	assert.True(t, ok)
}

func TestResetPacking_RejectedOnceStockConsumed(t *testing.T) {
	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.OrderStatusPacking, StockConsumed: true}, nil
		},
	}

	err := newPackingUseCase(orders, &mockPackingStore{}).ResetPacking(context.Background(), 7, nil)
	require.Error(t, err)
	_, ok := apperrors.IsAlreadyConsumedError(err)
	assert.True(t, ok)
}

func TestResetPacking_ClearsProgress(t *testing.T) {
	called := false
	orders := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.OrderStatusPacking, Version: 2}, nil
		},
	}
	packing := &mockPackingStore{
		ResetPackingFunc: func(ctx context.Context, id uint, expectedVersion int) error {
			called = true
			assert.Equal(t, 2, expectedVersion)
			return nil
		},
	}

	err := newPackingUseCase(orders, packing).ResetPacking(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.True(t, called)
}
