package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"packhouse/internal/domain"
	"packhouse/internal/dto"
	apperrors "packhouse/internal/errors"
	invservice "packhouse/internal/inventory/service"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	FindItems(ctx context.Context, tx *sql.Tx, orderID uint) ([]domain.OrderItem, error)
	FindItem(ctx context.Context, tx *sql.Tx, orderID uint, productID int) (*domain.OrderItem, error)
	MarkReady(ctx context.Context, tx *sql.Tx, id uint, expectedVersion int) error
	UpdateItemQuantity(ctx context.Context, tx *sql.Tx, itemID uint, quantity int, totalPrice int64) error
	UpdateTotals(ctx context.Context, tx *sql.Tx, id uint, subtotal, totalAmount int64, expectedVersion int) error
}

type ProductRepository interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	UpdateStockCAS(ctx context.Context, tx *sql.Tx, id, previousStock, newStock int) error
}

type BatchRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, batch domain.InventoryBatch) (int64, error)
}

type Consumer interface {
	Consume(ctx context.Context, tx *sql.Tx, productID, quantity int, transactionID int64) (*dto.ConsumptionResult, error)
}

type Synchronizer interface {
	Recompute(ctx context.Context, tx *sql.Tx, productID int) (int, error)
	Cascade(ctx context.Context, tx *sql.Tx, productID, parentStock int) error
}

type Recorder interface {
	Record(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error)
}

// FulfillmentService orchestrates order-level stock transitions. Every
// multi-step mutation runs inside a single transaction: batch debits, ledger
// entries, stock recomputation, cascade and the order's own state write
// commit together or not at all.
type FulfillmentService struct {
	db        TransactionManager
	orders    OrderRepository
	products  ProductRepository
	batches   BatchRepository
	consumer  Consumer
	syncer    Synchronizer
	recorder  Recorder
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewFulfillmentService(
	db TransactionManager,
	orders OrderRepository,
	products ProductRepository,
	batches BatchRepository,
	consumer Consumer,
	syncer Synchronizer,
	recorder Recorder,
	logger *zap.Logger,
	txTimeout time.Duration,
) *FulfillmentService {
	return &FulfillmentService{
		db:        db,
		orders:    orders,
		products:  products,
		batches:   batches,
		consumer:  consumer,
		syncer:    syncer,
		recorder:  recorder,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

const orderReferenceType = "order"

// classifyLockError maps MySQL deadlocks (1213) and lock wait timeouts
// (1205) to a ConflictError: a concurrent writer won and the caller decides
// whether to retry with fresh data. Anything else passes through untouched.
func classifyLockError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && (mysqlErr.Number == 1213 || mysqlErr.Number == 1205) {
		return apperrors.NewConflictError("stock rows locked by a concurrent operation")
	}
	return err
}

type lineRequirement struct {
	product  *domain.Product
	quantity int
}

// MarkReady deducts stock for every order line and commits the
// ready-for-delivery transition. The idempotency guard is checked again
// inside the transaction: the caller's optimistic check can race with a
// concurrent request, and the losing writer must see a clean error rather
// than deduct twice.
func (s *FulfillmentService) MarkReady(ctx context.Context, orderID uint, actor *int) (*dto.FulfillmentResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op once committed.
	defer tx.Rollback()

	order, err := s.orders.FindByIDTx(txCtx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StockConsumed {
		return nil, apperrors.NewAlreadyConsumedError(fmt.Sprintf("stock already consumed for order %d", orderID))
	}
	if !order.CanMarkReady() {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("order %d cannot be marked ready from status %q", orderID, order.Status))
	}

	items, err := s.orders.FindItems(txCtx, tx, orderID)
	if err != nil {
		return nil, err
	}

	result := &dto.FulfillmentResult{OrderID: orderID}

	requirements, err := s.collectRequirements(txCtx, tx, items, result)
	if err != nil {
		return nil, err
	}

	// Deterministic product order keeps concurrent fulfillments from
	// locking the same rows in opposite order.
	productIDs := make([]int, 0, len(requirements))
	for id := range requirements {
		productIDs = append(productIDs, id)
	}
	sort.Ints(productIDs)

	refType := orderReferenceType
	refID := int64(orderID)

	for _, productID := range productIDs {
		req := requirements[productID]

		if err := s.consumeForProduct(txCtx, tx, req, refType, refID, actor, result); err != nil {
			return nil, classifyLockError(err)
		}
	}

	if err := s.orders.MarkReady(txCtx, tx, orderID, order.Version); err != nil {
		return nil, classifyLockError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, classifyLockError(err)
	}

	s.logger.Info("order marked ready",
		zap.Uint("orderId", orderID),
		zap.Int("productCount", len(productIDs)),
		zap.Int("skippedLines", len(result.SkippedProducts)),
	)

	return result, nil
}

func (s *FulfillmentService) collectRequirements(ctx context.Context, tx *sql.Tx, items []domain.OrderItem, result *dto.FulfillmentResult) (map[int]*lineRequirement, error) {
	requirements := make(map[int]*lineRequirement)

	for _, item := range items {
		product, err := s.products.FindByIDTx(ctx, tx, item.ProductID)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				// Historical orders may reference deleted products; the
				// order must remain closeable.
				s.logger.Warn("order line references missing product, skipping",
					zap.Uint("orderId", item.OrderID),
					zap.Int("productId", item.ProductID),
				)
				result.SkippedProducts = append(result.SkippedProducts, item.ProductID)
				continue
			}
			return nil, err
		}

		target, err := invservice.ResolveConsumingProduct(ctx, tx, s.products, product, item.Quantity)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				s.logger.Warn("order line references subproduct with missing parent, skipping",
					zap.Uint("orderId", item.OrderID),
					zap.Int("productId", item.ProductID),
				)
				result.SkippedProducts = append(result.SkippedProducts, item.ProductID)
				continue
			}
			return nil, err
		}

		if existing, ok := requirements[target.Product.ID]; ok {
			existing.quantity += target.Quantity
		} else {
			requirements[target.Product.ID] = &lineRequirement{
				product:  target.Product,
				quantity: target.Quantity,
			}
		}
	}

	return requirements, nil
}

func (s *FulfillmentService) consumeForProduct(ctx context.Context, tx *sql.Tx, req *lineRequirement, refType string, refID int64, actor *int, result *dto.FulfillmentResult) error {
	product := req.product
	prev := product.CurrentStock

	if prev-req.quantity < 0 {
		return apperrors.NewInsufficientStockError(product.ID, req.quantity, prev)
	}

	transactionID, err := s.recorder.Record(ctx, tx, domain.InventoryTransaction{
		ProductID:     product.ID,
		Type:          domain.TransactionTypeSale,
		Quantity:      -req.quantity,
		PreviousStock: prev,
		NewStock:      prev - req.quantity,
		ReferenceType: &refType,
		ReferenceID:   &refID,
		CreatedBy:     actor,
	})
	if err != nil {
		return err
	}

	consumption, err := s.consumer.Consume(ctx, tx, product.ID, req.quantity, transactionID)
	if err != nil {
		return err
	}
	result.ConsumedLines += len(consumption.Lines)
	result.ExpiryWarnings = append(result.ExpiryWarnings, consumption.ExpiryWarnings...)

	newStock, err := s.syncer.Recompute(ctx, tx, product.ID)
	if err != nil {
		return err
	}

	if err := s.products.UpdateStockCAS(ctx, tx, product.ID, prev, newStock); err != nil {
		return err
	}

	if err := s.syncer.Cascade(ctx, tx, product.ID, newStock); err != nil {
		return err
	}

	if newStock <= product.LowStockThreshold {
		result.LowStockWarnings = append(result.LowStockWarnings, dto.LowStockWarning{
			ProductID:    product.ID,
			CurrentStock: newStock,
			Threshold:    product.LowStockThreshold,
		})
	}

	return nil
}

// UpdateItemQuantity adjusts a line mid-packing. An increase consumes
// additional batches; a decrease books the returned units as a brand-new
// zero-cost batch, because the original batch lineage of the returned units
// is not tracked per unit.
func (s *FulfillmentService) UpdateItemQuantity(ctx context.Context, orderID uint, productID, newQuantity int, actor *int) (*dto.QuantityUpdateResult, error) {
	if newQuantity < 0 {
		return nil, apperrors.NewValidationError("newQuantity must be non-negative", apperrors.ValidationDetail{
			Field:   "newQuantity",
			Message: "newQuantity must be zero or a positive integer",
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	order, err := s.orders.FindByIDTx(txCtx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StockConsumed {
		return nil, apperrors.NewAlreadyConsumedError(fmt.Sprintf("stock already consumed for order %d; quantities can no longer be adjusted", orderID))
	}
	if order.Status != domain.OrderStatusPacking {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("order %d is not being packed", orderID))
	}

	item, err := s.orders.FindItem(txCtx, tx, orderID, productID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByIDTx(txCtx, tx, productID)
	if err != nil {
		return nil, err
	}

	delta := newQuantity - item.Quantity
	if delta != 0 {
		if err := s.applyQuantityDelta(txCtx, tx, orderID, product, delta, actor); err != nil {
			return nil, classifyLockError(err)
		}

		totalPrice := int64(newQuantity) * item.UnitPrice
		if err := s.orders.UpdateItemQuantity(txCtx, tx, item.ID, newQuantity, totalPrice); err != nil {
			return nil, err
		}
	}

	items, err := s.orders.FindItems(txCtx, tx, orderID)
	if err != nil {
		return nil, err
	}
	var subtotal int64
	for _, it := range items {
		subtotal += it.TotalPrice
	}

	if err := s.orders.UpdateTotals(txCtx, tx, orderID, subtotal, subtotal, order.Version); err != nil {
		return nil, classifyLockError(err)
	}

	refreshed, err := s.products.FindByIDTx(txCtx, tx, productID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, classifyLockError(err)
	}

	s.logger.Info("order item quantity updated",
		zap.Uint("orderId", orderID),
		zap.Int("productId", productID),
		zap.Int("oldQuantity", item.Quantity),
		zap.Int("newQuantity", newQuantity),
	)

	return &dto.QuantityUpdateResult{
		OrderID:       orderID,
		ProductID:     productID,
		NewQuantity:   newQuantity,
		NewStock:      refreshed.CurrentStock,
		NewSubtotal:   subtotal,
		NewOrderTotal: subtotal,
	}, nil
}

func (s *FulfillmentService) applyQuantityDelta(ctx context.Context, tx *sql.Tx, orderID uint, product *domain.Product, delta int, actor *int) error {
	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}

	target, err := invservice.ResolveConsumingProduct(ctx, tx, s.products, product, magnitude)
	if err != nil {
		return err
	}

	packing := domain.AdjustmentPacking
	refType := orderReferenceType
	refID := int64(orderID)
	prev := target.Product.CurrentStock

	if delta > 0 {
		if prev-target.Quantity < 0 {
			return apperrors.NewInsufficientStockError(target.Product.ID, target.Quantity, prev)
		}

		transactionID, err := s.recorder.Record(ctx, tx, domain.InventoryTransaction{
			ProductID:      target.Product.ID,
			Type:           domain.TransactionTypeAdjustment,
			AdjustmentType: &packing,
			Quantity:       -target.Quantity,
			PreviousStock:  prev,
			NewStock:       prev - target.Quantity,
			ReferenceType:  &refType,
			ReferenceID:    &refID,
			CreatedBy:      actor,
		})
		if err != nil {
			return err
		}

		if _, err := s.consumer.Consume(ctx, tx, target.Product.ID, target.Quantity, transactionID); err != nil {
			return err
		}
	} else {
		// Returned units come back as a fresh batch at zero cost: their
		// original cost layers cannot be reconstructed per unit.
		if _, err := s.batches.Insert(ctx, tx, domain.InventoryBatch{
			ProductID:         target.Product.ID,
			InitialQuantity:   target.Quantity,
			QuantityRemaining: target.Quantity,
			CostPerUnit:       0,
			ReceivedAt:        time.Now().UTC(),
		}); err != nil {
			return err
		}

		if _, err := s.recorder.Record(ctx, tx, domain.InventoryTransaction{
			ProductID:      target.Product.ID,
			Type:           domain.TransactionTypeAdjustment,
			AdjustmentType: &packing,
			Quantity:       target.Quantity,
			PreviousStock:  prev,
			NewStock:       prev + target.Quantity,
			ReferenceType:  &refType,
			ReferenceID:    &refID,
			CreatedBy:      actor,
		}); err != nil {
			return err
		}
	}

	newStock, err := s.syncer.Recompute(ctx, tx, target.Product.ID)
	if err != nil {
		return err
	}

	if err := s.products.UpdateStockCAS(ctx, tx, target.Product.ID, prev, newStock); err != nil {
		return err
	}

	return s.syncer.Cascade(ctx, tx, target.Product.ID, newStock)
}
