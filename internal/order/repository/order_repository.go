package repository

import (
	"context"
	"database/sql"
	"fmt"

	"packhouse/internal/domain"
	"packhouse/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const orderColumns = `id, orderNumber, customerName, customerEmail, deliveryDate, status, version,
		       stockConsumed, stockConsumedAt, packingStartedAt, packingPausedAt, packingNotes,
		       subtotal, totalAmount, createdAt, updatedAt`

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM Orders WHERE id = ?`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM Orders WHERE id = ?`, orderColumns)

	order, err := scanOrder(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) FindItems(ctx context.Context, tx *sql.Tx, orderID uint) ([]domain.OrderItem, error) {
	query := `
		SELECT id, orderId, productId, quantity, unit, unitPrice, totalPrice
		FROM OrderItems
		WHERE orderId = ?
		ORDER BY id ASC
	`

	rows, err := tx.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.Unit, &item.UnitPrice, &item.TotalPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}

func (r *MySQLOrderRepository) FindItem(ctx context.Context, tx *sql.Tx, orderID uint, productID int) (*domain.OrderItem, error) {
	query := `
		SELECT id, orderId, productId, quantity, unit, unitPrice, totalPrice
		FROM OrderItems
		WHERE orderId = ? AND productId = ?
	`

	var item domain.OrderItem
	err := tx.QueryRowContext(ctx, query, orderID, productID).Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
		&item.Unit, &item.UnitPrice, &item.TotalPrice,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order %d has no line for product %d", orderID, productID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order item: %w", err)
	}

	return &item, nil
}

// MarkReady commits the terminal transition with a version-token
// compare-and-swap that doubles as the in-transaction idempotency check:
// zero rows affected means either a concurrent writer bumped the version or
// stock was already consumed.
func (r *MySQLOrderRepository) MarkReady(ctx context.Context, tx *sql.Tx, id uint, expectedVersion int) error {
	query := `
		UPDATE Orders
		SET status = ?, stockConsumed = 1, stockConsumedAt = NOW(), version = version + 1
		WHERE id = ? AND version = ? AND stockConsumed = 0
	`

	result, err := tx.ExecContext(ctx, query, domain.OrderStatusReadyForDelivery, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("marking order ready: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("order %d was modified concurrently", id))
	}

	return nil
}

// The packing-lifecycle transitions below are single guarded statements:
// each carries the version token and the legal source status in its WHERE
// clause, so a lost race or an illegal transition shows up as zero rows.
func (r *MySQLOrderRepository) StartPacking(ctx context.Context, id uint, expectedVersion int) error {
	query := `
		UPDATE Orders
		SET status = ?, packingStartedAt = NOW(), packingPausedAt = NULL, version = version + 1
		WHERE id = ? AND version = ? AND status = ?
	`
	return r.execTransition(ctx, query, domain.OrderStatusPacking, id, expectedVersion, domain.OrderStatusConfirmed)
}

func (r *MySQLOrderRepository) PausePacking(ctx context.Context, id uint, expectedVersion int) error {
	query := `
		UPDATE Orders
		SET packingPausedAt = NOW(), version = version + 1
		WHERE id = ? AND version = ? AND status = ?
	`
	return r.execTransition(ctx, query, id, expectedVersion, domain.OrderStatusPacking)
}

func (r *MySQLOrderRepository) ResumePacking(ctx context.Context, id uint, expectedVersion int) error {
	query := `
		UPDATE Orders
		SET packingPausedAt = NULL, version = version + 1
		WHERE id = ? AND version = ? AND status = ?
	`
	return r.execTransition(ctx, query, id, expectedVersion, domain.OrderStatusPacking)
}

// ResetPacking returns the order to confirmed and clears packing progress.
// Guarded on stockConsumed: once stock has been deducted the order can no
// longer be reset.
func (r *MySQLOrderRepository) ResetPacking(ctx context.Context, id uint, expectedVersion int) error {
	query := `
		UPDATE Orders
		SET status = ?, packingStartedAt = NULL, packingPausedAt = NULL, packingNotes = NULL, version = version + 1
		WHERE id = ? AND version = ? AND status = ? AND stockConsumed = 0
	`
	return r.execTransition(ctx, query, domain.OrderStatusConfirmed, id, expectedVersion, domain.OrderStatusPacking)
}

func (r *MySQLOrderRepository) execTransition(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError("order was modified concurrently or is in an illegal status")
	}

	return nil
}

func (r *MySQLOrderRepository) UpdateItemQuantity(ctx context.Context, tx *sql.Tx, itemID uint, quantity int, totalPrice int64) error {
	query := `UPDATE OrderItems SET quantity = ?, totalPrice = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, quantity, totalPrice, itemID)
	if err != nil {
		return fmt.Errorf("updating order item quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order item with id %d not found", itemID))
	}

	return nil
}

// UpdateTotals rewrites the order's money totals with a version-token
// compare-and-swap.
func (r *MySQLOrderRepository) UpdateTotals(ctx context.Context, tx *sql.Tx, id uint, subtotal, totalAmount int64, expectedVersion int) error {
	query := `
		UPDATE Orders
		SET subtotal = ?, totalAmount = ?, version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := tx.ExecContext(ctx, query, subtotal, totalAmount, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("updating order totals: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("order %d was modified concurrently", id))
	}

	return nil
}

func scanOrder(row interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.DeliveryDate,
		&o.Status, &o.Version, &o.StockConsumed, &o.StockConsumedAt,
		&o.PackingStartedAt, &o.PackingPausedAt, &o.PackingNotes,
		&o.Subtotal, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
