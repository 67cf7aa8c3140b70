package repository

import (
	"context"
	"database/sql"
	"fmt"

	"packhouse/internal/domain"
	"packhouse/internal/errors"
)

type MySQLBatchRepository struct {
	db *sql.DB
}

func NewMySQLBatchRepository(db *sql.DB) *MySQLBatchRepository {
	return &MySQLBatchRepository{db: db}
}

const batchColumns = `id, productId, initialQuantity, quantityRemaining, costPerUnit,
		       receivedAt, expiryDate, isConsumed, supplierId, createdAt, updatedAt`

func (r *MySQLBatchRepository) FindByID(ctx context.Context, id int64) (*domain.InventoryBatch, error) {
	query := fmt.Sprintf(`SELECT %s FROM InventoryBatch WHERE id = ?`, batchColumns)

	batch, err := scanBatch(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("batch with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying batch by id: %w", err)
	}

	return batch, nil
}

func (r *MySQLBatchRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.InventoryBatch, error) {
	query := fmt.Sprintf(`SELECT %s FROM InventoryBatch WHERE id = ? FOR UPDATE`, batchColumns)

	batch, err := scanBatch(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("batch with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying batch for update: %w", err)
	}

	return batch, nil
}

// LiveBatches returns the product's non-consumed, non-empty batches in FEFO
// order: expiring batches first, soonest expiry first; batches without an
// expiry sort after all expiring ones, oldest receipt first.
func (r *MySQLBatchRepository) LiveBatches(ctx context.Context, tx *sql.Tx, productID int) ([]domain.InventoryBatch, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM InventoryBatch
		WHERE productId = ?
		  AND isConsumed = 0
		  AND quantityRemaining > 0
		ORDER BY (expiryDate IS NULL) ASC, expiryDate ASC, receivedAt ASC, id ASC`,
		batchColumns,
	)

	rows, err := tx.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("querying live batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.InventoryBatch
	for rows.Next() {
		var b domain.InventoryBatch
		err := rows.Scan(
			&b.ID, &b.ProductID, &b.InitialQuantity, &b.QuantityRemaining, &b.CostPerUnit,
			&b.ReceivedAt, &b.ExpiryDate, &b.IsConsumed, &b.SupplierID,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning batch row: %w", err)
		}
		batches = append(batches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch rows: %w", err)
	}

	return batches, nil
}

func (r *MySQLBatchRepository) SumLiveQuantity(ctx context.Context, tx *sql.Tx, productID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantityRemaining), 0)
		FROM InventoryBatch
		WHERE productId = ?
		  AND isConsumed = 0
		  AND quantityRemaining > 0
	`

	var total int
	if err := tx.QueryRowContext(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("summing live batch quantity: %w", err)
	}

	return total, nil
}

// Debit decrements quantityRemaining and flags the batch consumed when it
// reaches exactly zero. The quantityRemaining >= qty guard makes the write
// safe under concurrent debits: zero rows affected means another writer got
// there first (or the batch is gone) and the enclosing unit must abort.
func (r *MySQLBatchRepository) Debit(ctx context.Context, tx *sql.Tx, batchID int64, quantity int) error {
	query := `
		UPDATE InventoryBatch
		SET isConsumed = (quantityRemaining - ? = 0),
		    quantityRemaining = quantityRemaining - ?
		WHERE id = ?
		  AND quantityRemaining >= ?
	`

	result, err := tx.ExecContext(ctx, query, quantity, quantity, batchID, quantity)
	if err != nil {
		return fmt.Errorf("debiting batch: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("batch %d was modified concurrently or has insufficient quantity", batchID))
	}

	return nil
}

// Credit is the inverse of Debit, used only by reversal and correction
// flows. It reopens isConsumed.
func (r *MySQLBatchRepository) Credit(ctx context.Context, tx *sql.Tx, batchID int64, quantity int) error {
	query := `
		UPDATE InventoryBatch
		SET quantityRemaining = quantityRemaining + ?,
		    isConsumed = 0
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query, quantity, batchID)
	if err != nil {
		return fmt.Errorf("crediting batch: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("batch with id %d not found", batchID))
	}

	return nil
}

func (r *MySQLBatchRepository) Insert(ctx context.Context, tx *sql.Tx, batch domain.InventoryBatch) (int64, error) {
	query := `
		INSERT INTO InventoryBatch
			(productId, initialQuantity, quantityRemaining, costPerUnit, receivedAt, expiryDate, isConsumed, supplierId)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		batch.ProductID, batch.InitialQuantity, batch.QuantityRemaining, batch.CostPerUnit,
		batch.ReceivedAt, batch.ExpiryDate, batch.IsConsumed, batch.SupplierID,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting batch: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return lastInsertID, nil
}

type batchRow interface {
	Scan(dest ...any) error
}

func scanBatch(row batchRow) (*domain.InventoryBatch, error) {
	var b domain.InventoryBatch
	err := row.Scan(
		&b.ID, &b.ProductID, &b.InitialQuantity, &b.QuantityRemaining, &b.CostPerUnit,
		&b.ReceivedAt, &b.ExpiryDate, &b.IsConsumed, &b.SupplierID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
