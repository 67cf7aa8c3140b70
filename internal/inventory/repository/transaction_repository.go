package repository

import (
	"context"
	"database/sql"
	"fmt"

	"packhouse/internal/domain"
	"packhouse/internal/errors"
)

type MySQLTransactionRepository struct {
	db *sql.DB
}

func NewMySQLTransactionRepository(db *sql.DB) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{db: db}
}

const transactionColumns = `id, productId, type, adjustmentType, quantity, previousStock, newStock,
		       referenceType, referenceId, batchNumber, createdBy, notes, createdAt`

func (r *MySQLTransactionRepository) Insert(ctx context.Context, tx *sql.Tx, txn domain.InventoryTransaction) (int64, error) {
	query := `
		INSERT INTO InventoryTransaction
			(productId, type, adjustmentType, quantity, previousStock, newStock,
			 referenceType, referenceId, batchNumber, createdBy, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		txn.ProductID, txn.Type, adjustmentValue(txn.AdjustmentType), txn.Quantity,
		txn.PreviousStock, txn.NewStock, txn.ReferenceType, txn.ReferenceID,
		txn.BatchNumber, txn.CreatedBy, txn.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting inventory transaction: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return lastInsertID, nil
}

func (r *MySQLTransactionRepository) FindByID(ctx context.Context, id int64) (*domain.InventoryTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM InventoryTransaction WHERE id = ?`, transactionColumns)

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("transaction with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying transaction by id: %w", err)
	}

	return txn, nil
}

func (r *MySQLTransactionRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.InventoryTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM InventoryTransaction WHERE id = ? FOR UPDATE`, transactionColumns)

	txn, err := scanTransaction(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("transaction with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying transaction for update: %w", err)
	}

	return txn, nil
}

// UpdateForEdit rewrites the movement fields of a transaction as part of the
// compensating edit workflow. Notes must already carry the appended edit
// annotation; this is the only code path that mutates a ledger entry.
func (r *MySQLTransactionRepository) UpdateForEdit(ctx context.Context, tx *sql.Tx, id int64, quantity, previousStock, newStock int, notes string) error {
	query := `
		UPDATE InventoryTransaction
		SET quantity = ?, previousStock = ?, newStock = ?, notes = ?
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query, quantity, previousStock, newStock, notes, id)
	if err != nil {
		return fmt.Errorf("updating inventory transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("transaction with id %d not found", id))
	}

	return nil
}

func adjustmentValue(at *domain.AdjustmentType) any {
	if at == nil {
		return nil
	}
	return string(*at)
}

func scanTransaction(row batchRow) (*domain.InventoryTransaction, error) {
	var txn domain.InventoryTransaction
	var adjustment sql.NullString
	err := row.Scan(
		&txn.ID, &txn.ProductID, &txn.Type, &adjustment, &txn.Quantity,
		&txn.PreviousStock, &txn.NewStock, &txn.ReferenceType, &txn.ReferenceID,
		&txn.BatchNumber, &txn.CreatedBy, &txn.Notes, &txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if adjustment.Valid {
		at := domain.AdjustmentType(adjustment.String)
		txn.AdjustmentType = &at
	}
	return &txn, nil
}
