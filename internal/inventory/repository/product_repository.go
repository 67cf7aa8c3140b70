package repository

import (
	"context"
	"database/sql"
	"fmt"

	"packhouse/internal/domain"
	"packhouse/internal/errors"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

const productColumns = `id, name, unit, currentStock, lowStockThreshold, parentProductId,
		       estimatedLossPercentage, isDeleted, createdAt, updatedAt`

func (r *MySQLProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM Product WHERE id = ? AND isDeleted = 0`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return product, nil
}

func (r *MySQLProductRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM Product WHERE id = ? AND isDeleted = 0`, productColumns)

	product, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return product, nil
}

func (r *MySQLProductRepository) FindSubproducts(ctx context.Context, tx *sql.Tx, parentID int) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM Product
		WHERE parentProductId = ?
		  AND isDeleted = 0
		ORDER BY id ASC`, productColumns)

	rows, err := tx.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying subproducts: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Unit, &p.CurrentStock, &p.LowStockThreshold,
			&p.ParentProductID, &p.EstimatedLossPercentage, &p.IsDeleted,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLProductRepository) FindBelowThreshold(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM Product
		WHERE currentStock <= lowStockThreshold
		  AND isDeleted = 0
		ORDER BY currentStock - lowStockThreshold ASC, id ASC`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying low stock products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Unit, &p.CurrentStock, &p.LowStockThreshold,
			&p.ParentProductID, &p.EstimatedLossPercentage, &p.IsDeleted,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

// UpdateStockCAS writes the stock counter with a compare-and-swap on the
// previously observed value. Zero rows affected means a concurrent writer
// already moved the counter; the enclosing unit must abort, never retry
// silently.
func (r *MySQLProductRepository) UpdateStockCAS(ctx context.Context, tx *sql.Tx, id, previousStock, newStock int) error {
	query := `UPDATE Product SET currentStock = ? WHERE id = ? AND currentStock = ?`

	result, err := tx.ExecContext(ctx, query, newStock, id, previousStock)
	if err != nil {
		return fmt.Errorf("updating product stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("stock of product %d was modified concurrently", id))
	}

	return nil
}

// SetStock writes the stock counter unconditionally. Used by the
// synchronization pass, where the written value is recomputed from batch
// sums inside the same transaction, and by the subproduct cascade, where the
// value is a pure function of the parent's stock.
func (r *MySQLProductRepository) SetStock(ctx context.Context, tx *sql.Tx, id, stock int) error {
	query := `UPDATE Product SET currentStock = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, stock, id)
	if err != nil {
		return fmt.Errorf("setting product stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}

func scanProduct(row batchRow) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Unit, &p.CurrentStock, &p.LowStockThreshold,
		&p.ParentProductID, &p.EstimatedLossPercentage, &p.IsDeleted,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
