package repository

import (
	"context"
	"database/sql"
	"fmt"

	"packhouse/internal/domain"
)

type MySQLConsumptionRepository struct {
	db *sql.DB
}

func NewMySQLConsumptionRepository(db *sql.DB) *MySQLConsumptionRepository {
	return &MySQLConsumptionRepository{db: db}
}

func (r *MySQLConsumptionRepository) Insert(ctx context.Context, tx *sql.Tx, line domain.BatchConsumption) (int64, error) {
	query := `
		INSERT INTO BatchConsumption (batchId, transactionId, quantityConsumed, costPerUnit, totalCost)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		line.BatchID, line.TransactionID, line.QuantityConsumed, line.CostPerUnit, line.TotalCost,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting batch consumption: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return lastInsertID, nil
}

func (r *MySQLConsumptionRepository) FindByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) ([]domain.BatchConsumption, error) {
	query := `
		SELECT id, batchId, transactionId, quantityConsumed, costPerUnit, totalCost
		FROM BatchConsumption
		WHERE transactionId = ?
		ORDER BY id ASC
	`

	rows, err := tx.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("querying batch consumptions: %w", err)
	}
	defer rows.Close()

	var lines []domain.BatchConsumption
	for rows.Next() {
		var line domain.BatchConsumption
		err := rows.Scan(
			&line.ID, &line.BatchID, &line.TransactionID,
			&line.QuantityConsumed, &line.CostPerUnit, &line.TotalCost,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning batch consumption row: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batch consumption rows: %w", err)
	}

	return lines, nil
}

func (r *MySQLConsumptionRepository) DeleteByTransactionID(ctx context.Context, tx *sql.Tx, transactionID int64) error {
	query := `DELETE FROM BatchConsumption WHERE transactionId = ?`

	if _, err := tx.ExecContext(ctx, query, transactionID); err != nil {
		return fmt.Errorf("deleting batch consumptions: %w", err)
	}

	return nil
}
