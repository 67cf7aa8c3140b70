package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packhouse/internal/errors"
	"packhouse/internal/testutil"
)

func insertProduct(t *testing.T, db *sql.DB, name string, stock, threshold int, parentID *int, lossPct float64) int {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO Product (name, unit, currentStock, lowStockThreshold, parentProductId, estimatedLossPercentage)
		VALUES (?, 'kg', ?, ?, ?, ?)
	`, name, stock, threshold, parentID, lossPct)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func TestProductRepository_UpdateStockCAS_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	productID := insertProduct(t, db, "apples", 50, 10, nil, 0)

	tx := mustBegin(t, db)
	require.NoError(t, repo.UpdateStockCAS(context.Background(), tx, productID, 50, 38))
	require.NoError(t, tx.Commit())

	product, err := repo.FindByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 38, product.CurrentStock)
}

func TestProductRepository_UpdateStockCAS_StaleRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	productID := insertProduct(t, db, "apples", 50, 10, nil, 0)

	tx := mustBegin(t, db)
	err := repo.UpdateStockCAS(context.Background(), tx, productID, 45, 38)
	require.Error(t, err)
	_, ok := errors.IsConflictError(err)
	assert.True(t, ok, "a stale previousStock read loses the swap")
}

func TestProductRepository_UpdateStockCAS_NoChangeStillMatches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	productID := insertProduct(t, db, "apples", 50, 10, nil, 0)

	// The connection runs with clientFoundRows, so writing the same value
	// counts as a matched row instead of a phantom conflict.
	tx := mustBegin(t, db)
	require.NoError(t, repo.UpdateStockCAS(context.Background(), tx, productID, 50, 50))
	require.NoError(t, tx.Commit())
}

func TestProductRepository_FindSubproducts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	parentID := insertProduct(t, db, "whole fish", 100, 10, nil, 0)
	subID := insertProduct(t, db, "fillet", 80, 5, &parentID, 20)
	insertProduct(t, db, "unrelated", 10, 0, nil, 0)

	tx := mustBegin(t, db)
	subs, err := repo.FindSubproducts(context.Background(), tx, parentID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, subID, subs[0].ID)
	assert.Equal(t, 20.0, subs[0].EstimatedLossPercentage)
}

func TestProductRepository_FindBelowThreshold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	lowID := insertProduct(t, db, "low", 3, 10, nil, 0)
	insertProduct(t, db, "plenty", 50, 10, nil, 0)
	atID := insertProduct(t, db, "at threshold", 10, 10, nil, 0)

	products, err := repo.FindBelowThreshold(context.Background())
	require.NoError(t, err)

	ids := make([]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	assert.Contains(t, ids, lowID)
	assert.Contains(t, ids, atID, "a product exactly at its threshold is flagged")
	assert.Len(t, ids, 2)
}

func TestProductRepository_FindByID_ExcludesDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLProductRepository(db)
	productID := insertProduct(t, db, "gone", 10, 0, nil, 0)
	_, err := db.Exec(`UPDATE Product SET isDeleted = 1 WHERE id = ?`, productID)
	require.NoError(t, err)

	_, err = repo.FindByID(context.Background(), productID)
	require.Error(t, err)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}
