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

// Unit Tests

func TestNewMySQLBatchRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLBatchRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func insertBatch(t *testing.T, db *sql.DB, productID, remaining int, cost int64, receivedAt string, expiryDate *string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO InventoryBatch (productId, initialQuantity, quantityRemaining, costPerUnit, receivedAt, expiryDate, isConsumed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, productID, remaining, remaining, cost, receivedAt, expiryDate, remaining == 0)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string {
	return &s
}

func TestBatchRepository_LiveBatches_FEFOOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLBatchRepository(db)

	// Received earliest but expires last; expires first; no expiry at all.
	late := insertBatch(t, db, 1, 10, 100, "2026-03-01 00:00:00", strPtr("2026-04-20 00:00:00"))
	soon := insertBatch(t, db, 1, 5, 200, "2026-03-05 00:00:00", strPtr("2026-03-15 00:00:00"))
	never := insertBatch(t, db, 1, 8, 150, "2026-02-01 00:00:00", nil)

	batches, err := repo.LiveBatches(context.Background(), mustBegin(t, db), 1)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	assert.Equal(t, soon, batches[0].ID, "soonest expiry first")
	assert.Equal(t, late, batches[1].ID)
	assert.Equal(t, never, batches[2].ID, "non-expiring batches always last")
}

func TestBatchRepository_LiveBatches_ExcludesConsumedAndOtherProducts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLBatchRepository(db)

	live := insertBatch(t, db, 1, 10, 100, "2026-03-01 00:00:00", nil)
	insertBatch(t, db, 1, 0, 100, "2026-03-01 00:00:00", nil)
	insertBatch(t, db, 2, 10, 100, "2026-03-01 00:00:00", nil)

	batches, err := repo.LiveBatches(context.Background(), mustBegin(t, db), 1)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, live, batches[0].ID)
}

func TestBatchRepository_Debit_GuardsAgainstOverdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLBatchRepository(db)
	batchID := insertBatch(t, db, 1, 10, 100, "2026-03-01 00:00:00", nil)

	tx := mustBegin(t, db)
	err := repo.Debit(context.Background(), tx, batchID, 15)
	require.Error(t, err)
	_, ok := errors.IsConflictError(err)
	assert.True(t, ok, "debiting past the remainder reports a conflict")
	require.NoError(t, tx.Rollback())
}

func TestBatchRepository_Debit_ExhaustionFlipsConsumedFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLBatchRepository(db)
	batchID := insertBatch(t, db, 1, 10, 100, "2026-03-01 00:00:00", nil)

	tx := mustBegin(t, db)
	require.NoError(t, repo.Debit(context.Background(), tx, batchID, 10))
	require.NoError(t, tx.Commit())

	batch, err := repo.FindByID(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, 0, batch.QuantityRemaining)
	assert.True(t, batch.IsConsumed)
}

func TestBatchRepository_Credit_RevivesConsumedBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLBatchRepository(db)
	batchID := insertBatch(t, db, 1, 0, 100, "2026-03-01 00:00:00", nil)

	tx := mustBegin(t, db)
	require.NoError(t, repo.Credit(context.Background(), tx, batchID, 4))
	require.NoError(t, tx.Commit())

	batch, err := repo.FindByID(context.Background(), batchID)
	require.NoError(t, err)
	assert.Equal(t, 4, batch.QuantityRemaining)
	assert.False(t, batch.IsConsumed)
}

func TestBatchRepository_SumLiveQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLBatchRepository(db)

	insertBatch(t, db, 1, 10, 100, "2026-03-01 00:00:00", nil)
	insertBatch(t, db, 1, 7, 100, "2026-03-02 00:00:00", nil)
	insertBatch(t, db, 1, 0, 100, "2026-03-03 00:00:00", nil)

	tx := mustBegin(t, db)
	sum, err := repo.SumLiveQuantity(context.Background(), tx, 1)
	require.NoError(t, err)
	assert.Equal(t, 17, sum)
	require.NoError(t, tx.Rollback())
}

func TestBatchRepository_SumLiveQuantity_NoBatches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLBatchRepository(db)

	tx := mustBegin(t, db)
	sum, err := repo.SumLiveQuantity(context.Background(), tx, 404)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
	require.NoError(t, tx.Rollback())
}

func mustBegin(t *testing.T, db *sql.DB) *sql.Tx {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	t.Cleanup(func() { tx.Rollback() })
	return tx
}
