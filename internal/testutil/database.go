package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. It expects a MySQL
// instance on localhost:3306 with a database named 'packhouse_test' and
// skips the test when none is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/packhouse_test?parseTime=true&loc=UTC&clientFoundRows=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB truncates every table touched by the tests and closes the
// connection. Child tables first, so foreign keys never block the delete.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"BatchConsumption", "InventoryTransaction", "InventoryBatch", "OrderItems", "Orders", "Product"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the integration tests run against.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createProductTable := `
	CREATE TABLE IF NOT EXISTS Product (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		unit VARCHAR(50) NOT NULL DEFAULT 'kg',
		currentStock INT NOT NULL DEFAULT 0,
		lowStockThreshold INT NOT NULL DEFAULT 0,
		parentProductId INT NULL,
		estimatedLossPercentage DOUBLE NOT NULL DEFAULT 0,
		isDeleted TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_parent (parentProductId),
		INDEX idx_deleted (isDeleted)
	)`

	createBatchTable := `
	CREATE TABLE IF NOT EXISTS InventoryBatch (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		productId INT NOT NULL,
		initialQuantity INT NOT NULL,
		quantityRemaining INT NOT NULL,
		costPerUnit BIGINT NOT NULL DEFAULT 0,
		receivedAt DATETIME NOT NULL,
		expiryDate DATETIME NULL,
		isConsumed TINYINT(1) NOT NULL DEFAULT 0,
		supplierId INT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_product_live (productId, isConsumed),
		INDEX idx_expiry (expiryDate)
	)`

	createTransactionTable := `
	CREATE TABLE IF NOT EXISTS InventoryTransaction (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		productId INT NOT NULL,
		type VARCHAR(30) NOT NULL,
		adjustmentType VARCHAR(50) NULL,
		quantity INT NOT NULL,
		previousStock INT NOT NULL,
		newStock INT NOT NULL,
		referenceType VARCHAR(50) NULL,
		referenceId BIGINT NULL,
		batchNumber VARCHAR(64) NULL,
		createdBy INT NULL,
		notes TEXT,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_product (productId),
		INDEX idx_reference (referenceType, referenceId)
	)`

	createConsumptionTable := `
	CREATE TABLE IF NOT EXISTS BatchConsumption (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		batchId BIGINT NOT NULL,
		transactionId BIGINT NOT NULL,
		quantityConsumed INT NOT NULL,
		costPerUnit BIGINT NOT NULL DEFAULT 0,
		totalCost BIGINT NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_transaction (transactionId),
		INDEX idx_batch (batchId)
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderNumber VARCHAR(50) NOT NULL,
		customerName VARCHAR(150) NOT NULL,
		customerEmail VARCHAR(150) NOT NULL,
		deliveryDate DATETIME NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'confirmed',
		version INT NOT NULL DEFAULT 1,
		stockConsumed TINYINT(1) NOT NULL DEFAULT 0,
		stockConsumedAt DATETIME NULL,
		packingStartedAt DATETIME NULL,
		packingPausedAt DATETIME NULL,
		packingNotes TEXT NULL,
		subtotal BIGINT NOT NULL DEFAULT 0,
		totalAmount BIGINT NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_status (status)
	)`

	createOrderItemsTable := `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		productId INT NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		unit VARCHAR(50) NOT NULL DEFAULT 'kg',
		unitPrice BIGINT NOT NULL DEFAULT 0,
		totalPrice BIGINT NOT NULL DEFAULT 0,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId),
		INDEX idx_product (productId)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Product", createProductTable},
		{"InventoryBatch", createBatchTable},
		{"InventoryTransaction", createTransactionTable},
		{"BatchConsumption", createConsumptionTable},
		{"Orders", createOrdersTable},
		{"OrderItems", createOrderItemsTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
