package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB expects a MySQL instance on localhost:3306 with a database
// named 'comanda_test'. Tests skip when it is not there.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/comanda_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"OrderAdjustments", "OrderItems", "PaymentTransactions", "Orders", "Tables", "TenantPaymentConfig"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the repository tests run against.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createTablesTable := `
	CREATE TABLE IF NOT EXISTS Tables (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		tenantId INT NOT NULL,
		tableNumber VARCHAR(20) NOT NULL,
		capacity INT NOT NULL DEFAULT 4,
		status VARCHAR(20) NOT NULL DEFAULT 'available',
		currentOrderId INT UNSIGNED,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_tenant (tenantId)
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		tenantId INT NOT NULL,
		orderNumber VARCHAR(30) NOT NULL,
		orderType VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		tableId INT UNSIGNED,
		subtotal DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		tax DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		serviceCharge DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		discount DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		total DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		paymentStatus VARCHAR(20) NOT NULL DEFAULT 'pending',
		paymentMethod VARCHAR(20),
		paidAt DATETIME,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_tenant (tenantId),
		INDEX idx_table_status (tableId, status)
	)`

	createOrderItemsTable := `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		menuItemId INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		price DECIMAL(12,2) NOT NULL,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`

	createOrderAdjustmentsTable := `
	CREATE TABLE IF NOT EXISTS OrderAdjustments (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		field VARCHAR(30) NOT NULL,
		oldValue DECIMAL(12,2) NOT NULL,
		newValue DECIMAL(12,2) NOT NULL,
		reason VARCHAR(255),
		appliedBy VARCHAR(30) NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`

	createPaymentTransactionsTable := `
	CREATE TABLE IF NOT EXISTS PaymentTransactions (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		tenantId INT NOT NULL,
		orderId INT UNSIGNED NOT NULL,
		provider VARCHAR(20) NOT NULL,
		externalReference VARCHAR(100),
		payerReference VARCHAR(100),
		amount DECIMAL(12,2) NOT NULL,
		currency CHAR(3) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		resultCode VARCHAR(40),
		resultDescription VARCHAR(255),
		idempotencyKey CHAR(36) NOT NULL,
		stale TINYINT(1) NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		resolvedAt DATETIME,
		UNIQUE KEY uq_order_key (orderId, idempotencyKey),
		UNIQUE KEY uq_external_ref (externalReference),
		INDEX idx_tenant_created (tenantId, createdAt)
	)`

	createTenantPaymentConfigTable := `
	CREATE TABLE IF NOT EXISTS TenantPaymentConfig (
		tenantId INT NOT NULL PRIMARY KEY,
		defaultCurrency CHAR(3) NOT NULL DEFAULT 'KES',
		cashEnabled TINYINT(1) NOT NULL DEFAULT 1,
		mobileMoney JSON NOT NULL,
		card JSON NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Tables", createTablesTable},
		{"Orders", createOrdersTable},
		{"OrderItems", createOrderItemsTable},
		{"OrderAdjustments", createOrderAdjustmentsTable},
		{"PaymentTransactions", createPaymentTransactionsTable},
		{"TenantPaymentConfig", createTenantPaymentConfigTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
