package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/internal/domain"
	"comanda/internal/errors"
	"comanda/internal/testutil"
)

// Unit Tests

func TestNewMySQLOrderRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLOrderRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func insertTestOrder(t *testing.T, db *sql.DB, status, paymentStatus string) uint {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO Orders (tenantId, orderNumber, orderType, status, subtotal, tax, serviceCharge, discount, total, paymentStatus)
		VALUES (1, 'ORD-20260831-0042', 'dine-in', ?, 1000.00, 160.00, 100.00, 0.00, 1260.00, ?)
	`, status, paymentStatus)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return uint(id)
}

func TestOrderRepository_FindByID_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	id := insertTestOrder(t, db, domain.OrderStatusPending, domain.PaymentStatusPending)

	_, err := db.Exec(`INSERT INTO OrderItems (orderId, menuItemId, name, quantity, price) VALUES (?, 1, 'Nyama Choma', 2, 550.00)`, id)
	require.NoError(t, err)

	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, order.ID)
	assert.Equal(t, 1, order.TenantID)
	assert.Equal(t, "ORD-20260831-0042", order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, 1260.00, order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Nyama Choma", order.Items[0].Name)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	_, err := repo.FindByID(context.Background(), 999999)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok, "expected not found error, got %v", err)
}

func TestOrderRepository_UpdateStatus_CAS(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	id := insertTestOrder(t, db, domain.OrderStatusPending, domain.PaymentStatusPending)

	applied, err := repo.UpdateStatus(context.Background(), id, domain.OrderStatusPending, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, applied)

	// Same CAS again loses: the order is no longer pending.
	applied, err = repo.UpdateStatus(context.Background(), id, domain.OrderStatusPending, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestOrderRepository_MarkPaid_Once(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)
	id := insertTestOrder(t, db, domain.OrderStatusReady, domain.PaymentStatusPending)

	tx, err := db.Begin()
	require.NoError(t, err)
	applied, err := repo.MarkPaid(context.Background(), tx, id, domain.ProviderMpesa)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.True(t, applied)

	tx, err = db.Begin()
	require.NoError(t, err)
	applied, err = repo.MarkPaid(context.Background(), tx, id, domain.ProviderMpesa)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.False(t, applied, "a second MarkPaid must be a no-op")

	order, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, domain.ProviderMpesa, *order.PaymentMethod)
	assert.NotNil(t, order.PaidAt)
}

func TestOrderRepository_ActiveOrderNumbersByTable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLOrderRepository(db)

	_, err := db.Exec(`
		INSERT INTO Orders (tenantId, orderNumber, orderType, status, tableId, total, paymentStatus)
		VALUES (1, 'ORD-20260831-0001', 'dine-in', 'preparing', 7, 100.00, 'pending'),
		       (1, 'ORD-20260831-0002', 'dine-in', 'completed', 7, 200.00, 'paid'),
		       (1, 'ORD-20260831-0003', 'dine-in', 'cancelled', 7, 300.00, 'pending'),
		       (1, 'ORD-20260831-0004', 'dine-in', 'pending', 8, 400.00, 'pending')
	`)
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	numbers, err := repo.ActiveOrderNumbersByTable(context.Background(), tx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-20260831-0001"}, numbers)
}
