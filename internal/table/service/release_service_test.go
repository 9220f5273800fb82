package service

import (
	"context"
	"database/sql"
	"testing"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTxRunner struct{}

func (mockTxRunner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type mockOrderLister struct {
	activeFn func(ctx context.Context, tx *sql.Tx, tableID uint) ([]string, error)
}

func (m *mockOrderLister) ActiveOrderNumbersByTable(ctx context.Context, tx *sql.Tx, tableID uint) ([]string, error) {
	return m.activeFn(ctx, tx, tableID)
}

type mockTableWriter struct {
	updateFn func(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error
}

func (m *mockTableWriter) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error {
	return m.updateFn(ctx, tx, id, status, currentOrderID)
}

func occupiedTable() *domain.Table {
	orderID := uint(42)
	return &domain.Table{
		ID:             7,
		TenantID:       1,
		TableNumber:    "T7",
		Status:         domain.TableStatusOccupied,
		CurrentOrderID: &orderID,
	}
}

func TestReleaseBlockedByActiveOrder(t *testing.T) {
	orders := &mockOrderLister{
		activeFn: func(ctx context.Context, tx *sql.Tx, tableID uint) ([]string, error) {
			return []string{"ORD-20260831-0042"}, nil
		},
	}
	tables := &mockTableWriter{
		updateFn: func(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error {
			t.Fatal("a blocked release must not touch the table row")
			return nil
		},
	}

	svc := NewReleaseService(mockTxRunner{}, orders, tables, zap.NewNop())
	err := svc.SetStatus(context.Background(), occupiedTable(), domain.TableStatusAvailable)

	ce, ok := apperrors.IsConflictError(err)
	require.True(t, ok, "expected conflict error, got %v", err)
	assert.Equal(t, []string{"ORD-20260831-0042"}, ce.Details)
	assert.Contains(t, ce.Message, "ORD-20260831-0042")
}

func TestReleaseSucceedsWhenOrdersFinished(t *testing.T) {
	orders := &mockOrderLister{
		activeFn: func(ctx context.Context, tx *sql.Tx, tableID uint) ([]string, error) {
			return nil, nil
		},
	}

	var gotStatus string
	var gotOrderID *uint = new(uint)
	tables := &mockTableWriter{
		updateFn: func(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error {
			gotStatus = status
			gotOrderID = currentOrderID
			return nil
		},
	}

	svc := NewReleaseService(mockTxRunner{}, orders, tables, zap.NewNop())
	err := svc.SetStatus(context.Background(), occupiedTable(), domain.TableStatusAvailable)
	require.NoError(t, err)

	assert.Equal(t, domain.TableStatusAvailable, gotStatus)
	assert.Nil(t, gotOrderID, "releasing must clear currentOrderId")
}

func TestNonAvailableTransitionSkipsGuard(t *testing.T) {
	orders := &mockOrderLister{
		activeFn: func(ctx context.Context, tx *sql.Tx, tableID uint) ([]string, error) {
			t.Fatal("only releases consult the active orders")
			return nil, nil
		},
	}
	var gotStatus string
	tables := &mockTableWriter{
		updateFn: func(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error {
			gotStatus = status
			return nil
		},
	}

	svc := NewReleaseService(mockTxRunner{}, orders, tables, zap.NewNop())
	err := svc.SetStatus(context.Background(), occupiedTable(), domain.TableStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, domain.TableStatusMaintenance, gotStatus)
}
