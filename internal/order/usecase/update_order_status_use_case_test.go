package usecase

import (
	"context"
	"testing"
	"time"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:          42,
		TenantID:    1,
		OrderNumber: "ORD-20260831-0042",
		OrderType:   domain.OrderTypeDineIn,
		Status:      domain.OrderStatusPending,
	}
}

func TestUpdateOrderStatus_HappyPath(t *testing.T) {
	order := pendingOrder()
	var casFrom, casTo string
	orderRepo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return order, nil
		},
		updateStatusFn: func(ctx context.Context, id uint, from, to string) (bool, error) {
			casFrom, casTo = from, to
			return true, nil
		},
	}
	bus := &mockBus{}

	uc := NewUpdateOrderStatusUseCase(orderRepo, newMockPrinter(), bus, zap.NewNop())
	updated, err := uc.UpdateStatus(context.Background(), staffActor(1), 42, domain.OrderStatusConfirmed)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, domain.OrderStatusPending, casFrom)
	assert.Equal(t, domain.OrderStatusConfirmed, casTo)

	require.Len(t, bus.events, 1)
	assert.Equal(t, notify.OrderTopic(42), bus.events[0].Topic)
	assert.Equal(t, notify.TypeOrderStatusUpdate, bus.events[0].Type)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	order := pendingOrder()
	orderRepo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return order, nil
		},
		updateStatusFn: func(ctx context.Context, id uint, from, to string) (bool, error) {
			t.Fatal("invalid transitions must be rejected before the write")
			return false, nil
		},
	}

	uc := NewUpdateOrderStatusUseCase(orderRepo, newMockPrinter(), &mockBus{}, zap.NewNop())
	_, err := uc.UpdateStatus(context.Background(), staffActor(1), 42, domain.OrderStatusReady)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok, "expected conflict error, got %v", err)
}

func TestUpdateOrderStatus_ConcurrentModification(t *testing.T) {
	order := pendingOrder()
	orderRepo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return order, nil
		},
		updateStatusFn: func(ctx context.Context, id uint, from, to string) (bool, error) {
			return false, nil
		},
	}

	uc := NewUpdateOrderStatusUseCase(orderRepo, newMockPrinter(), &mockBus{}, zap.NewNop())
	_, err := uc.UpdateStatus(context.Background(), staffActor(1), 42, domain.OrderStatusConfirmed)

	ce, ok := apperrors.IsConflictError(err)
	require.True(t, ok, "expected conflict error, got %v", err)
	assert.Contains(t, ce.Message, "concurrently")
}

func TestUpdateOrderStatus_OtherTenant(t *testing.T) {
	order := pendingOrder()
	order.TenantID = 99
	orderRepo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return order, nil
		},
	}

	uc := NewUpdateOrderStatusUseCase(orderRepo, newMockPrinter(), &mockBus{}, zap.NewNop())
	_, err := uc.UpdateStatus(context.Background(), staffActor(1), 42, domain.OrderStatusConfirmed)

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok, "expected forbidden error, got %v", err)
}

func TestUpdateOrderStatus_PreparingPrintsTicket(t *testing.T) {
	order := pendingOrder()
	order.Status = domain.OrderStatusConfirmed
	orderRepo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return order, nil
		},
		updateStatusFn: func(ctx context.Context, id uint, from, to string) (bool, error) {
			return true, nil
		},
	}
	printer := newMockPrinter()

	uc := NewUpdateOrderStatusUseCase(orderRepo, printer, &mockBus{}, zap.NewNop())
	_, err := uc.UpdateStatus(context.Background(), staffActor(1), 42, domain.OrderStatusPreparing)
	require.NoError(t, err)

	select {
	case printed := <-printer.printed:
		assert.Equal(t, "ORD-20260831-0042", printed.OrderNumber)
	case <-time.After(2 * time.Second):
		t.Fatal("kitchen ticket was never printed")
	}
}

func TestUpdateOrderStatus_PrintFailureDoesNotFail(t *testing.T) {
	order := pendingOrder()
	order.Status = domain.OrderStatusConfirmed
	orderRepo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return order, nil
		},
		updateStatusFn: func(ctx context.Context, id uint, from, to string) (bool, error) {
			return true, nil
		},
	}
	printer := newMockPrinter()
	printer.printFn = func(ctx context.Context, o *domain.Order) error {
		return assert.AnError
	}

	uc := NewUpdateOrderStatusUseCase(orderRepo, printer, &mockBus{}, zap.NewNop())
	updated, err := uc.UpdateStatus(context.Background(), staffActor(1), 42, domain.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPreparing, updated.Status)

	<-printer.printed
}
