package usecase

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"comanda/internal/actor"
	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func staffActor(tenantID int) actor.Actor {
	return actor.Actor{TenantID: tenantID, Role: actor.RoleStaff}
}

func validDineInRequest() dto.CreateOrderRequest {
	tableID := uint(7)
	return dto.CreateOrderRequest{
		OrderType: domain.OrderTypeDineIn,
		TableID:   &tableID,
		Items: []dto.OrderItemRequest{
			{MenuItemID: 1, Name: "Nyama Choma", Quantity: 2, Price: 550},
			{MenuItemID: 2, Name: "Ugali", Quantity: 1, Price: 100},
		},
	}
}

func newCreateUseCase(orderRepo *mockOrderRepo, tableRepo *mockTableRepo) *CreateOrderUseCase {
	return NewCreateOrderUseCase(&mockTxRunner{}, orderRepo, tableRepo, zap.NewNop(), 0.16, 0.10)
}

func TestCreateOrder_DineIn(t *testing.T) {
	orderRepo := &mockOrderRepo{
		insertFn: func(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error) {
			return 42, nil
		},
		insertItemFn: func(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error) {
			return item.OrderID, nil
		},
	}

	var occupiedTable uint
	var occupiedWithOrder *uint
	tableRepo := &mockTableRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Table, error) {
			return &domain.Table{ID: id, TenantID: 1, TableNumber: "T7", Status: domain.TableStatusAvailable}, nil
		},
		updateStatusTxFn: func(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error {
			require.Equal(t, domain.TableStatusOccupied, status)
			occupiedTable = id
			occupiedWithOrder = currentOrderID
			return nil
		},
	}

	uc := newCreateUseCase(orderRepo, tableRepo)
	order, err := uc.Create(context.Background(), staffActor(1), validDineInRequest())
	require.NoError(t, err)

	assert.Equal(t, uint(42), order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-\d{4}$`), order.OrderNumber)

	// 1200 subtotal, 16% tax, 10% service charge.
	assert.Equal(t, 1200.0, order.Subtotal)
	assert.Equal(t, 192.0, order.Tax)
	assert.Equal(t, 120.0, order.ServiceCharge)
	assert.Equal(t, 1512.0, order.Total)

	assert.Equal(t, uint(7), occupiedTable)
	require.NotNil(t, occupiedWithOrder)
	assert.Equal(t, uint(42), *occupiedWithOrder)
}

func TestCreateOrder_TakeawaySkipsServiceCharge(t *testing.T) {
	orderRepo := &mockOrderRepo{
		insertFn: func(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error) {
			return 5, nil
		},
		insertItemFn: func(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error) {
			return 1, nil
		},
	}
	tableRepo := &mockTableRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Table, error) {
			t.Fatal("takeaway orders must not touch tables")
			return nil, nil
		},
	}

	uc := newCreateUseCase(orderRepo, tableRepo)
	order, err := uc.Create(context.Background(), staffActor(1), dto.CreateOrderRequest{
		OrderType: domain.OrderTypeTakeaway,
		Items:     []dto.OrderItemRequest{{MenuItemID: 1, Name: "Chips", Quantity: 1, Price: 100}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, order.ServiceCharge)
	assert.Equal(t, 116.0, order.Total)
	assert.Nil(t, order.TableID)
}

func TestCreateOrder_Validation(t *testing.T) {
	tableID := uint(3)
	cases := []struct {
		name  string
		req   dto.CreateOrderRequest
		field string
	}{
		{
			name: "dine-in without table",
			req: dto.CreateOrderRequest{
				OrderType: domain.OrderTypeDineIn,
				Items:     []dto.OrderItemRequest{{MenuItemID: 1, Name: "Chips", Quantity: 1, Price: 100}},
			},
			field: "tableId",
		},
		{
			name: "takeaway with table",
			req: dto.CreateOrderRequest{
				OrderType: domain.OrderTypeTakeaway,
				TableID:   &tableID,
				Items:     []dto.OrderItemRequest{{MenuItemID: 1, Name: "Chips", Quantity: 1, Price: 100}},
			},
			field: "tableId",
		},
		{
			name:  "unknown order type",
			req:   dto.CreateOrderRequest{OrderType: "drive-through", Items: []dto.OrderItemRequest{{MenuItemID: 1, Name: "Chips", Quantity: 1, Price: 100}}},
			field: "orderType",
		},
		{
			name:  "empty items",
			req:   dto.CreateOrderRequest{OrderType: domain.OrderTypeTakeaway},
			field: "items",
		},
		{
			name: "zero quantity",
			req: dto.CreateOrderRequest{
				OrderType: domain.OrderTypeTakeaway,
				Items:     []dto.OrderItemRequest{{MenuItemID: 1, Name: "Chips", Quantity: 0, Price: 100}},
			},
			field: "items[0].quantity",
		},
		{
			name: "negative discount",
			req: dto.CreateOrderRequest{
				OrderType: domain.OrderTypeTakeaway,
				Items:     []dto.OrderItemRequest{{MenuItemID: 1, Name: "Chips", Quantity: 1, Price: 100}},
				Discount:  -10,
			},
			field: "discount",
		},
	}

	uc := newCreateUseCase(&mockOrderRepo{}, &mockTableRepo{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), staffActor(1), tc.req)

			ve, ok := apperrors.IsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)

			fields := make([]string, 0, len(ve.Details))
			for _, d := range ve.Details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestCreateOrder_TableGuards(t *testing.T) {
	t.Run("other tenant", func(t *testing.T) {
		tableRepo := &mockTableRepo{
			findByIDFn: func(ctx context.Context, id uint) (*domain.Table, error) {
				return &domain.Table{ID: id, TenantID: 99, Status: domain.TableStatusAvailable}, nil
			},
		}
		uc := newCreateUseCase(&mockOrderRepo{}, tableRepo)

		_, err := uc.Create(context.Background(), staffActor(1), validDineInRequest())
		_, ok := apperrors.IsForbiddenError(err)
		assert.True(t, ok, "expected forbidden error, got %v", err)
	})

	t.Run("maintenance", func(t *testing.T) {
		tableRepo := &mockTableRepo{
			findByIDFn: func(ctx context.Context, id uint) (*domain.Table, error) {
				return &domain.Table{ID: id, TenantID: 1, TableNumber: "T7", Status: domain.TableStatusMaintenance}, nil
			},
		}
		uc := newCreateUseCase(&mockOrderRepo{}, tableRepo)

		_, err := uc.Create(context.Background(), staffActor(1), validDineInRequest())
		_, ok := apperrors.IsConflictError(err)
		assert.True(t, ok, "expected conflict error, got %v", err)
	})
}
