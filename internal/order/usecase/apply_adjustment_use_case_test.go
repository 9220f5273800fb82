package usecase

import (
	"context"
	"database/sql"
	"testing"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func adjustableOrder() *domain.Order {
	return &domain.Order{
		ID:            42,
		TenantID:      1,
		OrderNumber:   "ORD-20260831-0042",
		OrderType:     domain.OrderTypeDineIn,
		Status:        domain.OrderStatusConfirmed,
		Subtotal:      1000,
		Tax:           160,
		ServiceCharge: 100,
		Discount:      0,
		Total:         1260,
	}
}

func TestApplyAdjustment_Discount(t *testing.T) {
	order := adjustableOrder()
	var recorded domain.OrderAdjustment
	var newTotal float64
	orderRepo := &mockOrderRepo{
		findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
			return order, nil
		},
		insertAdjustmentFn: func(ctx context.Context, tx *sql.Tx, adj domain.OrderAdjustment) (uint, error) {
			recorded = adj
			return 1, nil
		},
		updateChargesFn: func(ctx context.Context, tx *sql.Tx, id uint, serviceCharge, discount, total float64) error {
			newTotal = total
			return nil
		},
	}

	uc := NewApplyAdjustmentUseCase(&mockTxRunner{}, orderRepo, zap.NewNop())
	updated, err := uc.Apply(context.Background(), staffActor(1), 42, dto.AdjustmentRequest{
		Field:    AdjustmentFieldDiscount,
		NewValue: 200,
		Reason:   "loyal customer",
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, updated.Discount)
	assert.Equal(t, 1060.0, updated.Total)
	assert.Equal(t, 1060.0, newTotal)

	assert.Equal(t, AdjustmentFieldDiscount, recorded.Field)
	assert.Equal(t, 0.0, recorded.OldValue)
	assert.Equal(t, 200.0, recorded.NewValue)
	assert.Equal(t, "loyal customer", recorded.Reason)
	assert.Equal(t, "staff", recorded.AppliedBy)
}

func TestApplyAdjustment_Rejections(t *testing.T) {
	completed := adjustableOrder()
	completed.Status = domain.OrderStatusCompleted

	takeaway := adjustableOrder()
	takeaway.OrderType = domain.OrderTypeTakeaway

	cases := []struct {
		name       string
		order      *domain.Order
		req        dto.AdjustmentRequest
		isConflict bool
	}{
		{
			name:  "unknown field",
			order: adjustableOrder(),
			req:   dto.AdjustmentRequest{Field: "tip", NewValue: 10},
		},
		{
			name:  "negative value",
			order: adjustableOrder(),
			req:   dto.AdjustmentRequest{Field: AdjustmentFieldDiscount, NewValue: -5},
		},
		{
			name:       "completed order",
			order:      completed,
			req:        dto.AdjustmentRequest{Field: AdjustmentFieldDiscount, NewValue: 10},
			isConflict: true,
		},
		{
			name:  "service charge on takeaway",
			order: takeaway,
			req:   dto.AdjustmentRequest{Field: AdjustmentFieldServiceCharge, NewValue: 50},
		},
		{
			name:  "discount exceeding total",
			order: adjustableOrder(),
			req:   dto.AdjustmentRequest{Field: AdjustmentFieldDiscount, NewValue: 5000},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orderRepo := &mockOrderRepo{
				findByIDFn: func(ctx context.Context, id uint) (*domain.Order, error) {
					return tc.order, nil
				},
			}
			uc := NewApplyAdjustmentUseCase(&mockTxRunner{}, orderRepo, zap.NewNop())

			_, err := uc.Apply(context.Background(), staffActor(1), 42, tc.req)
			require.Error(t, err)
			if tc.isConflict {
				_, ok := apperrors.IsConflictError(err)
				assert.True(t, ok, "expected conflict error, got %v", err)
			} else {
				_, ok := apperrors.IsValidationError(err)
				assert.True(t, ok, "expected validation error, got %v", err)
			}
		})
	}
}
