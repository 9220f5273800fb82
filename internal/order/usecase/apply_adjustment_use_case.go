package usecase

import (
	"context"
	"database/sql"
	"fmt"

	"comanda/internal/actor"
	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"

	"go.uber.org/zap"
)

const (
	AdjustmentFieldDiscount      = "discount"
	AdjustmentFieldServiceCharge = "serviceCharge"
)

type AdjustmentWriter interface {
	OrderReader
	InsertAdjustment(ctx context.Context, tx *sql.Tx, adj domain.OrderAdjustment) (uint, error)
	UpdateCharges(ctx context.Context, tx *sql.Tx, id uint, serviceCharge, discount, total float64) error
}

// ApplyAdjustmentUseCase records a post-creation edit to an order's charges,
// keeping the audit trail and the total identity intact.
type ApplyAdjustmentUseCase struct {
	runner    TxRunner
	orderRepo AdjustmentWriter
	logger    *zap.Logger
}

func NewApplyAdjustmentUseCase(runner TxRunner, orderRepo AdjustmentWriter, logger *zap.Logger) *ApplyAdjustmentUseCase {
	return &ApplyAdjustmentUseCase{
		runner:    runner,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

func (uc *ApplyAdjustmentUseCase) Apply(ctx context.Context, act actor.Actor, orderID uint, req dto.AdjustmentRequest) (*domain.Order, error) {
	if req.Field != AdjustmentFieldDiscount && req.Field != AdjustmentFieldServiceCharge {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "field",
			Message: "field must be discount or serviceCharge",
		})
	}
	if req.NewValue < 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "newValue",
			Message: "newValue must be non-negative",
		})
	}

	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !act.Superadmin() && order.TenantID != act.TenantID {
		return nil, apperrors.NewForbiddenError("order belongs to another tenant")
	}
	if !order.Active() {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("order %s is %s and can no longer be adjusted", order.OrderNumber, order.Status))
	}
	if req.Field == AdjustmentFieldServiceCharge && order.OrderType != domain.OrderTypeDineIn {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "field",
			Message: "serviceCharge applies to dine-in orders only",
		})
	}

	oldValue := order.Discount
	if req.Field == AdjustmentFieldServiceCharge {
		oldValue = order.ServiceCharge
	}

	serviceCharge := order.ServiceCharge
	discount := order.Discount
	if req.Field == AdjustmentFieldServiceCharge {
		serviceCharge = req.NewValue
	} else {
		discount = req.NewValue
	}
	total := round2(order.Subtotal + order.Tax + serviceCharge - discount)
	if total < 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "newValue",
			Message: "adjustment would make the total negative",
		})
	}

	adj := domain.OrderAdjustment{
		OrderID:   orderID,
		Field:     req.Field,
		OldValue:  oldValue,
		NewValue:  req.NewValue,
		Reason:    req.Reason,
		AppliedBy: act.Role,
	}

	err = uc.runner.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := uc.orderRepo.InsertAdjustment(ctx, tx, adj); err != nil {
			return err
		}
		return uc.orderRepo.UpdateCharges(ctx, tx, orderID, serviceCharge, discount, total)
	})
	if err != nil {
		return nil, err
	}

	order.ServiceCharge = serviceCharge
	order.Discount = discount
	order.Total = total

	uc.logger.Info("order adjusted",
		zap.Uint("orderId", orderID),
		zap.String("field", req.Field),
		zap.Float64("oldValue", oldValue),
		zap.Float64("newValue", req.NewValue),
	)

	return order, nil
}
