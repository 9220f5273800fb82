package usecase

import (
	"context"
	"fmt"
	"time"

	"comanda/internal/actor"
	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/notify"
	"comanda/internal/order/service"

	"go.uber.org/zap"
)

type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
}

type OrderStatusWriter interface {
	OrderReader
	UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error)
}

type EventPublisher interface {
	Publish(ev notify.Event)
}

type UpdateOrderStatusUseCase struct {
	orderRepo OrderStatusWriter
	printer   service.KitchenPrinter
	bus       EventPublisher
	logger    *zap.Logger
}

func NewUpdateOrderStatusUseCase(
	orderRepo OrderStatusWriter,
	printer service.KitchenPrinter,
	bus EventPublisher,
	logger *zap.Logger,
) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{
		orderRepo: orderRepo,
		printer:   printer,
		bus:       bus,
		logger:    logger,
	}
}

func (uc *UpdateOrderStatusUseCase) UpdateStatus(ctx context.Context, act actor.Actor, orderID uint, newStatus string) (*domain.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !act.Superadmin() && order.TenantID != act.TenantID {
		return nil, apperrors.NewForbiddenError("order belongs to another tenant")
	}

	if !domain.CanTransitionOrder(order.Status, newStatus) {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("order %s cannot move from %s to %s", order.OrderNumber, order.Status, newStatus))
	}

	// Compare-and-set on the status read above; a concurrent staff action
	// that moved the order first wins.
	applied, err := uc.orderRepo.UpdateStatus(ctx, orderID, order.Status, newStatus)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("order %s was modified concurrently", order.OrderNumber))
	}

	previous := order.Status
	order.Status = newStatus

	if newStatus == domain.OrderStatusPreparing {
		uc.printKitchenTicket(order)
	}

	uc.bus.Publish(notify.Event{
		Topic: notify.OrderTopic(order.ID),
		Type:  notify.TypeOrderStatusUpdate,
		Payload: notify.OrderStatusPayload{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Status:      newStatus,
		},
	})

	uc.logger.Info("order status updated",
		zap.Uint("orderId", order.ID),
		zap.String("from", previous),
		zap.String("to", newStatus),
	)

	return order, nil
}

// printKitchenTicket runs detached from the request: the transition has
// already committed and a printer outage must not undo it.
func (uc *UpdateOrderStatusUseCase) printKitchenTicket(order *domain.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := uc.printer.PrintTicket(ctx, order); err != nil {
			uc.logger.Warn("kitchen ticket print failed",
				zap.Uint("orderId", order.ID),
				zap.String("orderNumber", order.OrderNumber),
				zap.Error(err),
			)
		}
	}()
}
