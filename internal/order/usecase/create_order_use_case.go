package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"comanda/internal/actor"
	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"

	"go.uber.org/zap"
)

type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type OrderWriter interface {
	Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error)
	InsertItem(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error)
}

type TableReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Table, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error
}

type CreateOrderUseCase struct {
	runner            TxRunner
	orderRepo         OrderWriter
	tableRepo         TableReader
	logger            *zap.Logger
	taxRate           float64
	serviceChargeRate float64
}

func NewCreateOrderUseCase(
	runner TxRunner,
	orderRepo OrderWriter,
	tableRepo TableReader,
	logger *zap.Logger,
	taxRate float64,
	serviceChargeRate float64,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		runner:            runner,
		orderRepo:         orderRepo,
		tableRepo:         tableRepo,
		logger:            logger,
		taxRate:           taxRate,
		serviceChargeRate: serviceChargeRate,
	}
}

func (uc *CreateOrderUseCase) Create(ctx context.Context, act actor.Actor, req dto.CreateOrderRequest) (*domain.Order, error) {
	if err := validateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	subtotal := 0.0
	for _, item := range req.Items {
		subtotal += item.Price * float64(item.Quantity)
	}

	// Service charge applies to dine-in only; the total identity
	// total = subtotal + tax + serviceCharge - discount must hold.
	tax := round2(subtotal * uc.taxRate)
	serviceCharge := 0.0
	if req.OrderType == domain.OrderTypeDineIn {
		serviceCharge = round2(subtotal * uc.serviceChargeRate)
	}

	if req.Discount > subtotal+tax+serviceCharge {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "discount",
			Message: "discount exceeds order value",
		})
	}

	order := &domain.Order{
		TenantID:      act.TenantID,
		OrderNumber:   newOrderNumber(),
		OrderType:     req.OrderType,
		Status:        domain.OrderStatusPending,
		TableID:       req.TableID,
		Subtotal:      subtotal,
		Tax:           tax,
		ServiceCharge: serviceCharge,
		Discount:      req.Discount,
		Total:         round2(subtotal + tax + serviceCharge - req.Discount),
		PaymentStatus: domain.PaymentStatusPending,
	}

	if req.TableID != nil {
		table, err := uc.tableRepo.FindByID(ctx, *req.TableID)
		if err != nil {
			return nil, err
		}
		if table.TenantID != act.TenantID {
			return nil, apperrors.NewForbiddenError("table belongs to another tenant")
		}
		if table.Status == domain.TableStatusMaintenance {
			return nil, apperrors.NewConflictError(fmt.Sprintf("table %s is under maintenance", table.TableNumber))
		}
	}

	err := uc.runner.InTx(ctx, func(tx *sql.Tx) error {
		id, err := uc.orderRepo.Insert(ctx, tx, order)
		if err != nil {
			return err
		}
		order.ID = id

		for i := range req.Items {
			item := domain.OrderItem{
				OrderID:    id,
				MenuItemID: req.Items[i].MenuItemID,
				Name:       req.Items[i].Name,
				Quantity:   req.Items[i].Quantity,
				Price:      req.Items[i].Price,
			}
			itemID, err := uc.orderRepo.InsertItem(ctx, tx, item)
			if err != nil {
				return err
			}
			item.ID = itemID
			order.Items = append(order.Items, item)
		}

		// Occupying the table is a non-available transition, always permitted.
		if order.TableID != nil {
			if err := uc.tableRepo.UpdateStatusTx(ctx, tx, *order.TableID, domain.TableStatusOccupied, &order.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		uc.logger.Error("creating order failed", zap.Int("tenantId", act.TenantID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("order created",
		zap.Uint("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("orderType", order.OrderType),
		zap.Float64("total", order.Total),
	)

	return order, nil
}

func validateCreateOrderRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	switch req.OrderType {
	case domain.OrderTypeDineIn:
		if req.TableID == nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "tableId",
				Message: "tableId is required for dine-in orders",
			})
		}
	case domain.OrderTypeTakeaway, domain.OrderTypeDelivery:
		if req.TableID != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "tableId",
				Message: "tableId is only valid for dine-in orders",
			})
		}
	default:
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderType",
			Message: "orderType must be dine-in, takeaway or delivery",
		})
	}

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	for idx, item := range req.Items {
		if item.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be at least 1",
			})
		}
		if item.Price < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].price",
				Message: "price must be non-negative",
			})
		}
		if item.Name == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].name",
				Message: "name is required",
			})
		}
	}

	if req.Discount < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "discount",
			Message: "discount must be non-negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102"), rand.Intn(10000))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
