package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"comanda/internal/actor"
	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateOrderUseCase interface {
	Create(ctx context.Context, act actor.Actor, req dto.CreateOrderRequest) (*domain.Order, error)
}

type UpdateOrderStatusUseCase interface {
	UpdateStatus(ctx context.Context, act actor.Actor, orderID uint, newStatus string) (*domain.Order, error)
}

type ApplyAdjustmentUseCase interface {
	Apply(ctx context.Context, act actor.Actor, orderID uint, req dto.AdjustmentRequest) (*domain.Order, error)
}

type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
}

type OrderController struct {
	createUC CreateOrderUseCase
	statusUC UpdateOrderStatusUseCase
	adjustUC ApplyAdjustmentUseCase
	reader   OrderReader
	logger   *zap.Logger
}

func NewOrderController(
	createUC CreateOrderUseCase,
	statusUC UpdateOrderStatusUseCase,
	adjustUC ApplyAdjustmentUseCase,
	reader OrderReader,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		createUC: createUC,
		statusUC: statusUC,
		adjustUC: adjustUC,
		reader:   reader,
		logger:   logger,
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteError(w, logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	order, err := c.createUC.Create(r.Context(), act, req)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusCreated, toOrderResponse(order))
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	orderID, err := parseOrderID(r)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	order, err := c.reader.FindByID(r.Context(), orderID)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	if !act.Superadmin() && order.TenantID != act.TenantID {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("order belongs to another tenant"))
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toOrderResponse(order))
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	orderID, err := parseOrderID(r)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}
	if req.Status == "" {
		httpx.WriteError(w, logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status is required",
		}))
		return
	}

	order, err := c.statusUC.UpdateStatus(r.Context(), act, orderID, req.Status)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toOrderResponse(order))
}

func (c *OrderController) ApplyAdjustment(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	orderID, err := parseOrderID(r)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	var req dto.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	order, err := c.adjustUC.Apply(r.Context(), act, orderID, req)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toOrderResponse(order))
}

func parseOrderID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
	}
	return uint(id), nil
}

func toOrderResponse(order *domain.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = dto.OrderItemResponse{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
		}
	}

	resp := dto.OrderResponse{
		ID:            order.ID,
		TenantID:      order.TenantID,
		OrderNumber:   order.OrderNumber,
		OrderType:     order.OrderType,
		Status:        order.Status,
		TableID:       order.TableID,
		Items:         items,
		Subtotal:      order.Subtotal,
		Tax:           order.Tax,
		ServiceCharge: order.ServiceCharge,
		Discount:      order.Discount,
		Total:         order.Total,
		PaymentStatus: order.PaymentStatus,
		PaidAt:        order.PaidAt,
		CreatedAt:     order.CreatedAt,
	}
	if order.PaymentMethod != nil {
		resp.PaymentMethod = *order.PaymentMethod
	}
	return resp
}
