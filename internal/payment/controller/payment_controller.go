package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"comanda/internal/actor"
	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/httpx"
	"comanda/internal/payment/provider"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxCallbackBody = 64 << 10

type InitiateUseCase interface {
	Initiate(ctx context.Context, act actor.Actor, providerName string, req dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error)
}

type StatusUseCase interface {
	Status(ctx context.Context, act actor.Actor, transactionID uint) (*dto.TransactionStatusResponse, error)
	History(ctx context.Context, act actor.Actor, limit int) ([]*dto.TransactionStatusResponse, error)
}

type ResultApplier interface {
	Apply(ctx context.Context, result *dto.PaymentResult) (*domain.PaymentTransaction, error)
}

type PaymentController struct {
	initiateUC InitiateUseCase
	statusUC   StatusUseCase
	registry   *provider.Registry
	applier    ResultApplier
	logger     *zap.Logger
}

func NewPaymentController(
	initiateUC InitiateUseCase,
	statusUC StatusUseCase,
	registry *provider.Registry,
	applier ResultApplier,
	logger *zap.Logger,
) *PaymentController {
	return &PaymentController{
		initiateUC: initiateUC,
		statusUC:   statusUC,
		registry:   registry,
		applier:    applier,
		logger:     logger,
	}
}

func (c *PaymentController) Initiate(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	var req dto.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	resp, err := c.initiateUC.Initiate(r.Context(), act, chi.URLParam(r, "provider"), req)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, resp)
}

// callbackAck is what gateways expect back. It never varies: a failed apply
// is our problem, not the gateway's, and a non-200 only buys useless
// redelivery storms.
type callbackAck struct {
	ResultCode string `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func (c *PaymentController) Callback(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))
	providerName := chi.URLParam(r, "provider")

	ack := func() {
		httpx.WriteJSON(w, logger, http.StatusOK, callbackAck{ResultCode: "0", ResultDesc: "Accepted"})
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		logger.Warn("reading callback body failed", zap.String("provider", providerName), zap.Error(err))
		ack()
		return
	}

	adapter, err := c.registry.Get(providerName)
	if err != nil {
		logger.Warn("callback for unknown provider", zap.String("provider", providerName))
		ack()
		return
	}

	result, err := adapter.ParseCallback(payload)
	if err != nil {
		logger.Warn("unparseable callback payload",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		ack()
		return
	}

	if _, err := c.applier.Apply(r.Context(), result); err != nil {
		logger.Error("applying callback result failed",
			zap.String("provider", providerName),
			zap.String("reference", result.ExternalReference),
			zap.Error(err),
		)
	}

	ack()
}

func (c *PaymentController) Status(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "transactionId"), 10, 64)
	if err != nil {
		httpx.WriteError(w, logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "transactionId",
			Message: "transactionId must be a positive integer",
		}))
		return
	}

	resp, err := c.statusUC.Status(r.Context(), act, uint(id))
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, resp)
}

func (c *PaymentController) History(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := c.statusUC.History(r.Context(), act, limit)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, history)
}
