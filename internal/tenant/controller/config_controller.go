package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"comanda/internal/actor"
	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConfigUseCase interface {
	Get(ctx context.Context, act actor.Actor, tenantID int) (*domain.TenantPaymentConfig, error)
	Put(ctx context.Context, act actor.Actor, tenantID int, cfg *domain.TenantPaymentConfig) (*domain.TenantPaymentConfig, error)
	List(ctx context.Context, act actor.Actor) ([]*domain.TenantPaymentConfig, error)
}

type ConfigController struct {
	useCase ConfigUseCase
	logger  *zap.Logger
}

func NewConfigController(useCase ConfigUseCase, logger *zap.Logger) *ConfigController {
	return &ConfigController{useCase: useCase, logger: logger}
}

func (c *ConfigController) Get(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	tenantID, err := parseTenantID(r)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	cfg, err := c.useCase.Get(r.Context(), act, tenantID)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, cfg)
}

func (c *ConfigController) Put(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	tenantID, err := parseTenantID(r)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	var cfg domain.TenantPaymentConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		httpx.WriteError(w, logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	updated, err := c.useCase.Put(r.Context(), act, tenantID, &cfg)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, updated)
}

func (c *ConfigController) List(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	configs, err := c.useCase.List(r.Context(), act)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, configs)
}

func parseTenantID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "tenantId"))
	if err != nil || id < 1 {
		return 0, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "tenantId",
			Message: "tenantId must be a positive integer",
		})
	}
	return id, nil
}
