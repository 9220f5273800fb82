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

type TableUseCase interface {
	UpdateStatus(ctx context.Context, act actor.Actor, tableID uint, newStatus string) (*domain.Table, error)
	Get(ctx context.Context, act actor.Actor, tableID uint) (*domain.Table, error)
}

type TableController struct {
	useCase TableUseCase
	logger  *zap.Logger
}

func NewTableController(useCase TableUseCase, logger *zap.Logger) *TableController {
	return &TableController{useCase: useCase, logger: logger}
}

// releaseBlockedResponse mirrors the shape clients already parse for a
// blocked release: the blocking order numbers ride in details.
type releaseBlockedResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (c *TableController) Get(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	tableID, err := parseTableID(r)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	table, err := c.useCase.Get(r.Context(), act, tableID)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toTableResponse(table))
}

func (c *TableController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger := c.logger.With(zap.String("traceId", uuid.New().String()))

	act, ok := actor.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, apperrors.NewForbiddenError("missing actor"))
		return
	}

	tableID, err := parseTableID(r)
	if err != nil {
		httpx.WriteError(w, logger, err)
		return
	}

	var req dto.TableStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	table, err := c.useCase.UpdateStatus(r.Context(), act, tableID, req.Status)
	if err != nil {
		// A blocked release answers 400 with the blocking order numbers so
		// the till can show staff exactly what to settle first.
		if ce, ok := apperrors.IsConflictError(err); ok && len(ce.Details) > 0 {
			httpx.WriteJSON(w, logger, http.StatusBadRequest, releaseBlockedResponse{
				Error:   "TABLE_RELEASE_BLOCKED",
				Message: ce.Message,
				Details: ce.Details,
			})
			return
		}
		httpx.WriteError(w, logger, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toTableResponse(table))
}

func parseTableID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "tableId"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "tableId",
			Message: "tableId must be a positive integer",
		})
	}
	return uint(id), nil
}

func toTableResponse(table *domain.Table) dto.TableResponse {
	return dto.TableResponse{
		ID:             table.ID,
		TenantID:       table.TenantID,
		TableNumber:    table.TableNumber,
		Capacity:       table.Capacity,
		Status:         table.Status,
		CurrentOrderID: table.CurrentOrderID,
		UpdatedAt:      table.UpdatedAt,
	}
}
