// Package httpx holds the response helpers shared by the HTTP controllers.
package httpx

import (
	"encoding/json"
	"net/http"

	apperrors "comanda/internal/errors"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError maps the error taxonomy onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		WriteJSON(w, logger, http.StatusBadRequest, ErrorResponse{
			Error:   "VALIDATION_ERROR",
			Message: ve.Message,
			Details: ve.Details,
		})
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		WriteJSON(w, logger, http.StatusNotFound, ErrorResponse{
			Error:   "NOT_FOUND",
			Message: nfe.Message,
		})
		return
	}

	if fe, ok := apperrors.IsForbiddenError(err); ok {
		WriteJSON(w, logger, http.StatusForbidden, ErrorResponse{
			Error:   "FORBIDDEN",
			Message: fe.Message,
		})
		return
	}

	if ce, ok := apperrors.IsConfigurationError(err); ok {
		WriteJSON(w, logger, http.StatusBadRequest, ErrorResponse{
			Error:   "CONFIGURATION_ERROR",
			Message: ce.Message,
		})
		return
	}

	if ce, ok := apperrors.IsConflictError(err); ok {
		WriteJSON(w, logger, http.StatusConflict, ErrorResponse{
			Error:   "CONFLICT",
			Message: ce.Message,
		})
		return
	}

	if ge, ok := apperrors.IsGatewayError(err); ok {
		logger.Error("gateway error", zap.Error(ge))
		WriteJSON(w, logger, http.StatusBadGateway, ErrorResponse{
			Error:   "GATEWAY_ERROR",
			Message: "upstream payment gateway is unavailable",
		})
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	WriteJSON(w, logger, http.StatusInternalServerError, ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
	})
}
