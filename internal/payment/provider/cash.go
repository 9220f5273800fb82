package provider

import (
	"context"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
)

// CashAdapter settles immediately: there is no gateway, the money is in the
// till. Initiation reports success and the caller synthesizes the completed
// result.
type CashAdapter struct{}

func NewCashAdapter() *CashAdapter {
	return &CashAdapter{}
}

func (CashAdapter) Name() string {
	return domain.ProviderCash
}

func (CashAdapter) Initiate(ctx context.Context, cfg *domain.TenantPaymentConfig, tx *domain.PaymentTransaction, order *domain.Order) (*InitiationResult, error) {
	return &InitiationResult{
		Accepted:            true,
		ResponseCode:        "0",
		ResponseDescription: "cash received",
	}, nil
}

func (CashAdapter) ParseCallback(payload []byte) (*dto.PaymentResult, error) {
	return nil, apperrors.NewValidationError("cash payments have no callbacks")
}

func (CashAdapter) CheckStatus(ctx context.Context, cfg *domain.TenantPaymentConfig, externalReference string) (*dto.PaymentResult, error) {
	return nil, apperrors.NewValidationError("cash payments have no gateway status")
}
