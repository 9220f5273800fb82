// Package provider holds the gateway adapters. Each adapter translates one
// payment channel's wire formats into the normalized initiation and result
// types the rest of the system works with.
package provider

import (
	"context"
	"fmt"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
)

// InitiationResult is a gateway's answer to an initiation request.
type InitiationResult struct {
	ExternalReference   string
	Accepted            bool
	ResponseCode        string
	ResponseDescription string
}

type Adapter interface {
	Name() string

	// Initiate asks the gateway to start collecting the payment. A non-nil
	// error of type GatewayError is retryable; any other error is not.
	Initiate(ctx context.Context, cfg *domain.TenantPaymentConfig, tx *domain.PaymentTransaction, order *domain.Order) (*InitiationResult, error)

	// ParseCallback normalizes an inbound asynchronous notification.
	ParseCallback(payload []byte) (*dto.PaymentResult, error)

	// CheckStatus queries the gateway for the current state of a payment.
	CheckStatus(ctx context.Context, cfg *domain.TenantPaymentConfig, externalReference string) (*dto.PaymentResult, error)
}

type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "provider",
			Message: fmt.Sprintf("unknown payment provider %q", name),
		})
	}
	return a, nil
}
