package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
)

const (
	cardSandboxBaseURL    = "https://sandbox.cardgateway.africa/v1"
	cardProductionBaseURL = "https://api.cardgateway.africa/v1"
)

// CardAdapter creates hosted checkout sessions. The payer completes the
// charge on the gateway's page and the outcome arrives on the webhook.
type CardAdapter struct {
	client          *http.Client
	callbackBaseURL string
	sandboxURL      string
	productionURL   string
}

func NewCardAdapter(timeout time.Duration, callbackBaseURL string) *CardAdapter {
	return &CardAdapter{
		client:          &http.Client{Timeout: timeout},
		callbackBaseURL: callbackBaseURL,
		sandboxURL:      cardSandboxBaseURL,
		productionURL:   cardProductionBaseURL,
	}
}

func (a *CardAdapter) Name() string {
	return domain.ProviderCard
}

// Test keys route to the sandbox, matching how the gateway issues them.
func (a *CardAdapter) baseURL(cfg *domain.TenantPaymentConfig) string {
	if strings.HasPrefix(cfg.Card.SecretKey, "sk_test_") {
		return a.sandboxURL
	}
	return a.productionURL
}

type checkoutSessionRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Reference   string  `json:"reference"`
	Email       string  `json:"email,omitempty"`
	CallbackURL string  `json:"callbackUrl"`
}

type checkoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func (a *CardAdapter) Initiate(ctx context.Context, cfg *domain.TenantPaymentConfig, tx *domain.PaymentTransaction, order *domain.Order) (*InitiationResult, error) {
	body := checkoutSessionRequest{
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Reference:   order.OrderNumber,
		Email:       tx.PayerReference,
		CallbackURL: a.callbackBaseURL + "/api/v1/payments/card/callback",
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding checkout session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL(cfg)+"/checkout/sessions", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building checkout session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Card.SecretKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewGatewayError("card gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperrors.NewGatewayError(fmt.Sprintf("card gateway returned status %d", resp.StatusCode), nil)
	}

	var session checkoutSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperrors.NewGatewayError("decoding card gateway response", err)
	}

	accepted := resp.StatusCode < 300 && session.SessionID != ""
	code := "0"
	if !accepted {
		code = "1"
	}

	return &InitiationResult{
		ExternalReference:   session.SessionID,
		Accepted:            accepted,
		ResponseCode:        code,
		ResponseDescription: session.Message,
	}, nil
}

type cardWebhookPayload struct {
	SessionID string  `json:"sessionId"`
	Status    string  `json:"status"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Message   string  `json:"message"`
	Receipt   string  `json:"receipt"`
}

func (a *CardAdapter) ParseCallback(payload []byte) (*dto.PaymentResult, error) {
	var webhook cardWebhookPayload
	if err := json.Unmarshal(payload, &webhook); err != nil {
		return nil, apperrors.NewValidationError("callback payload is not valid JSON")
	}
	if webhook.SessionID == "" {
		return nil, apperrors.NewValidationError("callback payload carries no session id")
	}

	status := dto.ResultStatusFailed
	code := "1"
	switch webhook.Status {
	case "succeeded", "success", "completed":
		status = dto.ResultStatusCompleted
		code = "0"
	}

	return &dto.PaymentResult{
		Provider:          domain.ProviderCard,
		Status:            status,
		ExternalReference: webhook.SessionID,
		ResultCode:        code,
		ResultDescription: webhook.Message,
		Receipt:           webhook.Receipt,
		Amount:            webhook.Amount,
	}, nil
}

func (a *CardAdapter) CheckStatus(ctx context.Context, cfg *domain.TenantPaymentConfig, externalReference string) (*dto.PaymentResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL(cfg)+"/checkout/sessions/"+externalReference, nil)
	if err != nil {
		return nil, fmt.Errorf("building session status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Card.SecretKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewGatewayError("card gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperrors.NewGatewayError(fmt.Sprintf("card gateway returned status %d", resp.StatusCode), nil)
	}

	var session cardWebhookPayload
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperrors.NewGatewayError("decoding card gateway response", err)
	}

	result := &dto.PaymentResult{
		Provider:          domain.ProviderCard,
		ExternalReference: externalReference,
		ResultDescription: session.Message,
		Receipt:           session.Receipt,
		Amount:            session.Amount,
	}

	switch session.Status {
	case "succeeded", "success", "completed":
		result.Status = dto.ResultStatusCompleted
		result.ResultCode = "0"
	case "pending", "processing", "open":
		result.Status = dto.ResultStatusPending
	default:
		result.Status = dto.ResultStatusFailed
		result.ResultCode = "1"
	}

	return result, nil
}
