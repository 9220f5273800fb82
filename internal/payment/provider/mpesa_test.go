package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mpesaConfig() *domain.TenantPaymentConfig {
	return &domain.TenantPaymentConfig{
		TenantID:        1,
		DefaultCurrency: domain.CurrencyKES,
		MobileMoney: domain.MobileMoneyConfig{
			Enabled:        true,
			Environment:    domain.EnvironmentSandbox,
			ShortCode:      "174379",
			ConsumerKey:    "ck",
			ConsumerSecret: "cs",
			Passkey:        "pk",
		},
	}
}

func pendingTransaction() *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:             11,
		TenantID:       1,
		OrderID:        42,
		Provider:       domain.ProviderMpesa,
		PayerReference: "0712345678",
		Amount:         1512,
		Currency:       domain.CurrencyKES,
		Status:         domain.TransactionStatusPending,
	}
}

func adapterAgainst(url string) *MpesaAdapter {
	a := NewMpesaAdapter(2*time.Second, "https://pos.example.com")
	a.sandboxURL = url
	a.productionURL = url
	return a
}

func TestMpesaInitiate(t *testing.T) {
	var captured stkPushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck", user)
		assert.Equal(t, "cs", pass)

		json.NewEncoder(w).Encode(stkPushResponse{
			CheckoutRequestID:   "ws_CO_12345",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
		})
	}))
	defer srv.Close()

	a := adapterAgainst(srv.URL)
	order := &domain.Order{ID: 42, OrderNumber: "ORD-20260831-0042"}

	result, err := a.Initiate(context.Background(), mpesaConfig(), pendingTransaction(), order)
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, "ws_CO_12345", result.ExternalReference)

	assert.Equal(t, "254712345678", captured.PhoneNumber)
	assert.Equal(t, "174379", captured.BusinessShortCode)
	assert.Equal(t, "1512", captured.Amount)
	assert.Equal(t, "ORD-20260831-0042", captured.AccountReference)
	assert.Contains(t, captured.CallBackURL, "/payments/mpesa/callback")
	assert.NotEmpty(t, captured.Password)
}

func TestMpesaInitiate_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(stkPushResponse{
			ResponseCode: "1",
			ErrorMessage: "Invalid PhoneNumber",
		})
	}))
	defer srv.Close()

	a := adapterAgainst(srv.URL)
	result, err := a.Initiate(context.Background(), mpesaConfig(), pendingTransaction(), &domain.Order{OrderNumber: "ORD-1"})
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, "Invalid PhoneNumber", result.ResponseDescription)
}

func TestMpesaInitiate_GatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := adapterAgainst(srv.URL)
	_, err := a.Initiate(context.Background(), mpesaConfig(), pendingTransaction(), &domain.Order{OrderNumber: "ORD-1"})

	_, ok := apperrors.IsGatewayError(err)
	assert.True(t, ok, "expected gateway error, got %v", err)
}

func TestMpesaInitiate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := adapterAgainst(srv.URL)
	_, err := a.Initiate(context.Background(), mpesaConfig(), pendingTransaction(), &domain.Order{OrderNumber: "ORD-1"})

	_, ok := apperrors.IsGatewayError(err)
	assert.True(t, ok, "expected gateway error, got %v", err)
}

func TestMpesaParseCallback(t *testing.T) {
	a := NewMpesaAdapter(time.Second, "")

	t.Run("nested stk envelope with metadata", func(t *testing.T) {
		payload := []byte(`{
			"Body": {
				"stkCallback": {
					"CheckoutRequestID": "ws_CO_12345",
					"ResultCode": 0,
					"ResultDesc": "The service request is processed successfully.",
					"CallbackMetadata": {
						"Item": [
							{"Name": "Amount", "Value": 1512.0},
							{"Name": "MpesaReceiptNumber", "Value": "SAB12CD34E"},
							{"Name": "PhoneNumber", "Value": 254712345678}
						]
					}
				}
			}
		}`)

		result, err := a.ParseCallback(payload)
		require.NoError(t, err)

		assert.Equal(t, dto.ResultStatusCompleted, result.Status)
		assert.Equal(t, "ws_CO_12345", result.ExternalReference)
		assert.Equal(t, "0", result.ResultCode)
		assert.Equal(t, "SAB12CD34E", result.Receipt)
		assert.Equal(t, 1512.0, result.Amount)
		assert.Equal(t, "254712345678", result.PayerReference)
	})

	t.Run("flat camelCase with string code", func(t *testing.T) {
		payload := []byte(`{"checkoutRequestId":"ws_CO_9","resultCode":"1032","resultDesc":"Request cancelled by user"}`)

		result, err := a.ParseCallback(payload)
		require.NoError(t, err)

		assert.Equal(t, dto.ResultStatusFailed, result.Status)
		assert.Equal(t, "1032", result.ResultCode)
		assert.Equal(t, "Request cancelled by user", result.ResultDescription)
	})

	t.Run("textual status without code", func(t *testing.T) {
		payload := []byte(`{"transactionId":"ws_CO_7","status":"success","receipt":"SAB99ZZ00X"}`)

		result, err := a.ParseCallback(payload)
		require.NoError(t, err)

		assert.Equal(t, dto.ResultStatusCompleted, result.Status)
		assert.Equal(t, "SAB99ZZ00X", result.Receipt)
	})

	t.Run("missing reference", func(t *testing.T) {
		_, err := a.ParseCallback([]byte(`{"ResultCode":0}`))
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok, "expected validation error, got %v", err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := a.ParseCallback([]byte(`not-json`))
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok, "expected validation error, got %v", err)
	})
}

func TestMpesaCheckStatus(t *testing.T) {
	cases := []struct {
		name       string
		resultCode string
		want       string
	}{
		{"completed", "0", dto.ResultStatusCompleted},
		{"still pending", "1037", dto.ResultStatusPending},
		{"cancelled", "1032", dto.ResultStatusFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(stkQueryResponse{ResultCode: tc.resultCode, ResultDesc: tc.name})
			}))
			defer srv.Close()

			a := adapterAgainst(srv.URL)
			result, err := a.CheckStatus(context.Background(), mpesaConfig(), "ws_CO_12345")
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Status)
		})
	}
}
