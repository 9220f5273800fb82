package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
)

const (
	mpesaSandboxBaseURL    = "https://sandbox.safaricom.co.ke/mpesa"
	mpesaProductionBaseURL = "https://api.safaricom.co.ke/mpesa"

	// ResultCode 1037 means the STK prompt timed out on the handset; the
	// gateway may still deliver a final callback.
	mpesaResultCodePending = "1037"
)

// MpesaAdapter drives STK push collections. The payer gets a PIN prompt on
// their handset and the gateway reports the outcome through an asynchronous
// callback.
type MpesaAdapter struct {
	client          *http.Client
	callbackBaseURL string
	sandboxURL      string
	productionURL   string
}

func NewMpesaAdapter(timeout time.Duration, callbackBaseURL string) *MpesaAdapter {
	return &MpesaAdapter{
		client:          &http.Client{Timeout: timeout},
		callbackBaseURL: callbackBaseURL,
		sandboxURL:      mpesaSandboxBaseURL,
		productionURL:   mpesaProductionBaseURL,
	}
}

func (a *MpesaAdapter) Name() string {
	return domain.ProviderMpesa
}

func (a *MpesaAdapter) baseURL(cfg *domain.TenantPaymentConfig) string {
	if cfg.MobileMoney.Environment == domain.EnvironmentProduction {
		return a.productionURL
	}
	return a.sandboxURL
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ErrorMessage        string `json:"errorMessage"`
}

func (a *MpesaAdapter) Initiate(ctx context.Context, cfg *domain.TenantPaymentConfig, tx *domain.PaymentTransaction, order *domain.Order) (*InitiationResult, error) {
	phone, err := NormalizeMSISDN(tx.PayerReference, tx.Currency)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(cfg.MobileMoney.ShortCode + cfg.MobileMoney.Passkey + timestamp))

	body := stkPushRequest{
		BusinessShortCode: cfg.MobileMoney.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            strconv.Itoa(int(tx.Amount)),
		PartyA:            phone,
		PartyB:            cfg.MobileMoney.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       a.callbackBaseURL + "/api/v1/payments/mpesa/callback",
		AccountReference:  order.OrderNumber,
		TransactionDesc:   "Payment for order " + order.OrderNumber,
	}

	var resp stkPushResponse
	if err := a.post(ctx, cfg, a.baseURL(cfg)+"/stkpush/v1/processrequest", body, &resp); err != nil {
		return nil, err
	}

	return &InitiationResult{
		ExternalReference:   resp.CheckoutRequestID,
		Accepted:            resp.ResponseCode == "0",
		ResponseCode:        resp.ResponseCode,
		ResponseDescription: firstNonEmpty(resp.ResponseDescription, resp.ErrorMessage),
	}, nil
}

// ParseCallback tolerates the shapes gateways actually send: the nested
// Body.stkCallback envelope, flat PascalCase fields, and flat camelCase
// fields, with the result code arriving as either a number or a string.
func (a *MpesaAdapter) ParseCallback(payload []byte) (*dto.PaymentResult, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, apperrors.NewValidationError("callback payload is not valid JSON")
	}

	if body, ok := raw["Body"].(map[string]any); ok {
		if callback, ok := body["stkCallback"].(map[string]any); ok {
			raw = callback
		}
	}

	reference := stringField(raw, "CheckoutRequestID", "checkoutRequestId", "transactionId", "reference")
	if reference == "" {
		return nil, apperrors.NewValidationError("callback payload carries no transaction reference")
	}

	code, codeFound := resultCode(raw)
	status := dto.ResultStatusFailed
	if codeFound && code == "0" {
		status = dto.ResultStatusCompleted
	} else if !codeFound {
		// Some gateways send a textual status instead of a code.
		switch stringField(raw, "status", "Status") {
		case "success", "SUCCESS", "completed":
			status = dto.ResultStatusCompleted
			code = "0"
		default:
			return nil, apperrors.NewValidationError("callback payload carries no result code")
		}
	}

	result := &dto.PaymentResult{
		Provider:          domain.ProviderMpesa,
		Status:            status,
		ExternalReference: reference,
		ResultCode:        code,
		ResultDescription: stringField(raw, "ResultDesc", "resultDesc", "message"),
		Receipt:           stringField(raw, "MpesaReceiptNumber", "mpesaReceiptNumber", "receipt"),
		PayerReference:    stringField(raw, "PhoneNumber", "phoneNumber", "msisdn"),
	}
	if amount, ok := numberField(raw, "Amount", "amount"); ok {
		result.Amount = amount
	}

	// Receipt and amount may ride in the CallbackMetadata items list.
	if meta, ok := raw["CallbackMetadata"].(map[string]any); ok {
		if items, ok := meta["Item"].([]any); ok {
			for _, entry := range items {
				item, ok := entry.(map[string]any)
				if !ok {
					continue
				}
				name, _ := item["Name"].(string)
				switch name {
				case "MpesaReceiptNumber":
					if v, ok := item["Value"].(string); ok {
						result.Receipt = v
					}
				case "Amount":
					if v, ok := item["Value"].(float64); ok {
						result.Amount = v
					}
				case "PhoneNumber":
					switch v := item["Value"].(type) {
					case string:
						result.PayerReference = v
					case float64:
						result.PayerReference = strconv.FormatFloat(v, 'f', -1, 64)
					}
				}
			}
		}
	}

	return result, nil
}

type stkQueryResponse struct {
	ResultCode   string `json:"ResultCode"`
	ResultDesc   string `json:"ResultDesc"`
	ResponseCode string `json:"ResponseCode"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func (a *MpesaAdapter) CheckStatus(ctx context.Context, cfg *domain.TenantPaymentConfig, externalReference string) (*dto.PaymentResult, error) {
	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(cfg.MobileMoney.ShortCode + cfg.MobileMoney.Passkey + timestamp))

	body := map[string]string{
		"BusinessShortCode": cfg.MobileMoney.ShortCode,
		"Password":          password,
		"Timestamp":         timestamp,
		"CheckoutRequestID": externalReference,
	}

	var resp stkQueryResponse
	if err := a.post(ctx, cfg, a.baseURL(cfg)+"/stkpushquery/v1/query", body, &resp); err != nil {
		return nil, err
	}

	result := &dto.PaymentResult{
		Provider:          domain.ProviderMpesa,
		ExternalReference: externalReference,
		ResultCode:        resp.ResultCode,
		ResultDescription: firstNonEmpty(resp.ResultDesc, resp.ErrorMessage),
	}

	switch resp.ResultCode {
	case "0":
		result.Status = dto.ResultStatusCompleted
	case "", mpesaResultCodePending:
		result.Status = dto.ResultStatusPending
	default:
		result.Status = dto.ResultStatusFailed
	}

	return result, nil
}

func (a *MpesaAdapter) post(ctx context.Context, cfg *domain.TenantPaymentConfig, url string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(cfg.MobileMoney.ConsumerKey, cfg.MobileMoney.ConsumerSecret)

	resp, err := a.client.Do(req)
	if err != nil {
		return apperrors.NewGatewayError("mpesa gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperrors.NewGatewayError(fmt.Sprintf("mpesa gateway returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewGatewayError("decoding mpesa gateway response", err)
	}

	return nil
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func numberField(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := m[key].(float64); ok {
			return v, true
		}
	}
	return 0, false
}

// resultCode digs out the result code whether it arrived as a JSON number or
// a string, under either casing.
func resultCode(m map[string]any) (string, bool) {
	for _, key := range []string{"ResultCode", "resultCode"} {
		switch v := m[key].(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case string:
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
