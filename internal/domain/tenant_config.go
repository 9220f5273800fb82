package domain

import "time"

const maskedSecret = "********"

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

// MobileMoneyConfig holds the per-tenant STK-push credentials.
type MobileMoneyConfig struct {
	Enabled        bool   `json:"enabled"`
	Environment    string `json:"environment"`
	ShortCode      string `json:"shortCode"`
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`
	Passkey        string `json:"passkey"`
}

// Complete reports whether every credential required to call the gateway is set.
func (c MobileMoneyConfig) Complete() bool {
	return c.ShortCode != "" && c.ConsumerKey != "" && c.ConsumerSecret != "" && c.Passkey != ""
}

type CardConfig struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
}

func (c CardConfig) Complete() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

type TenantPaymentConfig struct {
	TenantID        int               `json:"tenantId"`
	DefaultCurrency string            `json:"defaultCurrency"`
	CashEnabled     bool              `json:"cashEnabled"`
	MobileMoney     MobileMoneyConfig `json:"mobileMoney"`
	Card            CardConfig        `json:"card"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Masked returns a copy safe to return to non-privileged readers: enablement
// and public identifiers survive, secrets do not.
func (c *TenantPaymentConfig) Masked() *TenantPaymentConfig {
	out := *c
	if out.MobileMoney.ConsumerKey != "" {
		out.MobileMoney.ConsumerKey = maskedSecret
	}
	if out.MobileMoney.ConsumerSecret != "" {
		out.MobileMoney.ConsumerSecret = maskedSecret
	}
	if out.MobileMoney.Passkey != "" {
		out.MobileMoney.Passkey = maskedSecret
	}
	if out.Card.SecretKey != "" {
		out.Card.SecretKey = maskedSecret
	}
	return &out
}
