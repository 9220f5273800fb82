package provider

import (
	"testing"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMSISDN(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		currency string
		want     string
	}{
		{"local format", "0712345678", domain.CurrencyKES, "254712345678"},
		{"international with plus", "+254712345678", domain.CurrencyKES, "254712345678"},
		{"already canonical", "254712345678", domain.CurrencyKES, "254712345678"},
		{"spaces and dashes", "0712 345-678", domain.CurrencyKES, "254712345678"},
		{"safaricom 1xx range", "0112345678", domain.CurrencyKES, "254112345678"},
		{"uganda local", "0712345678", domain.CurrencyUGX, "256712345678"},
		{"tanzania local", "0612345678", domain.CurrencyTZS, "255612345678"},
		{"rwanda local", "0781234567", domain.CurrencyRWF, "250781234567"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeMSISDN(tc.raw, tc.currency)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeMSISDN_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		currency string
	}{
		{"empty", "", domain.CurrencyKES},
		{"too short", "07123", domain.CurrencyKES},
		{"too long", "07123456789012", domain.CurrencyKES},
		{"bad operator range", "0912345678", domain.CurrencyKES},
		{"letters", "07abc45678", domain.CurrencyKES},
		{"unsupported currency", "0712345678", "USD"},
		{"wrong market prefix", "254712345678", domain.CurrencyUGX},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeMSISDN(tc.raw, tc.currency)
			_, ok := apperrors.IsValidationError(err)
			assert.True(t, ok, "expected validation error, got %v", err)
		})
	}
}
