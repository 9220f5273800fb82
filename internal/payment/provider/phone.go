package provider

import (
	"regexp"
	"strings"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

// Mobile money subscriber number patterns per market, keyed by country
// dialing prefix.
var msisdnPatterns = map[string]*regexp.Regexp{
	"254": regexp.MustCompile(`^254[17]\d{8}$`),
	"256": regexp.MustCompile(`^256[37]\d{8}$`),
	"255": regexp.MustCompile(`^255[67]\d{8}$`),
	"250": regexp.MustCompile(`^250[78]\d{8}$`),
	"257": regexp.MustCompile(`^257[68]\d{7}$`),
	"243": regexp.MustCompile(`^243[89]\d{8}$`),
	"211": regexp.MustCompile(`^211[19]\d{8}$`),
}

var currencyPrefixes = map[string]string{
	domain.CurrencyKES: "254",
	domain.CurrencyUGX: "256",
	domain.CurrencyTZS: "255",
	domain.CurrencyRWF: "250",
	domain.CurrencyBIF: "257",
	domain.CurrencyCDF: "243",
	domain.CurrencySSP: "211",
}

// NormalizeMSISDN canonicalizes a subscriber number to international format
// without the plus sign. A leading zero is replaced with the dialing prefix
// of the tenant's settlement currency.
func NormalizeMSISDN(raw, currency string) (string, error) {
	number := strings.TrimSpace(raw)
	number = strings.TrimPrefix(number, "+")
	number = strings.ReplaceAll(number, " ", "")
	number = strings.ReplaceAll(number, "-", "")

	if number == "" {
		return "", apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "payerReference",
			Message: "phone number is required",
		})
	}

	prefix, ok := currencyPrefixes[currency]
	if !ok {
		return "", apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "currency",
			Message: "no mobile money market for currency " + currency,
		})
	}

	if strings.HasPrefix(number, "0") {
		number = prefix + number[1:]
	}

	pattern := msisdnPatterns[prefix]
	if !pattern.MatchString(number) {
		return "", apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "payerReference",
			Message: "phone number is not a valid mobile subscriber number for this market",
		})
	}

	return number, nil
}
