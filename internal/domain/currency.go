package domain

// Currencies the platform settles in, one per supported market.
const (
	CurrencyKES = "KES"
	CurrencyUGX = "UGX"
	CurrencyTZS = "TZS"
	CurrencyRWF = "RWF"
	CurrencyBIF = "BIF"
	CurrencyCDF = "CDF"
	CurrencySSP = "SSP"
)

func IsSupportedCurrency(code string) bool {
	switch code {
	case CurrencyKES, CurrencyUGX, CurrencyTZS, CurrencyRWF, CurrencyBIF, CurrencyCDF, CurrencySSP:
		return true
	}
	return false
}
