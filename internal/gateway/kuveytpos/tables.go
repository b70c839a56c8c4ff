package kuveytpos

import (
	"math"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

// Name identifies this adapter in logs, storage and callback routing.
const Name = "kuveytpos"

// apiVersion is pinned by the bank's message contract.
const apiVersion = "1.0.0"

// Static gateway vocabulary. This bank documents only the Sale transaction
// and the 3-D secure / non-secure models; everything else is explicitly
// unsupported rather than guessed.
var (
	txTypes = map[domain.TransactionType]string{
		domain.TxPay: "Sale",
	}

	secureTypes = map[domain.SecurityModel]string{
		domain.Model3DSecure:  "3",
		domain.ModelNonSecure: "0",
	}

	cardBrands = map[domain.CardBrand]string{
		domain.BrandVisa:       "Visa",
		domain.BrandMastercard: "MasterCard",
	}

	// Currency codes are zero-padded to four digits on this gateway.
	currencies = map[string]string{
		"TRY": "0949",
		"USD": "0840",
		"EUR": "0978",
		"GBP": "0826",
		"JPY": "0392",
		"RUB": "0810",
	}

	statusCodes = map[string]string{
		"00":                "approved",
		"ApiUserNotDefined": "invalid_transaction",
		"EmptyMDException":  "invalid_transaction",
		"HashDataError":     "invalid_transaction",
	}
)

func mapTxType(tx domain.TransactionType) (string, error) {
	token, ok := txTypes[tx]
	if !ok {
		return "", domain.NewUnsupportedOperationError(Name, tx)
	}
	return token, nil
}

func mapSecureType(model domain.SecurityModel) (string, error) {
	token, ok := secureTypes[model]
	if !ok {
		return "", domain.NewMappingError("security model", string(model))
	}
	return token, nil
}

func mapCardBrand(brand domain.CardBrand) (string, error) {
	code, ok := cardBrands[brand]
	if !ok {
		return "", domain.NewMappingError("card brand", string(brand))
	}
	return code, nil
}

// MapCurrency converts an ISO alpha code to the gateway's zero-padded
// numeric code.
func MapCurrency(alpha string) (string, error) {
	code, ok := currencies[alpha]
	if !ok {
		return "", domain.NewMappingError("currency", alpha)
	}
	return code, nil
}

func reverseCurrency(numeric string) *string {
	for alpha, code := range currencies {
		if code == numeric {
			return &alpha
		}
	}
	return nil
}

func statusDetail(procCode string) *string {
	if detail, ok := statusCodes[procCode]; ok {
		return &detail
	}
	return nil
}

// FormatAmount scales an amount to the integer minor-unit count the gateway
// expects: 10.00 becomes 1000, 10.01 becomes 1001.
func FormatAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
