package interpos

import "github.com/tkaraca/vpos-gateway/internal/domain"

// Name identifies this adapter in logs, storage and callback routing.
const Name = "interpos"

// MOTO flag value for e-commerce transactions.
const motoEcommerce = "0"

// Static gateway vocabulary. These tables are process-wide constants; every
// enumerant the gateway supports is declared explicitly, and lookups of
// anything else fail as configuration errors.
var (
	secureTypes = map[domain.SecurityModel]string{
		domain.Model3DSecure:  "3DModel",
		domain.Model3DPay:     "3DPay",
		domain.Model3DHost:    "3DHost",
		domain.ModelNonSecure: "NonSecure",
	}

	txTypes = map[domain.TransactionType]string{
		domain.TxPay:      "Auth",
		domain.TxPreAuth:  "PreAuth",
		domain.TxPostAuth: "PostAuth",
		domain.TxCancel:   "Void",
		domain.TxRefund:   "Refund",
		domain.TxStatus:   "StatusHistory",
	}

	cardBrands = map[domain.CardBrand]string{
		domain.BrandVisa:       "0",
		domain.BrandMastercard: "1",
		domain.BrandAmex:       "3",
	}

	currencies = map[string]string{
		"TRY": "949",
		"USD": "840",
		"EUR": "978",
		"GBP": "826",
		"JPY": "392",
		"RUB": "810",
	}

	// Status detail texts keyed by the gateway's return codes.
	statusCodes = map[string]string{
		"00":  "approved",
		"81":  "bank_call",
		"E31": "invalid_transaction",
		"E39": "invalid_transaction",
	}
)

func mapSecureType(model domain.SecurityModel) (string, error) {
	token, ok := secureTypes[model]
	if !ok {
		return "", domain.NewMappingError("security model", string(model))
	}
	return token, nil
}

func mapTxType(tx domain.TransactionType) (string, error) {
	token, ok := txTypes[tx]
	if !ok {
		return "", domain.NewUnsupportedOperationError(Name, tx)
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

// MapCurrency converts an ISO alpha code to the gateway's numeric code.
func MapCurrency(alpha string) (string, error) {
	code, ok := currencies[alpha]
	if !ok {
		return "", domain.NewMappingError("currency", alpha)
	}
	return code, nil
}

// reverseCurrency maps the gateway's numeric code back to the ISO alpha code.
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
