package interpos

import (
	"fmt"
	"net/url"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

// RequestDataMapper builds the flat field maps this gateway takes on the
// wire. All methods are pure; their only failure mode is an operation or
// enumerant the gateway does not support.
type RequestDataMapper struct{}

// FormatAmount renders an amount the way the gateway expects it: decimal
// with exactly two fractional digits.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// NonSecurePayment maps a card-present, server-initiated payment. The
// SecureType is always the non-secure token regardless of the account model:
// server-to-server calls are flagged non-secure at the wire level even for
// 3-D accounts.
func (RequestDataMapper) NonSecurePayment(account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (url.Values, error) {
	txToken, err := mapTxType(tx)
	if err != nil {
		return nil, err
	}
	currency, err := MapCurrency(order.Currency)
	if err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("UserCode", account.Username)
	data.Set("UserPass", account.Password)
	data.Set("ShopCode", account.ClientID)
	data.Set("TxnType", txToken)
	data.Set("SecureType", secureTypes[domain.ModelNonSecure])
	data.Set("OrderId", order.ID)
	data.Set("PurchAmount", FormatAmount(order.Amount))
	data.Set("Currency", currency)
	data.Set("InstallmentCount", installmentCount(order))
	data.Set("MOTO", motoEcommerce)
	data.Set("Lang", domain.Lang(account, order))

	if card != nil {
		if err := addCardFields(data, card); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// NonSecurePostAuth captures a previously pre-authorized transaction. The
// gateway contract addresses it by orgOrderId while OrderId travels empty;
// this is the bank's observed protocol, not a placeholder.
func (RequestDataMapper) NonSecurePostAuth(account *domain.Account, order *domain.Order) (url.Values, error) {
	currency, err := MapCurrency(order.Currency)
	if err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("UserCode", account.Username)
	data.Set("UserPass", account.Password)
	data.Set("ShopCode", account.ClientID)
	data.Set("TxnType", txTypes[domain.TxPostAuth])
	data.Set("SecureType", secureTypes[domain.ModelNonSecure])
	data.Set("OrderId", "")
	data.Set("orgOrderId", order.ID)
	data.Set("PurchAmount", FormatAmount(order.Amount))
	data.Set("Currency", currency)
	data.Set("MOTO", motoEcommerce)
	return data, nil
}

// StatusRequest queries the state of an earlier transaction.
func (RequestDataMapper) StatusRequest(account *domain.Account, order *domain.Order) (url.Values, error) {
	data := url.Values{}
	data.Set("UserCode", account.Username)
	data.Set("UserPass", account.Password)
	data.Set("ShopCode", account.ClientID)
	data.Set("OrderId", "")
	data.Set("orgOrderId", order.ID)
	data.Set("TxnType", txTypes[domain.TxStatus])
	data.Set("SecureType", secureTypes[domain.ModelNonSecure])
	data.Set("Lang", domain.Lang(account, order))
	return data, nil
}

// CancelRequest voids an earlier transaction.
func (RequestDataMapper) CancelRequest(account *domain.Account, order *domain.Order) (url.Values, error) {
	data := url.Values{}
	data.Set("UserCode", account.Username)
	data.Set("UserPass", account.Password)
	data.Set("ShopCode", account.ClientID)
	data.Set("OrderId", "")
	data.Set("orgOrderId", order.ID)
	data.Set("TxnType", txTypes[domain.TxCancel])
	data.Set("SecureType", secureTypes[domain.ModelNonSecure])
	data.Set("Lang", domain.Lang(account, order))
	return data, nil
}

// RefundRequest returns funds for an earlier transaction; unlike cancel it
// carries the amount.
func (RequestDataMapper) RefundRequest(account *domain.Account, order *domain.Order) (url.Values, error) {
	data := url.Values{}
	data.Set("UserCode", account.Username)
	data.Set("UserPass", account.Password)
	data.Set("ShopCode", account.ClientID)
	data.Set("OrderId", "")
	data.Set("orgOrderId", order.ID)
	data.Set("PurchAmount", FormatAmount(order.Amount))
	data.Set("TxnType", txTypes[domain.TxRefund])
	data.Set("SecureType", secureTypes[domain.ModelNonSecure])
	data.Set("Lang", domain.Lang(account, order))
	data.Set("MOTO", motoEcommerce)
	return data, nil
}

// HistoryRequest is not offered by this gateway.
func (RequestDataMapper) HistoryRequest(account *domain.Account, order *domain.Order) (url.Values, error) {
	return nil, domain.NewUnsupportedOperationError(Name, domain.TxHistory)
}

// ThreeDFormData assembles the signed field set for the bank's hosted
// authentication page, paired with the destination URL.
func (RequestDataMapper) ThreeDFormData(account *domain.Account, order *domain.Order, tx domain.TransactionType, gatewayURL string, card *domain.Card) (*gateway.FormSubmission, error) {
	txToken, err := mapTxType(tx)
	if err != nil {
		return nil, err
	}
	secureToken, err := mapSecureType(account.Model)
	if err != nil {
		return nil, err
	}
	currency, err := MapCurrency(order.Currency)
	if err != nil {
		return nil, err
	}

	inputs := map[string]string{
		"ShopCode":         account.ClientID,
		"TxnType":          txToken,
		"SecureType":       secureToken,
		"Hash":             Create3DHash(account, order, txToken),
		"PurchAmount":      FormatAmount(order.Amount),
		"OrderId":          order.ID,
		"OkUrl":            order.SuccessURL,
		"FailUrl":          order.FailURL,
		"Rnd":              order.Rand,
		"Lang":             domain.Lang(account, order),
		"Currency":         currency,
		"InstallmentCount": installmentCount(order),
	}

	if card != nil {
		brand, err := mapCardBrand(card.Brand)
		if err != nil {
			return nil, err
		}
		inputs["CardType"] = brand
		inputs["Pan"] = card.Number
		inputs["Expiry"] = card.ExpiryMY()
		inputs["Cvv2"] = card.CVV
	}

	return &gateway.FormSubmission{Gateway: gatewayURL, Inputs: inputs}, nil
}

// ThreeDCompletionRequest merges the authentication tokens echoed by the
// bank's callback into the server-to-server completion payload.
func (RequestDataMapper) ThreeDCompletionRequest(account *domain.Account, order *domain.Order, tx domain.TransactionType, callbackData map[string]any) (url.Values, error) {
	txToken, err := mapTxType(tx)
	if err != nil {
		return nil, err
	}
	currency, err := MapCurrency(order.Currency)
	if err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("UserCode", account.Username)
	data.Set("UserPass", account.Password)
	data.Set("ClientId", account.ClientID)
	data.Set("TxnType", txToken)
	data.Set("SecureType", secureTypes[domain.ModelNonSecure])
	data.Set("OrderId", order.ID)
	data.Set("PurchAmount", FormatAmount(order.Amount))
	data.Set("Currency", currency)
	data.Set("InstallmentCount", installmentCount(order))
	data.Set("MD", gateway.StrOr(callbackData, "MD", ""))
	data.Set("PayerTxnId", gateway.StrOr(callbackData, "PayerTxnId", ""))
	data.Set("Eci", gateway.StrOr(callbackData, "Eci", ""))
	data.Set("PayerAuthenticationCode", gateway.StrOr(callbackData, "PayerAuthenticationCode", ""))
	data.Set("MOTO", motoEcommerce)
	data.Set("Lang", domain.Lang(account, order))
	return data, nil
}

func installmentCount(order *domain.Order) string {
	if order.Installment > 1 {
		return fmt.Sprintf("%d", order.Installment)
	}
	return "0"
}

func addCardFields(data url.Values, card *domain.Card) error {
	brand, err := mapCardBrand(card.Brand)
	if err != nil {
		return err
	}
	data.Set("CardType", brand)
	data.Set("Pan", card.Number)
	data.Set("Expiry", card.ExpiryMY())
	data.Set("Cvv2", card.CVV)
	return nil
}
