package kuveytpos

import (
	"encoding/xml"
	"fmt"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

const xmlHeader = `<?xml version="1.0" encoding="ISO-8859-1"?>`

// enrollmentRequest is the 3-D enrollment message. Every request on this
// gateway travels inside the KuveytTurkVPosMessage envelope.
type enrollmentRequest struct {
	XMLName             xml.Name `xml:"KuveytTurkVPosMessage"`
	APIVersion          string   `xml:"APIVersion"`
	MerchantID          string   `xml:"MerchantId"`
	UserName            string   `xml:"UserName"`
	CustomerID          string   `xml:"CustomerId"`
	HashData            string   `xml:"HashData"`
	TransactionType     string   `xml:"TransactionType"`
	TransactionSecurity string   `xml:"TransactionSecurity"`
	InstallmentCount    int      `xml:"InstallmentCount"`
	Amount              int64    `xml:"Amount"`
	DisplayAmount       int64    `xml:"DisplayAmount"`
	CurrencyCode        string   `xml:"CurrencyCode"`
	MerchantOrderID     string   `xml:"MerchantOrderId"`
	OkURL               string   `xml:"OkUrl"`
	FailURL             string   `xml:"FailUrl"`

	CardHolderName      string `xml:"CardHolderName,omitempty"`
	CardType            string `xml:"CardType,omitempty"`
	CardNumber          string `xml:"CardNumber,omitempty"`
	CardExpireDateYear  string `xml:"CardExpireDateYear,omitempty"`
	CardExpireDateMonth string `xml:"CardExpireDateMonth,omitempty"`
	CardCVV2            string `xml:"CardCVV2,omitempty"`
}

// provisionRequest is the capture message sent after a successful 3-D
// authentication. Transaction fields are echoed from the callback's
// VPosMessage rather than recomputed, as the bank requires.
type provisionRequest struct {
	XMLName           xml.Name       `xml:"KuveytTurkVPosMessage"`
	APIVersion        string         `xml:"APIVersion"`
	HashData          string         `xml:"HashData"`
	MerchantID        string         `xml:"MerchantId"`
	CustomerID        string         `xml:"CustomerId"`
	UserName          string         `xml:"UserName"`
	CustomerIPAddress string         `xml:"CustomerIPAddress"`
	AdditionalData    additionalData `xml:"KuveytTurkVPosAdditionalData>AdditionalData"`

	TransactionType     string `xml:"TransactionType"`
	InstallmentCount    string `xml:"InstallmentCount"`
	Amount              string `xml:"Amount"`
	DisplayAmount       string `xml:"DisplayAmount"`
	CurrencyCode        string `xml:"CurrencyCode"`
	MerchantOrderID     string `xml:"MerchantOrderId"`
	TransactionSecurity string `xml:"TransactionSecurity"`
}

type additionalData struct {
	Key  string `xml:"Key"`
	Data string `xml:"Data"`
}

// RequestDataMapper builds the XML messages for this gateway. All methods
// are pure; operations outside the declared tables fail explicitly.
type RequestDataMapper struct{}

// EnrollmentRequest maps the 3-D enrollment check. The returned payload is
// the complete signed envelope ready for transmission.
func (RequestDataMapper) EnrollmentRequest(account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (gateway.XMLPayload, error) {
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

	req := enrollmentRequest{
		APIVersion:          apiVersion,
		MerchantID:          account.ClientID,
		UserName:            account.Username,
		CustomerID:          account.CustomerID,
		HashData:            EnrollmentHash(account, order),
		TransactionType:     txToken,
		TransactionSecurity: secureToken,
		InstallmentCount:    installmentCount(order),
		Amount:              FormatAmount(order.Amount),
		// DisplayAmount must equal Amount per the bank's contract.
		DisplayAmount:   FormatAmount(order.Amount),
		CurrencyCode:    currency,
		MerchantOrderID: order.ID,
		OkURL:           order.SuccessURL,
		FailURL:         order.FailURL,
	}

	if card != nil {
		brand, err := mapCardBrand(card.Brand)
		if err != nil {
			return nil, err
		}
		req.CardHolderName = card.HolderName
		req.CardType = brand
		req.CardNumber = card.Number
		req.CardExpireDateYear = fmt.Sprintf("%02d", card.ExpireYear%100)
		req.CardExpireDateMonth = fmt.Sprintf("%02d", card.ExpireMonth)
		req.CardCVV2 = card.CVV
	}

	return marshalEnvelope(req)
}

// ProvisionRequest maps the capture call from the decoded callback. The MD
// session token rides in the bank's AdditionalData extension block.
func (RequestDataMapper) ProvisionRequest(account *domain.Account, order *domain.Order, callbackData map[string]any) (gateway.XMLPayload, error) {
	message := gateway.Sub(callbackData, "VPosMessage")
	if message == nil {
		return nil, domain.NewUndecodableResponseError("callback missing VPosMessage")
	}

	req := provisionRequest{
		APIVersion:        apiVersion,
		HashData:          ProvisionHash(account, order),
		MerchantID:        account.ClientID,
		CustomerID:        account.CustomerID,
		UserName:          account.Username,
		CustomerIPAddress: order.IP,
		AdditionalData: additionalData{
			Key:  "MD",
			Data: gateway.StrOr(callbackData, "MD", ""),
		},
		TransactionType:     gateway.StrOr(message, "TransactionType", ""),
		InstallmentCount:    gateway.StrOr(message, "InstallmentCount", ""),
		Amount:              gateway.StrOr(message, "Amount", ""),
		DisplayAmount:       gateway.StrOr(message, "DisplayAmount", ""),
		CurrencyCode:        gateway.StrOr(message, "CurrencyCode", ""),
		MerchantOrderID:     gateway.StrOr(message, "MerchantOrderId", ""),
		TransactionSecurity: gateway.StrOr(message, "TransactionSecurity", ""),
	}

	return marshalEnvelope(req)
}

func marshalEnvelope(v any) (gateway.XMLPayload, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}
	return gateway.XMLPayload(append([]byte(xmlHeader), body...)), nil
}

func installmentCount(order *domain.Order) int {
	if order.Installment > 1 {
		return order.Installment
	}
	return 0
}
