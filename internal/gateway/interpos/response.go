package interpos

import (
	"strconv"
	"strings"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

// decodePairs parses the gateway's flat response shape: fields separated by
// ";;", each a key=value pair. Values may themselves contain "=".
func decodePairs(body []byte) (map[string]any, error) {
	text := strings.TrimSpace(string(body))
	if text == "" || !strings.Contains(text, "=") {
		return nil, domain.NewUndecodableResponseError(text)
	}

	data := map[string]any{}
	for _, pair := range strings.Split(text, ";;") {
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		data[key] = value
	}
	if len(data) == 0 {
		return nil, domain.NewUndecodableResponseError(text)
	}
	return data, nil
}

// mapPaymentResponse normalizes a server-call response into the canonical
// shape. Empty strings become absent before any business field is read, and
// success-only fields are never touched on a decline.
func mapPaymentResponse(raw map[string]any) *domain.GatewayResponse {
	data := gateway.AbsentEmptyStrings(raw)
	procCode := gateway.StrOr(data, "ProcReturnCode", "")

	result := gateway.DefaultPaymentResponse()
	result.ProcReturnCode = gateway.Str(data, "ProcReturnCode")
	result.StatusDetail = statusDetail(procCode)
	result.All = data

	if procCode != gateway.ProcCodeApproved {
		result.ErrorCode = gateway.Str(data, "ProcReturnCode")
		if result.ErrorCode == nil {
			result.ErrorCode = gateway.Str(data, "ErrorCode")
		}
		result.ErrorMessage = gateway.Str(data, "ErrorMessage")
		return result
	}

	result.Status = domain.StatusApproved
	result.OrderID = gateway.Str(data, "OrderId")
	result.TransID = gateway.Str(data, "TransId")
	result.AuthCode = gateway.Str(data, "AuthCode")
	result.HostRefNum = gateway.Str(data, "HostRefNum")
	if amount := parseAmount(data, "PurchAmount"); amount != nil {
		result.Amount = amount
	}
	if currency := gateway.Str(data, "Currency"); currency != nil {
		result.Currency = reverseCurrency(*currency)
	}
	return result
}

// map3DCommon maps the authentication-stage callback fields. The capture
// response, when present, is merged on top of this by the driver.
func map3DCommon(raw map[string]any) *domain.GatewayResponse {
	data := gateway.AbsentEmptyStrings(raw)
	procCode := gateway.StrOr(data, "ProcReturnCode", "")

	result := gateway.DefaultPaymentResponse()
	result.ProcReturnCode = gateway.Str(data, "ProcReturnCode")
	result.StatusDetail = statusDetail(procCode)
	result.OrderID = gateway.Str(data, "OrderId")
	result.All = data

	if procCode == gateway.ProcCodeApproved {
		result.Status = domain.StatusApproved
		if amount := parseAmount(data, "PurchAmount"); amount != nil {
			result.Amount = amount
		}
		if currency := gateway.Str(data, "Currency"); currency != nil {
			result.Currency = reverseCurrency(*currency)
		}
		result.MaskedNumber = gateway.Str(data, "Pan")
	} else {
		result.ErrorCode = gateway.Str(data, "ProcReturnCode")
		result.ErrorMessage = gateway.Str(data, "ErrorMessage")
	}
	return result
}

func parseAmount(data map[string]any, key string) *float64 {
	s := gateway.Str(data, key)
	if s == nil {
		return nil
	}
	amount, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &amount
}
