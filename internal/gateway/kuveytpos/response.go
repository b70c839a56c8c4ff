package kuveytpos

import (
	"strconv"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

func procReturnCode(data map[string]any) string {
	return gateway.StrOr(data, "ResponseCode", "")
}

// mapPaymentResponse normalizes the provision response. On a decline only
// the error fields are read; success-only fields (provision number, RRN,
// masked PAN) are not guaranteed present.
func mapPaymentResponse(raw map[string]any) *domain.GatewayResponse {
	data := gateway.AbsentEmptyStrings(raw)
	procCode := procReturnCode(data)

	result := gateway.DefaultPaymentResponse()
	result.ProcReturnCode = gateway.Str(data, "ResponseCode")
	result.StatusDetail = statusDetail(procCode)
	result.All = data

	if procCode != gateway.ProcCodeApproved {
		result.ErrorCode = gateway.Str(data, "ResponseCode")
		result.ErrorMessage = gateway.Str(data, "ResponseMessage")
		return result
	}

	result.Status = domain.StatusApproved
	result.TransID = gateway.Str(data, "ProvisionNumber")
	result.AuthCode = gateway.Str(data, "ProvisionNumber")
	result.OrderID = gateway.Str(data, "MerchantOrderId")
	result.HostRefNum = gateway.Str(data, "RRN")

	if message := gateway.Sub(data, "VPosMessage"); message != nil {
		result.Amount = minorUnitsToAmount(message, "Amount")
		if code := gateway.Str(message, "CurrencyCode"); code != nil {
			result.Currency = reverseCurrency(*code)
		}
		result.MaskedNumber = gateway.Str(message, "CardNumber")
	}
	return result
}

// map3DCommon maps the authentication-stage callback. The bank repeats the
// order id either inside VPosMessage or at the top level depending on the
// failure mode.
func map3DCommon(raw map[string]any) *domain.GatewayResponse {
	data := gateway.AbsentEmptyStrings(raw)
	procCode := procReturnCode(data)

	result := gateway.DefaultPaymentResponse()
	result.ProcReturnCode = gateway.Str(data, "ResponseCode")
	result.StatusDetail = statusDetail(procCode)
	result.All = data

	message := gateway.Sub(data, "VPosMessage")
	if message != nil {
		result.OrderID = gateway.Str(message, "MerchantOrderId")
	} else {
		result.OrderID = gateway.Str(data, "MerchantOrderId")
	}

	if procCode == gateway.ProcCodeApproved {
		result.Status = domain.StatusApproved
		if message != nil {
			result.Amount = minorUnitsToAmount(message, "Amount")
			if code := gateway.Str(message, "CurrencyCode"); code != nil {
				result.Currency = reverseCurrency(*code)
			}
			result.MaskedNumber = gateway.Str(message, "CardNumber")
		}
	} else {
		result.ErrorCode = gateway.Str(data, "ResponseCode")
		result.ErrorMessage = gateway.Str(data, "ResponseMessage")
	}
	return result
}

// minorUnitsToAmount converts the gateway's integer minor-unit count back to
// the canonical two-decimal amount, so 1000 on the wire reads as 10.00.
func minorUnitsToAmount(data map[string]any, key string) *float64 {
	s := gateway.Str(data, key)
	if s == nil {
		return nil
	}
	minor, err := strconv.ParseInt(*s, 10, 64)
	if err != nil {
		return nil
	}
	amount := float64(minor) / 100
	return &amount
}
