package gateway

import (
	"fmt"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

// ProcCodeApproved is the return code the representative gateways use for an
// authorized transaction.
const ProcCodeApproved = "00"

// AbsentEmptyStrings returns a copy of the decoded payload with empty-string
// leaves removed. Banks send "" to mean "no value"; business fields must see
// absence, not an empty string. Nested messages are normalized too.
func AbsentEmptyStrings(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case string:
			if val != "" {
				out[k] = val
			}
		case map[string]any:
			out[k] = AbsentEmptyStrings(val)
		default:
			out[k] = v
		}
	}
	return out
}

// Str reads a string field from a decoded payload, nil when absent or empty.
func Str(data map[string]any, key string) *string {
	v, ok := data[key]
	if !ok || v == nil {
		return nil
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return nil
	}
	return &s
}

// StrOr reads a string field with a fallback for absent values.
func StrOr(data map[string]any, key, fallback string) string {
	if s := Str(data, key); s != nil {
		return *s
	}
	return fallback
}

// Sub reads a nested message from a decoded payload.
func Sub(data map[string]any, key string) map[string]any {
	if v, ok := data[key].(map[string]any); ok {
		return v
	}
	return nil
}

// DefaultPaymentResponse is the declined, all-absent response merged
// underneath stage results so the final object has a consistent shape no
// matter where the transaction stopped.
func DefaultPaymentResponse() *domain.GatewayResponse {
	return &domain.GatewayResponse{Status: domain.StatusDeclined}
}

// MergePreferSet merges two responses field by field, keeping the overlay's
// value wherever it is set and falling back to the base otherwise.
func MergePreferSet(base, overlay *domain.GatewayResponse) *domain.GatewayResponse {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay
	}

	merged := *overlay
	if merged.Status == "" {
		merged.Status = base.Status
	}
	merged.ProcReturnCode = firstSet(overlay.ProcReturnCode, base.ProcReturnCode)
	merged.StatusDetail = firstSet(overlay.StatusDetail, base.StatusDetail)
	merged.OrderID = firstSet(overlay.OrderID, base.OrderID)
	merged.TransID = firstSet(overlay.TransID, base.TransID)
	merged.AuthCode = firstSet(overlay.AuthCode, base.AuthCode)
	merged.HostRefNum = firstSet(overlay.HostRefNum, base.HostRefNum)
	merged.MaskedNumber = firstSet(overlay.MaskedNumber, base.MaskedNumber)
	merged.ErrorCode = firstSet(overlay.ErrorCode, base.ErrorCode)
	merged.ErrorMessage = firstSet(overlay.ErrorMessage, base.ErrorMessage)
	merged.Currency = firstSet(overlay.Currency, base.Currency)
	if merged.Amount == nil {
		merged.Amount = base.Amount
	}
	if merged.All == nil {
		merged.All = base.All
	}
	return &merged
}

func firstSet(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}
