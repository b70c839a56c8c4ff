package domain

// Response status values. A declined transaction is a normal terminal state,
// not an error: the bank answered, it just said no.
const (
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// GatewayResponse is the canonical result of one gateway call, constructed
// fresh per call and never mutated after return. Pointer fields distinguish
// "bank sent no value" from a real empty value; banks signal absence with
// empty strings, which response mapping converts to nil before any business
// field is read.
type GatewayResponse struct {
	Status         string
	ProcReturnCode *string
	StatusDetail   *string

	OrderID      *string
	TransID      *string
	AuthCode     *string
	HostRefNum   *string
	Amount       *float64
	Currency     *string
	MaskedNumber *string

	ErrorCode    *string
	ErrorMessage *string

	// All holds the raw decoded bank payload for diagnostics.
	All map[string]any
}

// Approved reports whether the bank authorized the transaction.
func (r *GatewayResponse) Approved() bool {
	return r.Status == StatusApproved
}

// String boxes v for optional response fields.
func String(v string) *string { return &v }

// Float boxes v for optional response fields.
func Float(v float64) *float64 { return &v }
