package postgres

import "time"

// Session statuses. A session is the stored half of the 3-D handshake: it is
// created at enrollment and resolved by the callback (or by the reconciler
// when the payer abandons the redirect).
const (
	SessionPending    = "pending"
	SessionAuthorized = "authorized"
	SessionRejected   = "rejected"
	SessionExpired    = "expired"
)

// PaymentSession correlates an enrollment check with the bank callback that
// arrives later, keyed by order id. The gateway layer itself holds no state
// between the two legs; this record is how the service links them.
type PaymentSession struct {
	ID          string
	OrderID     string
	Gateway     string
	Status      string
	AmountCents int64
	Currency    string

	// The return URLs handed to the bank at enrollment and the payer's IP
	// are covered by the gateway hashes; the callback leg must replay them
	// exactly as signed.
	SuccessURL string
	FailURL    string
	ClientIP   string

	ProcReturnCode *string
	AuthCode       *string

	CreatedAt  time.Time
	ResolvedAt *time.Time
}
