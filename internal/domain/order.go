package domain

// TransactionType is the closed set of operations the canonical model knows
// about. Each gateway maps a subset onto its own vocabulary; a type the
// gateway leaves unmapped is an unsupported operation, never a guessed token.
type TransactionType string

const (
	TxPay      TransactionType = "pay"
	TxPreAuth  TransactionType = "pre"
	TxPostAuth TransactionType = "post"
	TxCancel   TransactionType = "cancel"
	TxRefund   TransactionType = "refund"
	TxStatus   TransactionType = "status"
	TxHistory  TransactionType = "history"
)

// Order is one payment intent. It is created per transaction and stays
// immutable for the lifetime of a single gateway call. Amount and currency
// are kept canonical here; mappers normalize them to the gateway's wire
// convention at mapping time.
type Order struct {
	ID          string
	Amount      float64 // two fractional digits of precision
	Currency    string  // ISO 4217 alpha code, e.g. "TRY"
	Installment int

	SuccessURL string
	FailURL    string

	IP string

	// Rand is the per-request nonce echoed through the 3-D Secure redirect
	// and covered by the request hash.
	Rand string

	Lang string
}
