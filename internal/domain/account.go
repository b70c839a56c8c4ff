package domain

// SecurityModel selects how a payment is authenticated before authorization.
type SecurityModel string

const (
	ModelNonSecure SecurityModel = "regular"
	Model3DSecure  SecurityModel = "3d"
	Model3DPay     SecurityModel = "3d_pay"
	Model3DHost    SecurityModel = "3d_host"
)

// Account is one merchant credential set issued by a bank. It is immutable
// once constructed; mappers borrow it read-only.
type Account struct {
	ClientID string
	Username string
	Password string

	// StoreKey is the shared secret the bank uses to recompute request and
	// callback hashes.
	StoreKey string

	// CustomerID is the merchant customer number some gateways require on top
	// of the client id. Empty when the gateway has no such concept.
	CustomerID string

	Model SecurityModel
	Lang  string
}

// Lang returns the language to send with a request: the order's language when
// set, otherwise the account default.
func Lang(account *Account, order *Order) string {
	if order != nil && order.Lang != "" {
		return order.Lang
	}
	return account.Lang
}
