package domain

import "fmt"

// CardBrand is the canonical card scheme; gateways map it to their own code.
type CardBrand string

const (
	BrandVisa       CardBrand = "visa"
	BrandMastercard CardBrand = "master"
	BrandAmex       CardBrand = "amex"
)

// Card carries the cardholder data for card-present requests. It is absent on
// server-to-server status/cancel/refund calls and on the 3-D completion call,
// where the bank supplies card identity implicitly.
type Card struct {
	HolderName  string
	Number      string
	ExpireMonth int // 1-12
	ExpireYear  int // four digits
	CVV         string
	Brand       CardBrand
}

// ExpiryMY renders the expiration date in the "my" wire format some gateways
// expect: two-digit month followed by two-digit year, e.g. "0130".
func (c *Card) ExpiryMY() string {
	return fmt.Sprintf("%02d%02d", c.ExpireMonth, c.ExpireYear%100)
}
