package interpos

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

// hashSeparator joins the hash base fields. This gateway concatenates them
// directly; the bank recomputes the same digest, so the empty separator is
// part of the protocol.
const hashSeparator = ""

// hashString is the gateway's digest primitive: base64 of the raw SHA-1 sum.
func hashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Create3DHash signs an outgoing 3-D initiation request. Field order is fixed
// by the bank: shop code, order id, amount, ok/fail URLs, transaction type,
// installment, nonce, store key.
func Create3DHash(account *domain.Account, order *domain.Order, txToken string) string {
	base := strings.Join([]string{
		account.ClientID,
		order.ID,
		FormatAmount(order.Amount),
		order.SuccessURL,
		order.FailURL,
		txToken,
		installmentCount(order),
		order.Rand,
		account.StoreKey,
	}, hashSeparator)

	return hashString(base)
}

// VerifyCallbackHash checks the integrity of a bank callback. The bank names
// the covered fields in HASHPARAMS (colon-separated, in digest order); their
// values are concatenated, the store key appended, and the digest compared
// against the bank-supplied HASH. Absent fields contribute nothing, matching
// the bank's own computation over empty values.
func VerifyCallbackHash(account *domain.Account, order *domain.Order, data map[string]any) error {
	suppliedHash := gateway.StrOr(data, "HASH", "")
	hashParams := gateway.StrOr(data, "HASHPARAMS", "")
	if suppliedHash == "" || hashParams == "" {
		return domain.NewIntegrityError(order.ID)
	}

	var base strings.Builder
	for _, param := range strings.Split(hashParams, ":") {
		if param == "" {
			continue
		}
		base.WriteString(gateway.StrOr(data, param, ""))
	}
	base.WriteString(account.StoreKey)

	computed := hashString(base.String())
	if subtle.ConstantTimeCompare([]byte(computed), []byte(suppliedHash)) != 1 {
		return domain.NewIntegrityError(order.ID)
	}
	return nil
}
