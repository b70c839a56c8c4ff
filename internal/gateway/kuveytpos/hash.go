package kuveytpos

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

// hashString is the gateway's digest primitive: base64 of the raw SHA-1 sum.
func hashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// EnrollmentHash signs the 3-D enrollment request. The store key itself is
// digested first, then the base covers merchant id, order id, minor-unit
// amount, both redirect URLs and the API username, concatenated with no
// separator.
func EnrollmentHash(account *domain.Account, order *domain.Order) string {
	hashedPassword := hashString(account.StoreKey)

	base := strings.Join([]string{
		account.ClientID,
		order.ID,
		strconv.FormatInt(FormatAmount(order.Amount), 10),
		order.SuccessURL,
		order.FailURL,
		account.Username,
		hashedPassword,
	}, "")

	return hashString(base)
}

// ProvisionHash signs the server-to-server capture call. Unlike the
// enrollment direction it does not cover the redirect URLs; the two bases
// share the digest primitive but not the field set.
func ProvisionHash(account *domain.Account, order *domain.Order) string {
	hashedPassword := hashString(account.StoreKey)

	base := strings.Join([]string{
		account.ClientID,
		order.ID,
		strconv.FormatInt(FormatAmount(order.Amount), 10),
		account.Username,
		hashedPassword,
	}, "")

	return hashString(base)
}

// VerifyCallbackHash checks that the HashData echoed inside the callback's
// VPosMessage matches the enrollment hash this merchant signed the request
// with. A mismatch means the callback was not produced from our request and
// the completion must not proceed.
func VerifyCallbackHash(account *domain.Account, order *domain.Order, data map[string]any) error {
	message := gateway.Sub(data, "VPosMessage")
	if message == nil {
		return domain.NewIntegrityError(order.ID)
	}
	supplied := gateway.StrOr(message, "HashData", "")
	if supplied == "" {
		return domain.NewIntegrityError(order.ID)
	}

	expected := EnrollmentHash(account, order)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) != 1 {
		return domain.NewIntegrityError(order.ID)
	}
	return nil
}
