package testhelpers

import (
	"time"

	"github.com/google/uuid"

	"github.com/tkaraca/vpos-gateway/internal/storage/postgres"
)

// PendingSession returns a valid pending payment session for testing
func PendingSession(gatewayName string) *postgres.PaymentSession {
	return &postgres.PaymentSession{
		ID:          uuid.New().String(),
		OrderID:     "order-" + uuid.New().String(),
		Gateway:     gatewayName,
		Status:      postgres.SessionPending,
		AmountCents: 10025,
		Currency:    "TRY",
		SuccessURL:  "https://merchant.example/ok",
		FailURL:     "https://merchant.example/fail",
		ClientIP:    "203.0.113.7",
		CreatedAt:   time.Now().UTC(),
	}
}
