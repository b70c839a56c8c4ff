package gateway

import (
	"context"
	"net/url"
	"sort"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

// Gateway is the operation set every bank adapter implements. Adapters hold
// per-call mutable state (current order, last response) and must not be
// shared across concurrent transactions; construct one per in-flight payment.
// No operation retries: a retried payment could double-charge, so retry
// policy belongs to idempotency-aware orchestration outside this layer.
type Gateway interface {
	// Name identifies the adapter in logs, storage and callback routing.
	Name() string

	// Pay performs a non-secure (card-present, server-initiated) payment.
	Pay(ctx context.Context, account *domain.Account, order *domain.Order, card *domain.Card) (*domain.GatewayResponse, error)

	// PostAuth captures a previously pre-authorized transaction, addressed
	// by the original order id.
	PostAuth(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error)

	Cancel(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error)
	Refund(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error)
	Status(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error)
	History(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error)

	// ThreeDForm runs the enrollment check and returns the form the calling
	// layer renders as an auto-submit page in the payer's browser. This
	// layer never submits the form itself.
	ThreeDForm(ctx context.Context, account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (*FormSubmission, error)

	// Complete3D reconciles the bank's asynchronous callback with the
	// synchronous provision call and returns one canonical response.
	Complete3D(ctx context.Context, account *domain.Account, order *domain.Order, callback url.Values) (*domain.GatewayResponse, error)
}

// FormSubmission is the artifact of 3-D form generation: a destination URL
// plus the fields of an HTML auto-submit form. Every value is a plain string;
// Fields gives a deterministic order for rendering and tests.
type FormSubmission struct {
	Gateway string
	Inputs  map[string]string
}

// Fields returns the input names in sorted order.
func (f *FormSubmission) Fields() []string {
	names := make([]string, 0, len(f.Inputs))
	for name := range f.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values converts the inputs to url.Values, one value per field.
func (f *FormSubmission) Values() url.Values {
	values := make(url.Values, len(f.Inputs))
	for name, value := range f.Inputs {
		values.Set(name, value)
	}
	return values
}
