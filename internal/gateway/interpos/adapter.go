package interpos

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

// Config carries the bank endpoints for one environment.
type Config struct {
	// APIURL receives the server-to-server form posts.
	APIURL string
	// Gateway3DURL is the hosted authentication page the redirect form
	// targets.
	Gateway3DURL string
}

// Adapter implements the canonical operation set against the gateway's flat
// form-field protocol. One adapter may serve concurrent transactions: it
// holds no per-call state, only the immutable config and shared transport.
type Adapter struct {
	config Config
	client *gateway.Client
	logger *slog.Logger
	mapper RequestDataMapper
}

func New(config Config, client *gateway.Client, logger *slog.Logger) *Adapter {
	return &Adapter{
		config: config,
		client: client,
		logger: logger.With("gateway", Name),
	}
}

func (a *Adapter) Name() string { return Name }

// Pay performs a non-secure payment.
func (a *Adapter) Pay(ctx context.Context, account *domain.Account, order *domain.Order, card *domain.Card) (*domain.GatewayResponse, error) {
	data, err := a.mapper.NonSecurePayment(account, order, domain.TxPay, card)
	if err != nil {
		return nil, err
	}
	return a.exchange(ctx, order, data)
}

func (a *Adapter) PostAuth(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	data, err := a.mapper.NonSecurePostAuth(account, order)
	if err != nil {
		return nil, err
	}
	return a.exchange(ctx, order, data)
}

func (a *Adapter) Cancel(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	data, err := a.mapper.CancelRequest(account, order)
	if err != nil {
		return nil, err
	}
	return a.exchange(ctx, order, data)
}

func (a *Adapter) Refund(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	data, err := a.mapper.RefundRequest(account, order)
	if err != nil {
		return nil, err
	}
	return a.exchange(ctx, order, data)
}

func (a *Adapter) Status(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	data, err := a.mapper.StatusRequest(account, order)
	if err != nil {
		return nil, err
	}
	return a.exchange(ctx, order, data)
}

func (a *Adapter) History(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	_, err := a.mapper.HistoryRequest(account, order)
	return nil, err
}

// ThreeDForm produces the redirect form for the hosted authentication page.
// This gateway needs no enrollment exchange: the form is assembled and
// signed locally.
func (a *Adapter) ThreeDForm(ctx context.Context, account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (*gateway.FormSubmission, error) {
	return gateway.NewThreeDOrchestrator(a, a.client, a.logger).Enroll(ctx, account, order, tx, card)
}

// Complete3D drives callback verification and the provision call.
func (a *Adapter) Complete3D(ctx context.Context, account *domain.Account, order *domain.Order, callback url.Values) (*domain.GatewayResponse, error) {
	return gateway.NewThreeDOrchestrator(a, a.client, a.logger).Complete(ctx, account, order, callback)
}

func (a *Adapter) exchange(ctx context.Context, order *domain.Order, data url.Values) (*domain.GatewayResponse, error) {
	body, err := a.client.Post(ctx, a.config.APIURL, gateway.FormPayload(data))
	if err != nil {
		return nil, err
	}
	raw, err := decodePairs(body)
	if err != nil {
		return nil, err
	}

	response := mapPaymentResponse(raw)
	a.logger.Info("gateway call completed",
		"order_id", order.ID,
		"status", response.Status,
	)
	return response, nil
}

// ThreeDDriver implementation.

func (a *Adapter) EnrollmentForm(ctx context.Context, _ *gateway.Client, account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (*gateway.FormSubmission, error) {
	return a.mapper.ThreeDFormData(account, order, tx, a.config.Gateway3DURL, card)
}

func (a *Adapter) DecodeCallback(callback url.Values) (map[string]any, error) {
	data := make(map[string]any, len(callback))
	for key := range callback {
		data[key] = callback.Get(key)
	}
	return data, nil
}

func (a *Adapter) CallbackProcCode(data map[string]any) string {
	return gateway.StrOr(data, "ProcReturnCode", "")
}

func (a *Adapter) VerifyCallback(account *domain.Account, order *domain.Order, data map[string]any) error {
	return VerifyCallbackHash(account, order, data)
}

func (a *Adapter) ProvisionRequest(account *domain.Account, order *domain.Order, data map[string]any) (gateway.Payload, string, error) {
	payload, err := a.mapper.ThreeDCompletionRequest(account, order, domain.TxPay, data)
	if err != nil {
		return nil, "", err
	}
	return gateway.FormPayload(payload), a.config.APIURL, nil
}

func (a *Adapter) DecodeProvision(body []byte) (map[string]any, error) {
	return decodePairs(body)
}

func (a *Adapter) MapResult(authData, provisionData map[string]any) *domain.GatewayResponse {
	threeD := map3DCommon(authData)
	if provisionData == nil {
		return gateway.MergePreferSet(gateway.DefaultPaymentResponse(), threeD)
	}
	return gateway.MergePreferSet(threeD, mapPaymentResponse(provisionData))
}
