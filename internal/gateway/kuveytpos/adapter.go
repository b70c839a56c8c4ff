package kuveytpos

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
)

// Config carries the bank endpoints for one environment.
type Config struct {
	// APIURL receives the server-to-server provision XML.
	APIURL string
	// Gateway3DURL receives the enrollment XML and answers with the HTML
	// redirect form.
	Gateway3DURL string
}

// Adapter implements the canonical operation set against the bank's
// XML-envelope protocol. This bank only documents the 3-D Sale flow; every
// other operation fails as unsupported rather than guessing a message shape.
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

func (a *Adapter) Pay(ctx context.Context, account *domain.Account, order *domain.Order, card *domain.Card) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError(Name, domain.TxPay)
}

func (a *Adapter) PostAuth(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError(Name, domain.TxPostAuth)
}

func (a *Adapter) Cancel(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError(Name, domain.TxCancel)
}

func (a *Adapter) Refund(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError(Name, domain.TxRefund)
}

func (a *Adapter) Status(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError(Name, domain.TxStatus)
}

func (a *Adapter) History(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError(Name, domain.TxHistory)
}

// ThreeDForm sends the enrollment XML and converts the bank's HTML reply
// into the redirect form. On a rejected enrollment the bank points the form
// action at the request's fail URL, which is still a valid redirect.
func (a *Adapter) ThreeDForm(ctx context.Context, account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (*gateway.FormSubmission, error) {
	return gateway.NewThreeDOrchestrator(a, a.client, a.logger).Enroll(ctx, account, order, tx, card)
}

// Complete3D drives callback verification and the provision call.
func (a *Adapter) Complete3D(ctx context.Context, account *domain.Account, order *domain.Order, callback url.Values) (*domain.GatewayResponse, error) {
	return gateway.NewThreeDOrchestrator(a, a.client, a.logger).Complete(ctx, account, order, callback)
}

// ThreeDDriver implementation.

func (a *Adapter) EnrollmentForm(ctx context.Context, client *gateway.Client, account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (*gateway.FormSubmission, error) {
	payload, err := a.mapper.EnrollmentRequest(account, order, tx, card)
	if err != nil {
		return nil, err
	}

	body, err := client.Post(ctx, a.config.Gateway3DURL, payload)
	if err != nil {
		return nil, err
	}

	decoded, err := gateway.Decode(body)
	if err != nil {
		return nil, err
	}

	form, ok := decoded.(gateway.DecodedForm)
	if !ok {
		// An XML reply here is an enrollment failure, not a redirect.
		return nil, domain.NewUndecodableResponseError(string(body))
	}

	submission := gateway.FormSubmission(form)
	return &submission, nil
}

// DecodeCallback unwraps the URL-encoded XML the bank posts back in the
// AuthenticationResponse parameter.
func (a *Adapter) DecodeCallback(callback url.Values) (map[string]any, error) {
	encoded := callback.Get("AuthenticationResponse")
	if encoded == "" {
		return nil, domain.NewUndecodableResponseError("callback missing AuthenticationResponse")
	}

	raw, err := url.QueryUnescape(encoded)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}

	data, err := gateway.DecodeXML([]byte(raw))
	if err != nil {
		return nil, domain.NewUndecodableResponseError(raw)
	}
	return map[string]any(data), nil
}

func (a *Adapter) CallbackProcCode(data map[string]any) string {
	return procReturnCode(data)
}

func (a *Adapter) VerifyCallback(account *domain.Account, order *domain.Order, data map[string]any) error {
	return VerifyCallbackHash(account, order, data)
}

func (a *Adapter) ProvisionRequest(account *domain.Account, order *domain.Order, data map[string]any) (gateway.Payload, string, error) {
	payload, err := a.mapper.ProvisionRequest(account, order, data)
	if err != nil {
		return nil, "", err
	}
	return payload, a.config.APIURL, nil
}

func (a *Adapter) DecodeProvision(body []byte) (map[string]any, error) {
	data, err := gateway.DecodeXML(body)
	if err != nil {
		return nil, domain.NewUndecodableResponseError(string(body))
	}
	return map[string]any(data), nil
}

func (a *Adapter) MapResult(authData, provisionData map[string]any) *domain.GatewayResponse {
	threeD := map3DCommon(authData)
	if provisionData == nil {
		return gateway.MergePreferSet(gateway.DefaultPaymentResponse(), threeD)
	}
	return gateway.MergePreferSet(threeD, mapPaymentResponse(provisionData))
}
