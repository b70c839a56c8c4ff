package gateway

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

// ThreeDState tracks where in the handshake a transaction stopped.
type ThreeDState string

const (
	StateEnrollmentCheck  ThreeDState = "ENROLLMENT_CHECK"
	StateRedirected       ThreeDState = "REDIRECTED"
	StateCallbackReceived ThreeDState = "CALLBACK_RECEIVED"
	StateHashValid        ThreeDState = "HASH_VALID"
	StateHashInvalid      ThreeDState = "HASH_INVALID"
	StateAuthorized       ThreeDState = "AUTHORIZED"
	StateRejected         ThreeDState = "REJECTED"
)

// ThreeDDriver supplies the gateway-specific pieces of the handshake. The
// orchestrator owns the sequencing and the integrity gate; the driver owns
// field names, hash bases and wire shapes.
type ThreeDDriver interface {
	// EnrollmentForm builds the redirect form for the bank's hosted
	// authentication page, performing the enrollment exchange when the
	// gateway requires one.
	EnrollmentForm(ctx context.Context, client *Client, account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (*FormSubmission, error)

	// DecodeCallback turns the bank's redirect-back parameters into a field
	// map. Some banks embed URL-encoded XML in a single parameter.
	DecodeCallback(callback url.Values) (map[string]any, error)

	// CallbackProcCode extracts the bank's per-transaction status code from
	// the decoded callback.
	CallbackProcCode(data map[string]any) string

	// VerifyCallback recomputes the keyed hash over the callback's echoed
	// fields and compares it with the bank-supplied digest. A mismatch is an
	// integrity failure and must abort the handshake.
	VerifyCallback(account *domain.Account, order *domain.Order, data map[string]any) error

	// ProvisionRequest builds the server-to-server capture call issued after
	// a successful authentication.
	ProvisionRequest(account *domain.Account, order *domain.Order, data map[string]any) (Payload, string, error)

	// DecodeProvision decodes the capture call's response body.
	DecodeProvision(body []byte) (map[string]any, error)

	// MapResult folds the authentication-stage data and the capture response
	// (nil when capture was never reached) into one canonical response.
	MapResult(authData, provisionData map[string]any) *domain.GatewayResponse
}

// ThreeDOrchestrator drives one 3-D Secure transaction through enrollment,
// callback verification and provisioning. Browser-redirect authentication
// alone is not authorization to move money: the capture call is issued at
// most once, and only behind both the status gate and the hash gate.
// One orchestrator per in-flight transaction; it records the terminal state.
type ThreeDOrchestrator struct {
	driver ThreeDDriver
	client *Client
	logger *slog.Logger

	state ThreeDState
}

func NewThreeDOrchestrator(driver ThreeDDriver, client *Client, logger *slog.Logger) *ThreeDOrchestrator {
	return &ThreeDOrchestrator{
		driver: driver,
		client: client,
		logger: logger,
		state:  StateEnrollmentCheck,
	}
}

// State returns the last state the handshake reached.
func (o *ThreeDOrchestrator) State() ThreeDState { return o.state }

// Enroll runs the enrollment check and hands the redirect form to the caller.
// The orchestrator's responsibility ends at producing the form; it resumes
// when Complete is invoked with the bank's callback.
func (o *ThreeDOrchestrator) Enroll(ctx context.Context, account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (*FormSubmission, error) {
	o.state = StateEnrollmentCheck

	form, err := o.driver.EnrollmentForm(ctx, o.client, account, order, tx, card)
	if err != nil {
		return nil, err
	}

	o.state = StateRedirected
	o.logger.Info("3d enrollment form produced",
		"order_id", order.ID,
		"gateway_url", form.Gateway,
	)
	return form, nil
}

// Complete reconciles the bank's asynchronous callback with the synchronous
// provision call. The capture is skipped entirely when either the bank's
// status code signals failure or the recomputed hash does not match.
func (o *ThreeDOrchestrator) Complete(ctx context.Context, account *domain.Account, order *domain.Order, callback url.Values) (*domain.GatewayResponse, error) {
	o.state = StateCallbackReceived

	authData, err := o.driver.DecodeCallback(callback)
	if err != nil {
		return nil, err
	}

	if err := o.driver.VerifyCallback(account, order, authData); err != nil {
		o.state = StateHashInvalid
		o.logger.Error("3d callback hash mismatch",
			"order_id", order.ID,
			"state", string(o.state),
		)
		o.state = StateRejected
		return nil, err
	}
	o.state = StateHashValid

	var provisionData map[string]any
	procCode := o.driver.CallbackProcCode(authData)
	if procCode == ProcCodeApproved {
		payload, endpoint, err := o.driver.ProvisionRequest(account, order, authData)
		if err != nil {
			return nil, err
		}

		body, err := o.client.Post(ctx, endpoint, payload)
		if err != nil {
			return nil, err
		}

		provisionData, err = o.driver.DecodeProvision(body)
		if err != nil {
			return nil, err
		}
	} else {
		o.logger.Info("3d authentication declined by bank, capture skipped",
			"order_id", order.ID,
			"proc_return_code", procCode,
		)
	}

	response := o.driver.MapResult(authData, provisionData)
	if response.Approved() {
		o.state = StateAuthorized
	} else {
		o.state = StateRejected
	}

	o.logger.Info("3d payment completed",
		"order_id", order.ID,
		"status", response.Status,
		"state", string(o.state),
	)
	return response, nil
}
