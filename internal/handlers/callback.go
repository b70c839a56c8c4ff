package handlers

import (
	"net/http"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/storage/postgres"
)

// ThreeDCallback terminates the 3-D handshake. The bank posts the payer's
// browser here after the challenge; we look up the pending session, run the
// completion flow and resolve the session with the outcome.
//
// Banks differ in where the order id surfaces: form-field gateways echo it as
// OrderId, envelope gateways bury it inside an encoded blob. The success and
// fail URLs handed out at init carry ?order=<id> so the lookup never depends
// on the callback body.
func (h *Handlers) ThreeDCallback(w http.ResponseWriter, r *http.Request) {
	gatewayName := r.PathValue("gateway")

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "BAD_CALLBACK", Message: err.Error()})
		return
	}

	orderID := r.URL.Query().Get("order")
	if orderID == "" {
		orderID = r.PostForm.Get("OrderId")
	}
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "BAD_CALLBACK", Message: "order id missing from callback"})
		return
	}

	gw, account, ok := h.gateway(gatewayName)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "UNKNOWN_GATEWAY", Message: gatewayName})
		return
	}

	session, err := h.sessions.FindByOrderID(r.Context(), orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if session.Status != postgres.SessionPending {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "SESSION_RESOLVED", Message: orderID})
		return
	}

	// The callback-leg hash recomputation covers the return URLs and the
	// payer IP exactly as they were signed at enrollment, so the order is
	// rebuilt with the stored values, not the callback's.
	order := &domain.Order{
		ID:         session.OrderID,
		Amount:     float64(session.AmountCents) / 100,
		Currency:   session.Currency,
		SuccessURL: session.SuccessURL,
		FailURL:    session.FailURL,
		IP:         session.ClientIP,
	}

	response, err := gw.Complete3D(r.Context(), account, order, r.PostForm)
	if err != nil {
		// Only a failed integrity check is a definitive rejection. A
		// transport failure may have happened after the provision call went
		// out; the session stays pending so the reconciler can learn the
		// real outcome from the bank.
		if domain.IsErrorCode(err, domain.ErrCodeIntegrityError) {
			h.resolveSession(r, session, postgres.SessionRejected, response)
		}
		writeError(w, err, h.logger)
		return
	}

	status := postgres.SessionRejected
	if response.Approved() {
		status = postgres.SessionAuthorized
	}
	h.resolveSession(r, session, status, response)

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) resolveSession(r *http.Request, session *postgres.PaymentSession, status string, response *domain.GatewayResponse) {
	var procReturnCode, authCode *string
	if response != nil {
		procReturnCode = response.ProcReturnCode
		authCode = response.AuthCode
	}
	if err := h.sessions.Resolve(r.Context(), session.OrderID, status, procReturnCode, authCode); err != nil {
		h.logger.Error("failed to resolve payment session",
			"order_id", session.OrderID,
			"status", status,
			"error", err)
	}
}
