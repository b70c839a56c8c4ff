package handlers

import (
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/storage/postgres"
)

type orderPayload struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Installment int     `json:"installment"`
	SuccessURL  string  `json:"success_url"`
	FailURL     string  `json:"fail_url"`
	IP          string  `json:"ip"`
	Lang        string  `json:"lang"`
}

type cardPayload struct {
	HolderName  string `json:"holder_name"`
	Number      string `json:"number"`
	ExpireMonth int    `json:"expire_month"`
	ExpireYear  int    `json:"expire_year"`
	CVV         string `json:"cvv"`
	Brand       string `json:"brand"`
}

type paymentRequest struct {
	Gateway string       `json:"gateway"`
	Order   orderPayload `json:"order"`
	Card    *cardPayload `json:"card,omitempty"`
}

func (p orderPayload) order() *domain.Order {
	return &domain.Order{
		ID:          p.ID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Installment: p.Installment,
		SuccessURL:  p.SuccessURL,
		FailURL:     p.FailURL,
		IP:          p.IP,
		Rand:        uuid.New().String(),
		Lang:        p.Lang,
	}
}

func (c *cardPayload) card() *domain.Card {
	if c == nil {
		return nil
	}
	return &domain.Card{
		HolderName:  c.HolderName,
		Number:      c.Number,
		ExpireMonth: c.ExpireMonth,
		ExpireYear:  c.ExpireYear,
		CVV:         c.CVV,
		Brand:       domain.CardBrand(c.Brand),
	}
}

// tagReturnURL appends the order id as a query parameter so the callback
// handler can find the session without reading the bank's payload.
func tagReturnURL(rawURL, orderID string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("order", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}

// Pay runs a non-secure payment straight through the selected gateway.
func (h *Handlers) Pay(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	gw, account, ok := h.gateway(req.Gateway)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "UNKNOWN_GATEWAY", Message: req.Gateway})
		return
	}

	response, err := gw.Pay(r.Context(), account, req.Order.order(), req.Card.card())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// ThreeDInit starts the 3-D handshake: it records a pending session and
// returns the redirect form for the caller to render as an auto-submit page.
func (h *Handlers) ThreeDInit(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	gw, account, ok := h.gateway(req.Gateway)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "UNKNOWN_GATEWAY", Message: req.Gateway})
		return
	}

	order := req.Order.order()
	order.SuccessURL = tagReturnURL(order.SuccessURL, order.ID)
	order.FailURL = tagReturnURL(order.FailURL, order.ID)

	form, err := gw.ThreeDForm(r.Context(), account, order, domain.TxPay, req.Card.card())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	session := &postgres.PaymentSession{
		ID:          uuid.New().String(),
		OrderID:     order.ID,
		Gateway:     req.Gateway,
		Status:      postgres.SessionPending,
		AmountCents: int64(math.Round(order.Amount * 100)),
		Currency:    order.Currency,
		SuccessURL:  order.SuccessURL,
		FailURL:     order.FailURL,
		ClientIP:    order.IP,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.sessions.Create(r.Context(), session); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"gateway_url": form.Gateway,
		"inputs":      form.Inputs,
	})
}

// PostAuth captures a pre-authorized transaction.
func (h *Handlers) PostAuth(w http.ResponseWriter, r *http.Request) {
	h.followUp(w, r, "postauth")
}

// Cancel voids a transaction.
func (h *Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	h.followUp(w, r, "cancel")
}

// Refund returns funds for a transaction.
func (h *Handlers) Refund(w http.ResponseWriter, r *http.Request) {
	h.followUp(w, r, "refund")
}

// Query asks the gateway for the current state of a transaction.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	h.followUp(w, r, "status")
}

// followUp addresses an earlier transaction by its order id through the
// gateway recorded in the session.
func (h *Handlers) followUp(w http.ResponseWriter, r *http.Request, op string) {
	orderID := r.PathValue("orderID")

	session, err := h.sessions.FindByOrderID(r.Context(), orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	gw, account, ok := h.gateway(session.Gateway)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "UNKNOWN_GATEWAY", Message: session.Gateway})
		return
	}

	order := &domain.Order{
		ID:       orderID,
		Amount:   float64(session.AmountCents) / 100,
		Currency: session.Currency,
		IP:       session.ClientIP,
	}

	var response *domain.GatewayResponse
	switch op {
	case "postauth":
		response, err = gw.PostAuth(r.Context(), account, order)
	case "cancel":
		response, err = gw.Cancel(r.Context(), account, order)
	case "refund":
		response, err = gw.Refund(r.Context(), account, order)
	default:
		response, err = gw.Status(r.Context(), account, order)
	}
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
