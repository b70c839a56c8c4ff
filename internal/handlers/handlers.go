package handlers

import (
	"log/slog"
	"net/http"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
	"github.com/tkaraca/vpos-gateway/internal/storage/postgres"
)

// Handlers exposes the gateway operations over HTTP. Adapters are selected
// by the gateway name carried in the request (or recorded in the session for
// callback and follow-up calls).
type Handlers struct {
	gateways map[string]gateway.Gateway
	accounts map[string]*domain.Account
	sessions *postgres.SessionRepository
	logger   *slog.Logger
}

func NewHandlers(
	gateways map[string]gateway.Gateway,
	accounts map[string]*domain.Account,
	sessions *postgres.SessionRepository,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		gateways: gateways,
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// Routes wires the endpoint set onto a mux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments", h.Pay)
	mux.HandleFunc("POST /payments/3d", h.ThreeDInit)
	mux.HandleFunc("POST /payments/3d/callback/{gateway}", h.ThreeDCallback)
	mux.HandleFunc("POST /payments/{orderID}/postauth", h.PostAuth)
	mux.HandleFunc("POST /payments/{orderID}/cancel", h.Cancel)
	mux.HandleFunc("POST /payments/{orderID}/refund", h.Refund)
	mux.HandleFunc("GET /payments/{orderID}", h.Query)
	return mux
}

func (h *Handlers) gateway(name string) (gateway.Gateway, *domain.Account, bool) {
	gw, ok := h.gateways[name]
	if !ok {
		return nil, nil, false
	}
	account, ok := h.accounts[name]
	if !ok {
		return nil, nil, false
	}
	return gw, account, true
}
