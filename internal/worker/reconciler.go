package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
	"github.com/tkaraca/vpos-gateway/internal/storage/postgres"
)

// Reconciler sweeps payment sessions whose 3-D callback never arrived.
// Payers abandon challenges, banks drop redirects; without the sweep those
// sessions stay pending forever. Where the gateway supports a status query
// the reconciler asks the bank for the truth, otherwise it expires the
// session outright.
type Reconciler struct {
	sessions  *postgres.SessionRepository
	gateways  map[string]gateway.Gateway
	accounts  map[string]*domain.Account
	interval  time.Duration
	batchSize int
	ttl       time.Duration
	logger    *slog.Logger
}

func NewReconciler(
	sessions *postgres.SessionRepository,
	gateways map[string]gateway.Gateway,
	accounts map[string]*domain.Account,
	interval time.Duration,
	batchSize int,
	ttl time.Duration,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		sessions:  sessions,
		gateways:  gateways,
		accounts:  accounts,
		interval:  interval,
		batchSize: batchSize,
		ttl:       ttl,
		logger:    logger,
	}
}

func (w *Reconciler) Start(ctx context.Context) {
	w.logger.Info("session reconciler started", "interval", w.interval, "ttl", w.ttl)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.processStaleSessions(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session reconciler stopping")
			return
		case <-ticker.C:
			if err := w.processStaleSessions(ctx); err != nil {
				w.logger.Error("session reconciliation failed", "error", err)
			}
		}
	}
}

func (w *Reconciler) processStaleSessions(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-w.ttl)

	stale, err := w.sessions.FindStalePending(ctx, cutoff, w.batchSize)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	var processed, resolved int

	for _, session := range stale {
		if err := w.reconcileSession(ctx, session); err != nil {
			w.logger.Error("failed to reconcile session",
				"order_id", session.OrderID,
				"gateway", session.Gateway,
				"error", err)
		} else {
			resolved++
		}
		processed++
	}

	w.logger.Info("processed stale sessions",
		"processed", processed,
		"resolved", resolved)

	return nil
}

func (w *Reconciler) reconcileSession(ctx context.Context, session *postgres.PaymentSession) error {
	gw, ok := w.gateways[session.Gateway]
	if !ok {
		w.logger.Warn("stale session references unknown gateway",
			"order_id", session.OrderID,
			"gateway", session.Gateway)
		return w.expire(ctx, session)
	}
	account, ok := w.accounts[session.Gateway]
	if !ok {
		return w.expire(ctx, session)
	}

	order := &domain.Order{
		ID:       session.OrderID,
		Amount:   float64(session.AmountCents) / 100,
		Currency: session.Currency,
	}

	response, err := gw.Status(ctx, account, order)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeUnsupportedOperation) {
			return w.expire(ctx, session)
		}
		return err
	}

	if response.Approved() {
		w.logger.Warn("stale session was authorized at the bank",
			"order_id", session.OrderID,
			"gateway", session.Gateway)
		return w.sessions.Resolve(ctx, session.OrderID, postgres.SessionAuthorized,
			response.ProcReturnCode, response.AuthCode)
	}

	return w.sessions.Resolve(ctx, session.OrderID, postgres.SessionRejected,
		response.ProcReturnCode, response.AuthCode)
}

func (w *Reconciler) expire(ctx context.Context, session *postgres.PaymentSession) error {
	return w.sessions.Resolve(ctx, session.OrderID, postgres.SessionExpired, nil, nil)
}
