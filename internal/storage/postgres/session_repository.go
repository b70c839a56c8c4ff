package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *PaymentSession) error {
	query := `
		INSERT INTO payment_sessions (
			id, order_id, gateway, status, amount_cents, currency,
			success_url, fail_url, client_ip,
			proc_return_code, auth_code, created_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		session.ID,
		session.OrderID,
		session.Gateway,
		session.Status,
		session.AmountCents,
		session.Currency,
		session.SuccessURL,
		session.FailURL,
		session.ClientIP,
		session.ProcReturnCode,
		session.AuthCode,
		session.CreatedAt,
		session.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByOrderID(ctx context.Context, orderID string) (*PaymentSession, error) {
	query := `
		SELECT id, order_id, gateway, status, amount_cents, currency,
		       success_url, fail_url, client_ip,
		       proc_return_code, auth_code, created_at, resolved_at
		FROM payment_sessions WHERE order_id = $1
	`

	row := r.db.Pool.QueryRow(ctx, query, orderID)
	return scanSession(row)
}

// Resolve records the terminal outcome of a session's handshake.
func (r *SessionRepository) Resolve(ctx context.Context, orderID, status string, procReturnCode, authCode *string) error {
	query := `
		UPDATE payment_sessions
		SET status = $2, proc_return_code = $3, auth_code = $4, resolved_at = $5
		WHERE order_id = $1 AND status = $6
	`

	tag, err := r.db.Pool.Exec(ctx, query, orderID, status, procReturnCode, authCode, time.Now().UTC(), SessionPending)
	if err != nil {
		return fmt.Errorf("failed to resolve payment session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewSessionNotFoundError(orderID)
	}
	return nil
}

// FindStalePending returns pending sessions older than the cutoff, oldest
// first, for the reconciler to expire.
func (r *SessionRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*PaymentSession, error) {
	query := `
		SELECT id, order_id, gateway, status, amount_cents, currency,
		       success_url, fail_url, client_ip,
		       proc_return_code, auth_code, created_at, resolved_at
		FROM payment_sessions
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, SessionPending, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*PaymentSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*PaymentSession, error) {
	var s PaymentSession
	err := row.Scan(
		&s.ID,
		&s.OrderID,
		&s.Gateway,
		&s.Status,
		&s.AmountCents,
		&s.Currency,
		&s.SuccessURL,
		&s.FailURL,
		&s.ClientIP,
		&s.ProcReturnCode,
		&s.AuthCode,
		&s.CreatedAt,
		&s.ResolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewSessionNotFoundError("")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan payment session: %w", err)
	}
	return &s, nil
}
