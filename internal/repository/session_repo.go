package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyroom-backend/internal/models"
)

// ErrActiveSessionExists reports a check-in racing an already-open
// session; the partial unique index on open sessions is what actually
// enforces the invariant.
var ErrActiveSessionExists = errors.New("user already has an open session")

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// Open creates a new open session. Under concurrent check-ins for the
// same user exactly one insert survives; the loser gets
// ErrActiveSessionExists from the unique violation.
func (r *SessionRepo) Open(ctx context.Context, userID uuid.UUID, at time.Time) (*models.Session, error) {
	s := &models.Session{UserID: userID, CheckinAt: at}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, checkin_at)
		VALUES ($1, $2)
		RETURNING id, checkin_at
	`, userID, at).Scan(&s.ID, &s.CheckinAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrActiveSessionExists
		}
		return nil, err
	}
	return s, nil
}

// CloseOpen seals the user's open session, if any. The conditional
// update is the per-user serialization point: two concurrent checkouts
// cannot both match `checkout_at IS NULL`. A checkout at or before the
// check-in instant clamps the duration to zero and flags the row.
func (r *SessionRepo) CloseOpen(ctx context.Context, userID uuid.UUID, at time.Time) (*models.Session, error) {
	s := &models.Session{UserID: userID}
	co := at
	err := r.pool.QueryRow(ctx, `
		UPDATE sessions
		SET checkout_at = $2,
			duration_sec = GREATEST(0, EXTRACT(EPOCH FROM ($2 - checkin_at))::INT),
			clock_skew = ($2 <= checkin_at)
		WHERE user_id = $1
		  AND checkout_at IS NULL
		RETURNING id, checkin_at, duration_sec, clock_skew
	`, userID, at).Scan(&s.ID, &s.CheckinAt, &s.DurationSec, &s.ClockSkew)
	if err != nil {
		return nil, err
	}
	s.CheckoutAt = &co
	return s, nil
}

// CloseAllOpen seals every open session in one statement; a check-in
// committing after the update snapshot simply stays open.
func (r *SessionRepo) CloseAllOpen(ctx context.Context, at time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET checkout_at = $1,
			duration_sec = GREATEST(0, EXTRACT(EPOCH FROM ($1 - checkin_at))::INT),
			clock_skew = ($1 <= checkin_at)
		WHERE checkout_at IS NULL
	`, at)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CloseStale seals open sessions that started before the cutoff.
func (r *SessionRepo) CloseStale(ctx context.Context, startedBefore, at time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET checkout_at = $2,
			duration_sec = GREATEST(0, EXTRACT(EPOCH FROM ($2 - checkin_at))::INT)
		WHERE checkout_at IS NULL
		  AND checkin_at < $1
	`, startedBefore, at)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *SessionRepo) GetOpen(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	s := &models.Session{UserID: userID}
	err := r.pool.QueryRow(ctx, `
		SELECT id, checkin_at
		FROM sessions
		WHERE user_id = $1 AND checkout_at IS NULL
		ORDER BY checkin_at DESC
		LIMIT 1
	`, userID).Scan(&s.ID, &s.CheckinAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListOverlapping fetches sessions that overlap [start, end),
// including sessions that started before the range and are still open.
func (r *SessionRepo) ListOverlapping(ctx context.Context, start, end time.Time) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, checkin_at, checkout_at, COALESCE(duration_sec, 0), clock_skew
		FROM sessions
		WHERE checkin_at < $2
		  AND (checkout_at IS NULL OR checkout_at > $1)
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, checkin_at, checkout_at, COALESCE(duration_sec, 0), clock_skew
		FROM sessions
		WHERE user_id = $1
		ORDER BY checkin_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListSealedByUser returns every closed session for a user, for
// personal-best computation.
func (r *SessionRepo) ListSealedByUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, checkin_at, checkout_at, COALESCE(duration_sec, 0), clock_skew
		FROM sessions
		WHERE user_id = $1 AND checkout_at IS NOT NULL
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepo) Occupancy(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sessions WHERE checkout_at IS NULL").Scan(&n)
	return n, err
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSessions(rows pgRows) ([]models.Session, error) {
	sessions := make([]models.Session, 0)
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.CheckinAt, &s.CheckoutAt, &s.DurationSec, &s.ClockSkew); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
