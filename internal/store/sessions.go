package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/session"
)

// SessionStore keeps sessions in the sessions table with a sliding expiry.
type SessionStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewSessionStore(db *sql.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: db, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, id string) (*session.Session, error) {
	var data string

	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM sessions WHERE id = $1 AND expires_at > NOW()`,
		id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	return session.Decode(id, []byte(data))
}

func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	data, err := sess.Encode()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data, expires_at)
		 VALUES ($1, $2, NOW() + make_interval(secs => $3))
		 ON CONFLICT (id) DO UPDATE
		 SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`,
		sess.ID, string(data), s.ttl.Seconds())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	sess.MarkSaved()
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes expired rows and returns how many were deleted.
func PurgeExpiredSessions(ctx context.Context, q database.Querier) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (s *SessionStore) Purge(ctx context.Context) (int64, error) {
	return PurgeExpiredSessions(ctx, s.db)
}
