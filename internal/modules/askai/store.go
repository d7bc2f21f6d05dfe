// README: Ask AI persistence (query history + monthly token quota).
package askai

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles askai_queries and askai_usage persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// UseToken atomically checks the monthly quota and deducts one token.
// It resets the counter to DefaultTokens when last_reset_month is behind the
// current month. Returns ErrInsufficientTokens when 0 rows are updated
// (quota exhausted or user absent).
func (s *Store) UseToken(ctx context.Context, uid string) error {
	now := time.Now().Format("2006-01")

	tag, err := s.db.Exec(ctx, `
		UPDATE askai_usage SET
			tokens_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE tokens_remaining - 1 END,
			last_reset_month = $1
		WHERE uid = $3 AND (last_reset_month < $1 OR tokens_remaining > 0)
	`, now, DefaultTokens, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientTokens
	}
	return nil
}

// EnsureUser inserts a new askai_usage row for uid with the default token
// allowance. If the row already exists the insert is silently skipped.
func (s *Store) EnsureUser(ctx context.Context, uid string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO askai_usage (uid, tokens_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, uid, DefaultTokens, time.Now().Format("2006-01"))
	return err
}

// InsertQuery persists one query row with its extracted entity JSON.
func (s *Store) InsertQuery(ctx context.Context, q Query) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO askai_queries (id, uid, session_id, domain, query, entity, destination, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, q.ID, q.UID, q.SessionID, q.Domain, q.Query, q.Entity, q.Destination, q.CreatedAt)
	return err
}

// ListByUser returns the user's most recent queries, newest first.
func (s *Store) ListByUser(ctx context.Context, uid string, limit int) ([]Query, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, uid, session_id, domain, query, entity, destination, created_at
		FROM askai_queries
		WHERE uid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Query
	for rows.Next() {
		var q Query
		if err := rows.Scan(&q.ID, &q.UID, &q.SessionID, &q.Domain, &q.Query, &q.Entity, &q.Destination, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
