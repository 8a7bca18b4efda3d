package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/liamcoop/healthrisk/predict"
	_ "github.com/lib/pq"
)

// PostgresResultStore implements ResultStore backed by PostgreSQL so that
// several server replicas can share session results
type PostgresResultStore struct {
	db     *sql.DB
	config Config
}

// NewPostgresResultStore creates a PostgreSQL-backed ResultStore
func NewPostgresResultStore(db *sql.DB, config Config) *PostgresResultStore {
	return &PostgresResultStore{
		db:     db,
		config: config,
	}
}

// Get retrieves the session's label, ignoring rows older than the TTL
func (s *PostgresResultStore) Get(ctx context.Context, sessionID string) (predict.Label, bool, error) {
	if sessionID == "" {
		return "", false, fmt.Errorf("session ID is required")
	}

	var raw string
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT label, updated_at
		FROM session_results
		WHERE session_id = $1
	`, sessionID).Scan(&raw, &updatedAt)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get session result: %w", err)
	}

	if s.config.TTL > 0 && time.Since(updatedAt) > s.config.TTL {
		return "", false, nil
	}

	label, err := predict.ParseLabel(raw)
	if err != nil {
		return "", false, fmt.Errorf("corrupt session result for %s: %w", sessionID, err)
	}
	return label, true, nil
}

// Set upserts the session's label
func (s *PostgresResultStore) Set(ctx context.Context, sessionID string, label predict.Label) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if _, err := predict.ParseLabel(string(label)); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_results (session_id, label, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET label = EXCLUDED.label, updated_at = NOW()
	`, sessionID, string(label))
	if err != nil {
		return fmt.Errorf("failed to store session result: %w", err)
	}

	return nil
}

// Delete removes the session's result
func (s *PostgresResultStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM session_results
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session result: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (s *PostgresResultStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Sweep deletes rows older than the TTL and returns how many were removed
func (s *PostgresResultStore) Sweep(ctx context.Context) (int64, error) {
	if s.config.TTL <= 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM session_results
		WHERE updated_at < $1
	`, time.Now().Add(-s.config.TTL))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep session results: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
