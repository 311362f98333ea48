// Package storage persists a best-effort audit trail of finder
// sessions. The pipeline works without it; a nil *Storage disables
// recording entirely.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/sampa-lab/event_radar/pkg/config"
	dm "github.com/sampa-lab/event_radar/pkg/model"
)

// Storage wraps the audit database.
type Storage struct {
	db *sql.DB
}

// NewStorage opens the connection and bootstraps the schema.
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS find_sessions (
			id SERIAL PRIMARY KEY,
			event_type TEXT,
			date_query TEXT,
			location_query TEXT,
			expanded_terms TEXT,
			chat_summary TEXT,
			results_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init find_sessions table: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.db.Close()
}

// RecordSession stores one audit row for a finder call.
func (s *Storage) RecordSession(ctx context.Context, q dm.QueryDetails, result *dm.FindResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO find_sessions (event_type, date_query, location_query, expanded_terms, chat_summary, results_count)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		q.EventType, q.Date, q.LocationQuery, q.ExpandedLocationTerms,
		result.ChatSummary, len(result.EventsFound),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// RecentSessions lists the latest audit rows, newest first.
func (s *Storage) RecentSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, date_query, location_query, chat_summary, results_count, created_at
		FROM find_sessions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		var row SessionRow
		if err := rows.Scan(&row.ID, &row.EventType, &row.DateQuery, &row.LocationQuery,
			&row.ChatSummary, &row.ResultsCount, &row.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, row)
	}
	return sessions, rows.Err()
}

// SessionRow is one audit entry.
type SessionRow struct {
	ID            int       `json:"id"`
	EventType     string    `json:"event_type"`
	DateQuery     string    `json:"date_query"`
	LocationQuery string    `json:"location_query"`
	ChatSummary   string    `json:"chat_summary"`
	ResultsCount  int       `json:"results_count"`
	CreatedAt     time.Time `json:"created_at"`
}
