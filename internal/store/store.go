package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// Store manages the PostgreSQL connection and round history.
type Store struct {
	conn *pgx.Conn
}

// Round is one judged round of a play session.
type Round struct {
	ID        string
	SessionID uuid.UUID
	Round     int
	Result    string
	Openness  *float64 // nil when no mouth could be measured
	Faces     int
	JudgedAt  time.Time
}

// Stats aggregates results across all sessions.
type Stats struct {
	Wins   int
	Losses int
}

// Total returns the number of recorded rounds.
func (s Stats) Total() int { return s.Wins + s.Losses }

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the rounds table if it does not exist.
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			session_id UUID NOT NULL,
			round INT NOT NULL,
			result TEXT NOT NULL CHECK (result IN ('win', 'lose')),
			openness DOUBLE PRECISION,
			faces INT NOT NULL,
			judged_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS rounds_judged_at_idx ON rounds (judged_at DESC);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// NewID returns a time-ordered round identifier.
func NewID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// InsertRound saves a judged round. An empty ID is filled in from JudgedAt.
func (s *Store) InsertRound(ctx context.Context, r Round) (string, error) {
	if r.JudgedAt.IsZero() {
		r.JudgedAt = time.Now()
	}
	if r.ID == "" {
		r.ID = NewID(r.JudgedAt)
	}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO rounds (id, session_id, round, result, openness, faces, judged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, r.SessionID, r.Round, r.Result, r.Openness, r.Faces, r.JudgedAt)
	return r.ID, err
}

// ListRounds returns the most recent rounds, newest first.
func (s *Store) ListRounds(ctx context.Context, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(ctx, `
		SELECT id, session_id, round, result, openness, faces, judged_at
		FROM rounds
		ORDER BY judged_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Round, &r.Result, &r.Openness, &r.Faces, &r.JudgedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

// Stats counts wins and losses.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.conn.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE result = 'win'),
			COUNT(*) FILTER (WHERE result = 'lose')
		FROM rounds
	`).Scan(&st.Wins, &st.Losses)
	return st, err
}

// Reset drops all application tables to clear the database state.
// This is useful for development to force a schema refresh without migrations.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `DROP TABLE IF EXISTS rounds CASCADE;`)
	return err
}
