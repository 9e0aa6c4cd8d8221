package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNewIDIsTimeOrdered(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a, b := NewID(t0), NewID(t0.Add(time.Second))
	if a >= b {
		t.Errorf("ids not ordered: %s >= %s", a, b)
	}
	id, err := ulid.Parse(a)
	if err != nil {
		t.Fatalf("not a ulid: %v", err)
	}
	if got := ulid.Time(id.Time()); !got.Equal(t0) {
		t.Errorf("embedded time = %v, want %v", got, t0)
	}
}

// TestStoreIntegration runs a full integration test against a real Postgres container.
// It requires Docker to be running.
func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("facepill_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	s, err := New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to store: %v", err)
	}
	defer s.Close(ctx)

	session := uuid.New()
	base := time.Now().Add(-time.Minute).Truncate(time.Millisecond)
	wide := 22.5

	winID, err := s.InsertRound(ctx, Round{SessionID: session, Round: 1, Result: "win", Openness: &wide, Faces: 1, JudgedAt: base})
	if err != nil {
		t.Fatalf("InsertRound failed: %v", err)
	}
	if winID == "" {
		t.Error("expected generated id")
	}
	if _, err := s.InsertRound(ctx, Round{SessionID: session, Round: 2, Result: "lose", Faces: 0, JudgedAt: base.Add(10 * time.Second)}); err != nil {
		t.Fatalf("InsertRound failed: %v", err)
	}
	if _, err := s.InsertRound(ctx, Round{SessionID: session, Round: 3, Result: "maybe"}); err == nil {
		t.Error("expected check constraint to reject unknown result")
	}

	rounds, err := s.ListRounds(ctx, 10)
	if err != nil {
		t.Fatalf("ListRounds failed: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("Expected 2 rounds, got %d", len(rounds))
	}
	if rounds[0].Round != 2 || rounds[0].Openness != nil {
		t.Errorf("newest round = %+v, want round 2 with no openness", rounds[0])
	}
	if rounds[1].ID != winID || rounds[1].Openness == nil || *rounds[1].Openness != wide {
		t.Errorf("oldest round = %+v, want %s with openness %v", rounds[1], winID, wide)
	}
	if rounds[1].SessionID != session {
		t.Errorf("session = %v, want %v", rounds[1].SessionID, session)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Wins != 1 || st.Losses != 1 || st.Total() != 2 {
		t.Errorf("Stats = %+v", st)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := s.ListRounds(ctx, 1); err == nil {
		t.Error("expected error listing after table drop")
	}
}

type noopLogger struct{}

func (n noopLogger) Printf(format string, v ...interface{}) {}
