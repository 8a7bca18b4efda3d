//go:build integration
// +build integration

package session_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/liamcoop/healthrisk/predict"
	"github.com/liamcoop/healthrisk/session"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"
)

// setupTestDB starts a PostgreSQL container and applies the migrations
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "healthrisk_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/healthrisk_test?sslmode=disable", host, port.Port())

	var db *sql.DB
	for i := 0; i < 30; i++ {
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			if err = db.Ping(); err == nil {
				break
			}
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	m, err := migrate.New("file://../migrations", connStr)
	if err != nil {
		t.Fatalf("Failed to create migration instance: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		m.Close()
		db.Close()
		postgres.Terminate(ctx)
	}

	return db, cleanup
}

func TestPostgresResultStore_Lifecycle(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := session.NewPostgresResultStore(db, session.DefaultConfig())

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() failed: %v", err)
	}

	if _, found, err := store.Get(ctx, "session-a"); err != nil || found {
		t.Fatalf("new session: found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "session-a", predict.AtRisk); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	label, found, err := store.Get(ctx, "session-a")
	if err != nil || !found || label != predict.AtRisk {
		t.Fatalf("after Set: label=%q found=%v err=%v", label, found, err)
	}

	// Overwrite
	if err := store.Set(ctx, "session-a", predict.Healthy); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}
	label, _, _ = store.Get(ctx, "session-a")
	if label != predict.Healthy {
		t.Errorf("expected overwritten label healthy, got %q", label)
	}

	if err := store.Delete(ctx, "session-a"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "session-a"); found {
		t.Error("deleted session should have no result")
	}
}

func TestPostgresResultStore_Isolation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := session.NewPostgresResultStore(db, session.DefaultConfig())

	_ = store.Set(ctx, "session-a", predict.AtRisk)
	_ = store.Set(ctx, "session-b", predict.Healthy)

	a, _, _ := store.Get(ctx, "session-a")
	b, _, _ := store.Get(ctx, "session-b")
	if a != predict.AtRisk || b != predict.Healthy {
		t.Errorf("sessions leaked: a=%q b=%q", a, b)
	}
}

func TestPostgresResultStore_Sweep(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := session.NewPostgresResultStore(db, session.Config{TTL: time.Hour})

	_ = store.Set(ctx, "stale", predict.AtRisk)
	_ = store.Set(ctx, "fresh", predict.Healthy)

	if _, err := db.Exec(`UPDATE session_results SET updated_at = NOW() - INTERVAL '2 hours' WHERE session_id = 'stale'`); err != nil {
		t.Fatalf("Failed to age row: %v", err)
	}

	if _, found, _ := store.Get(ctx, "stale"); found {
		t.Error("stale result should be hidden by TTL")
	}

	removed, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 row swept, got %d", removed)
	}
	if _, found, _ := store.Get(ctx, "fresh"); !found {
		t.Error("fresh result should survive sweep")
	}
}
