//go:build integration

package dataset

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL testcontainer and returns a migrated store
func setupPostgres(t *testing.T) *SQLStore {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_DB":       "testdb",
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
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { postgres.Terminate(ctx) })

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	connStr := fmt.Sprintf("postgres://postgres:password@%s:%s/testdb?sslmode=disable", host, port.Port())

	var store *SQLStore
	for i := 0; i < 30; i++ {
		store, err = OpenSQLStore(ctx, DriverPostgres, connStr)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := Migrate(store.DB().DB, DriverPostgres); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return store
}

// TestSQLStore_Postgres imports a dataset and reads it back through the Store interface
func TestSQLStore_Postgres(t *testing.T) {
	ctx := context.Background()
	store := setupPostgres(t)

	table, err := LoadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("LoadCSV() failed: %v", err)
	}

	if err := store.Import(ctx, table); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}

	var s Store = store
	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.Len() != table.Len() {
		t.Fatalf("Len() = %d, want %d", loaded.Len(), table.Len())
	}
	if got := loaded.Row(0).Value("ConvertedCompYearly"); got != 85000 {
		t.Errorf("row 0 ConvertedCompYearly = %v, want 85000", got)
	}
	if got := loaded.Row(2).Value("Country_India"); got != 1 {
		t.Errorf("row 2 Country_India = %v, want 1", got)
	}
}

// TestMigrate_PostgresVersion verifies the embedded migrations apply and roll back
func TestMigrate_PostgresVersion(t *testing.T) {
	store := setupPostgres(t)
	db := store.DB().DB

	version, dirty, err := Version(db, DriverPostgres)
	if err != nil {
		t.Fatalf("Version() failed: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Version() = %d, dirty=%v; want 1, false", version, dirty)
	}

	if err := MigrateDown(db, DriverPostgres); err != nil {
		t.Fatalf("MigrateDown() failed: %v", err)
	}

	if _, err := store.Load(context.Background()); err == nil {
		t.Error("Load() should fail once tables are dropped")
	}
}
