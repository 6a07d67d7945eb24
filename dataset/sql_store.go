package dataset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// SQLStore keeps the dataset in two tables: dataset_columns holds the
// header in column order and observations holds each row as a JSON array.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open connection.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore connects with driver ("postgres" or "sqlite") and verifies the connection.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver %q (must be %s or %s)", driver, DriverPostgres, DriverSQLite)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One writer; also keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
	}

	return &SQLStore{db: db}, nil
}

// DB returns the underlying connection.
func (s *SQLStore) DB() *sqlx.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *SQLStore) Driver() string {
	return s.db.DriverName()
}

// Ping verifies the database is reachable
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Load reads the schema and every observation.
func (s *SQLStore) Load(ctx context.Context) (*Table, error) {
	var columns []string
	err := s.db.SelectContext(ctx, &columns, `
		SELECT name
		FROM dataset_columns
		ORDER BY ordinal ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset has not been imported")
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, vals
		FROM observations
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	defer rows.Close()

	var values [][]float64
	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}

		var row []float64
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("invalid observation %d: %w", id, err)
		}
		values = append(values, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observations: %w", err)
	}

	return NewTable(columns, values)
}

// Import replaces the stored dataset with t in a single transaction.
func (s *SQLStore) Import(ctx context.Context, t *Table) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return fmt.Errorf("failed to clear observations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dataset_columns`); err != nil {
		return fmt.Errorf("failed to clear dataset columns: %w", err)
	}

	colStmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO dataset_columns (ordinal, name) VALUES (?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare column insert: %w", err)
	}
	defer colStmt.Close()

	for i, name := range t.Schema().Columns() {
		if _, err := colStmt.ExecContext(ctx, i, name); err != nil {
			return fmt.Errorf("failed to insert column %q: %w", name, err)
		}
	}

	rowStmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO observations (id, vals) VALUES (?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare observation insert: %w", err)
	}
	defer rowStmt.Close()

	for i := 0; i < t.Len(); i++ {
		raw, err := json.Marshal(t.Row(i).Values())
		if err != nil {
			return fmt.Errorf("failed to encode observation %d: %w", i+1, err)
		}
		if _, err := rowStmt.ExecContext(ctx, i+1, string(raw)); err != nil {
			return fmt.Errorf("failed to insert observation %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
