package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps a sqlx.DB with portfolio-specific helpers. Queries are written
// with '?' placeholders and rebound for the active driver.
type DB struct {
	*sqlx.DB
	driver string
}

// Open connects to the portfolio store and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite && dsn == ":memory:" {
		// Each sqlite connection to :memory: is its own database.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, driver: driver}
	if err := d.migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	return Open(context.Background(), DriverSQLite, ":memory:")
}

// Wrap adopts an existing connection without running migrations. Tests use
// it with sqlmock.
func Wrap(sqlDB *sqlx.DB, driver string) *DB {
	return &DB{DB: sqlDB, driver: driver}
}

// Driver returns the driver name the database was opened with.
func (d *DB) Driver() string { return d.driver }

// Q rebinds a '?' query for the active driver.
func (d *DB) Q(query string) string {
	if d.driver == DriverPostgres {
		return sqlx.Rebind(sqlx.DOLLAR, query)
	}
	return query
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// schema is portable between sqlite and postgres. Money columns are NUMERIC
// and scanned into decimal.Decimal; calendar dates are ISO-8601 TEXT.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    area TEXT NOT NULL DEFAULT '',
    business_unit TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT 'capex',
    status TEXT NOT NULL DEFAULT 'active',
    manager TEXT NOT NULL DEFAULT '',
    budget NUMERIC(18,2) NOT NULL DEFAULT 0,
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT '',
    progress_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
    planned_progress_pct DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    project_code TEXT NOT NULL REFERENCES projects(code),
    date TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL DEFAULT 'realized',
    description TEXT NOT NULL DEFAULT '',
    account TEXT NOT NULL DEFAULT '',
    supplier TEXT NOT NULL DEFAULT '',
    amount NUMERIC(18,2) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_transactions_project ON transactions(project_code);

CREATE TABLE IF NOT EXISTS baselines (
    id TEXT PRIMARY KEY,
    project_code TEXT NOT NULL REFERENCES projects(code),
    version INTEGER NOT NULL DEFAULT 1,
    approved_budget NUMERIC(18,2) NOT NULL DEFAULT 0,
    approved_at TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'approved',
    scope TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_baselines_project ON baselines(project_code);

CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    doc_type TEXT NOT NULL DEFAULT '',
    project_code TEXT NOT NULL DEFAULT '',
    area TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ai_interactions (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    use_case TEXT NOT NULL,
    prompt TEXT NOT NULL DEFAULT '',
    outcome TEXT NOT NULL,
    error_kind TEXT NOT NULL DEFAULT '',
    error_message TEXT NOT NULL DEFAULT '',
    schema_errors TEXT NOT NULL DEFAULT '',
    provider TEXT NOT NULL DEFAULT '',
    model TEXT NOT NULL DEFAULT '',
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    cost_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
    latency_ms INTEGER NOT NULL DEFAULT 0,
    response TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_ai_interactions_created ON ai_interactions(created_at);
`
