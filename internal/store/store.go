package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 5 * time.Minute

	defaultPostgresMaxConns = 4
)

// Dialect selects the SQL flavour and database/sql driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a configured storage driver name.
func ParseDialect(raw string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DialectSQLite:
		return DialectSQLite, nil
	case DialectPostgres, "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported storage driver: %s", raw)
	}
}

// Options selects and configures the backing database.
type Options struct {
	Dialect  Dialect
	Path     string // sqlite file path
	DSN      string // postgres connection string
	MaxConns int
}

// Store wraps the work-management database.
type Store struct {
	queries
	conn *sql.DB
}

// Open opens the SQLite database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	return OpenWithOptions(context.Background(), Options{Dialect: DialectSQLite, Path: path})
}

// OpenWithOptions opens the configured database and applies pending migrations.
func OpenWithOptions(ctx context.Context, opts Options) (*Store, error) {
	if opts.Dialect == "" {
		opts.Dialect = DialectSQLite
	}
	db, err := OpenRawDB(opts)
	if err != nil {
		return nil, err
	}

	if err := configureDB(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db, opts.Dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{queries: queries{db: db, dialect: opts.Dialect}, conn: db}, nil
}

// OpenRawDB opens the database without configuring or migrating it.
func OpenRawDB(opts Options) (*sql.DB, error) {
	switch opts.Dialect {
	case DialectSQLite, "":
		dsn, err := sqliteDSN(opts.Path)
		if err != nil {
			return nil, err
		}
		return sql.Open("sqlite", dsn)
	case DialectPostgres:
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
		return sql.Open("pgx", opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.Dialect)
	}
}

// Dialect reports the SQL flavour in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// WithTx runs fn inside a transaction, committing on success and rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(Queries) error) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(queries{db: tx, dialect: s.dialect}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// MigrationPlan reports migration status for this store's database.
func (s *Store) MigrationPlan(ctx context.Context) (*MigrationStatus, error) {
	return MigrationPlan(ctx, s.conn, s.dialect)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func configureDB(ctx context.Context, db *sql.DB, opts Options) error {
	if opts.Dialect == DialectPostgres {
		conns := opts.MaxConns
		if conns <= 0 {
			conns = defaultPostgresMaxConns
		}
		db.SetMaxOpenConns(conns)
		db.SetMaxIdleConns(conns)
		db.SetConnMaxLifetime(connMaxLifetime)
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		return nil
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// Tune connection pool for local usage.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements Queries against a connection pool or an open transaction.
type queries struct {
	db      querier
	dialect Dialect
}

func (q queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.rebind(query), args...)
}

func (q queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.rebind(query), args...)
}

func (q queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.rebind(query), args...)
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func (q queries) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := q.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (q queries) rebind(query string) string {
	return rebind(q.dialect, query)
}

func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
