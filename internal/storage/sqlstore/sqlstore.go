// Package sqlstore provides a relational implementation of storage.Store
// on top of Go's standard database/sql package.
//
// TWO DRIVERS, ONE CODE PATH
// ──────────────────────────
// The same queries run against SQLite (github.com/mattn/go-sqlite3,
// driver name "sqlite3") and PostgreSQL (github.com/jackc/pgx/v5/stdlib,
// driver name "pgx"). Queries are written once with ? placeholders and
// rewritten to $1, $2, ... when talking to PostgreSQL.
//
// SCHEMA
// ──────
// Tables are created by goose migrations embedded in the binary, one
// directory per dialect under migrations/. New() applies every pending
// migration before returning, so a fresh database is usable immediately
// and an existing one is upgraded in place.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	// Registers the "pgx" driver with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// sqliteUnicodeDriver is go-sqlite3 with lower() replaced by a Unicode
// aware version. SQLite's built-in lower() only folds ASCII, which breaks
// case-insensitive search on names such as "Lê Văn Ánh".
const sqliteUnicodeDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteUnicodeDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

//go:embed migrations
var migrations embed.FS

// Options selects and locates the database.
type Options struct {
	// Driver is DriverSQLite or DriverPostgres.
	Driver string
	// DSN is a file path for SQLite or a connection URL for PostgreSQL.
	DSN string
}

type dialect struct {
	driver     string // name registered with database/sql
	goose      goose.Dialect
	migrations string
	numbered   bool // $n placeholders instead of ?
}

var dialects = map[string]dialect{
	DriverSQLite:   {driver: sqliteUnicodeDriver, goose: goose.DialectSQLite3, migrations: "migrations/sqlite3"},
	DriverPostgres: {driver: DriverPostgres, goose: goose.DialectPostgres, migrations: "migrations/postgres", numbered: true},
}

// SQLStore is the concrete implementation of storage.Store.
// The embedded *sql.DB is a connection pool and is safe for concurrent use.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// New opens the database described by opts, checks it is reachable and
// migrates the schema to the latest version.
func New(ctx context.Context, opts Options) (*SQLStore, error) {
	d, ok := dialects[opts.Driver]
	if !ok {
		return nil, fmt.Errorf("sqlstore.New: unsupported driver %q", opts.Driver)
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, errors.New("sqlstore.New: empty dsn")
	}

	// sql.Open only validates its arguments; PingContext makes the first
	// real connection.
	db, err := sql.Open(d.driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.New: open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore.New: ping: %w", err)
	}

	if err := migrate(ctx, db, d); err != nil {
		db.Close()
		return nil, err
	}

	// SQLite allows one writer at a time. A single connection serialises
	// writes inside the pool instead of surfacing SQLITE_BUSY.
	if opts.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return &SQLStore{db: db, dialect: d, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB, d dialect) error {
	fsys, err := fs.Sub(migrations, d.migrations)
	if err != nil {
		return fmt.Errorf("sqlstore.migrate: %w", err)
	}
	provider, err := goose.NewProvider(d.goose, db, fsys)
	if err != nil {
		return fmt.Errorf("sqlstore.migrate: new provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("sqlstore.migrate: up: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases every pooled connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Query helpers
// ─────────────────────────────────────────────────────────────────────────────

// rebind rewrites ? placeholders for dialects that number them.
func (s *SQLStore) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// execOne runs a statement that must touch exactly one row. It reports
// false when no row matched.
func (s *SQLStore) execOne(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// collect scans every row of rows with scan. The result is never nil.
func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// isUniqueViolation reports whether err is a primary-key or unique
// constraint failure on either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// likePattern builds a case-insensitive LIKE pattern matching sub
// anywhere, with LIKE metacharacters in sub taken literally.
func likePattern(sub string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(sub)) + "%"
}
