// Package index is the SQLite-backed storage core: versioned schema
// migrations, note/folder/tag CRUD, the FTS5 search index, and the note
// link graph.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/semaphore"
	_ "modernc.org/sqlite"

	"github.com/starford/mdnote/internal/apperr"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go, FTS5 built in
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3, needs -tags sqlite_fts5
)

// FileName is the database file created inside the storage directory.
const FileName = "mdnote.db"

// busyTimeoutMS bounds how long a statement waits on a lock held by another
// process (the single in-process writer never contends with itself).
const busyTimeoutMS = 5000

var errClosed = errors.New("database is closed")

// Observer receives timing for every public operation. Implementations must
// be safe for concurrent use.
type Observer interface {
	ObserveLockWait(op string, wait time.Duration)
	ObserveOp(op string, took time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveLockWait(string, time.Duration)    {}
func (nopObserver) ObserveOp(string, time.Duration, error) {}

// Option configures Open.
type Option func(*options)

type options struct {
	driver   string
	logger   *slog.Logger
	observer Observer
}

// WithDriver selects the SQL driver (DriverModernc or DriverMattn).
func WithDriver(name string) Option {
	return func(o *options) {
		if name != "" {
			o.driver = name
		}
	}
}

// WithLogger sets the logger used for migrations and maintenance.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver installs an operation observer, e.g. Prometheus metrics.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// DB is the single shared storage handle. Every public method acquires
// exclusive access for its duration; callers never see the lock.
type DB struct {
	conn   *sql.DB
	path   string
	sem    *semaphore.Weighted
	closed atomic.Bool
	logger *slog.Logger
	obs    Observer
	now    func() int64
}

// Open ensures dir exists, opens (or creates) the database file inside it,
// enables WAL and foreign keys, and applies pending migrations.
func Open(dir string, opts ...Option) (*DB, error) {
	o := options{
		driver:   DriverModernc,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.IO("index: create storage dir", err)
	}
	path := filepath.Join(dir, FileName)

	conn, err := sql.Open(o.driver, dsn(o.driver, path))
	if err != nil {
		return nil, apperr.Storage("index: open db", err)
	}
	// One connection: the handle is a single logical writer. Pragmas live
	// in the DSN so a replacement connection gets them too.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, apperr.IO("index: open db file", err)
	}
	if err := checkPragmas(conn); err != nil {
		conn.Close()
		return nil, apperr.Storage("index: pragmas", err)
	}

	migrations, err := loadMigrations(migrationFiles, migrationsDir)
	if err != nil {
		conn.Close()
		return nil, apperr.Storage("index: load migrations", err)
	}
	if err := applyMigrations(conn, migrations, o.logger); err != nil {
		conn.Close()
		return nil, apperr.Storage("index: migrate", err)
	}

	return &DB{
		conn:   conn,
		path:   path,
		sem:    semaphore.NewWeighted(1),
		logger: o.logger,
		obs:    o.observer,
		now:    func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// dsn appends the per-connection pragmas in the form each driver parses.
func dsn(driver, path string) string {
	if driver == DriverMattn {
		return fmt.Sprintf("%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL", path, busyTimeoutMS)
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path, busyTimeoutMS)
}

// checkPragmas fails Open when the driver ignored the DSN pragmas.
func checkPragmas(conn *sql.DB) error {
	var fk int
	if err := conn.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		return fmt.Errorf("foreign_keys: %w", err)
	}
	if fk != 1 {
		return errors.New("foreign_keys: not enabled")
	}
	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		return fmt.Errorf("journal_mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("journal_mode: got %q, want wal", mode)
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close waits for the in-flight operation, then closes the connection.
// Later calls on the handle fail with a lock error. Close is idempotent.
func (db *DB) Close() error {
	if err := db.sem.Acquire(context.Background(), 1); err != nil {
		return apperr.Lock("index: close", err)
	}
	defer db.sem.Release(1)
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	return db.conn.Close()
}

// do runs fn while holding exclusive access. Acquisition is the only step
// that honours ctx; once acquired, fn runs to completion.
func (db *DB) do(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	if db.closed.Load() {
		return apperr.Lock(op, errClosed)
	}
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return apperr.Lock(op, err)
	}
	defer db.sem.Release(1)
	if db.closed.Load() {
		return apperr.Lock(op, errClosed)
	}
	db.obs.ObserveLockWait(op, time.Since(start))

	err := fn()
	db.obs.ObserveOp(op, time.Since(start), err)
	return err
}

// locked is the value-returning form of DB.do.
func locked[T any](ctx context.Context, db *DB, op string, fn func() (T, error)) (T, error) {
	var out T
	err := db.do(ctx, op, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (db *DB) inTx(op string, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return apperr.Storage(op+": begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return apperr.Storage(op, err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Storage(op+": commit", err)
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return locked(ctx, db, "index: schema version", func() (int, error) {
		var v sql.NullInt64
		if err := db.conn.QueryRow(`SELECT MAX(version) FROM _migrations`).Scan(&v); err != nil {
			return 0, apperr.Storage("index: schema version", err)
		}
		return int(v.Int64), nil
	})
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
