package index

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mdnote/internal/apperr"
)

func TestOpen_CreatesDirAndSchema(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	db, err := Open(dir)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, filepath.Join(dir, FileName), db.Path())

	for _, table := range []string{"notes", "folders", "tags", "note_tags", "notes_fts", "backlinks", "settings", "imports"} {
		var n int
		err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&n)
		assert.NoError(t, err, "table %s", table)
	}

	var fk int
	require.NoError(t, db.conn.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, db.conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_PragmasSurviveReconnect(t *testing.T) {
	db := testDB(t)

	// With no idle connections every query dials a fresh one.
	db.conn.SetMaxIdleConns(0)
	for i := 0; i < 2; i++ {
		var fk, busy int
		require.NoError(t, db.conn.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
		assert.Equal(t, 1, fk)
		require.NoError(t, db.conn.QueryRow(`PRAGMA busy_timeout`).Scan(&busy))
		assert.Equal(t, busyTimeoutMS, busy)
	}
}

func TestDSN_PerDriver(t *testing.T) {
	assert.Contains(t, dsn(DriverModernc, "/d/x.db"), "_pragma=foreign_keys(1)")
	assert.Contains(t, dsn(DriverMattn, "/d/x.db"), "_foreign_keys=on")
	assert.Contains(t, dsn(DriverMattn, "/d/x.db"), "_busy_timeout=5000")
}

func TestOpen_MigrationsRunOnce(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	require.NoError(t, err)
	v1, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	var rows1 int
	require.NoError(t, db.conn.QueryRow(`SELECT count(*) FROM _migrations`).Scan(&rows1))
	mustNote(t, db, nil, "kept", "survives reopen")
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	v2, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	var rows2 int
	require.NoError(t, db.conn.QueryRow(`SELECT count(*) FROM _migrations`).Scan(&rows2))

	all, err := loadMigrations(migrationFiles, migrationsDir)
	require.NoError(t, err)
	assert.Equal(t, len(all), v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, rows1, rows2)

	_, total, err := db.ListNotes(ctx, NoteFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestLoadMigrations_RejectsGap(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_first.sql": {Data: []byte(`CREATE TABLE a (x INTEGER);`)},
		"m/003_third.sql": {Data: []byte(`CREATE TABLE c (x INTEGER);`)},
	}
	_, err := loadMigrations(fsys, "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected version 2")
}

func TestLoadMigrations_RejectsBadName(t *testing.T) {
	fsys := fstest.MapFS{
		"m/first.sql": {Data: []byte(`SELECT 1;`)},
	}
	_, err := loadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestApplyMigrations_FailureRollsBack(t *testing.T) {
	conn, err := sql.Open(DriverModernc, filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer conn.Close()
	conn.SetMaxOpenConns(1)

	ms := []migration{
		{version: 1, name: "001_ok.sql", sql: `CREATE TABLE a (x INTEGER);`},
		{version: 2, name: "002_bad.sql", sql: `CREATE TABLE partial (x INTEGER); INSERT INTO missing VALUES (1);`},
	}
	err = applyMigrations(conn, ms, slog.Default())
	require.Error(t, err)

	var versions []int
	rows, err := conn.Query(`SELECT version FROM _migrations ORDER BY version`)
	require.NoError(t, err)
	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		versions = append(versions, v)
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, []int{1}, versions)

	var n int
	err = conn.QueryRow(`SELECT count(*) FROM sqlite_master WHERE name = 'partial'`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n, "failed migration must not leave partial tables")
}

func TestLock_ContextExpiresWhileHeld(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.sem.Acquire(context.Background(), 1))
	defer db.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := db.GetNote(ctx, fixedA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrLock))
	assert.Equal(t, apperr.KindLock, apperr.KindOf(err))
}

func TestLock_ClosedHandle(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "close is idempotent")

	_, err = db.CreateNote(context.Background(), nil, "t", "c")
	assert.True(t, errors.Is(err, apperr.ErrLock))
}

type recordingObserver struct {
	ops []string
}

func (r *recordingObserver) ObserveLockWait(string, time.Duration) {}
func (r *recordingObserver) ObserveOp(op string, _ time.Duration, _ error) {
	r.ops = append(r.ops, op)
}

func TestObserver_SeesOperations(t *testing.T) {
	obs := &recordingObserver{}
	db, err := Open(t.TempDir(), WithObserver(obs))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"index: list tags"}, obs.ops)
}
