// Package testutil provides shared test helpers for setting up databases and
// inbox directories.
package testutil

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/mdnote/internal/index"
	"github.com/starford/mdnote/internal/storage"
)

// TestDB opens a database in a temporary directory that is removed with the test.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(t.TempDir(), index.WithLogger(Logger()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestInbox creates a temporary directory with a storage.FS on top of it.
func TestInbox(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Logger returns a logger that only prints errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
