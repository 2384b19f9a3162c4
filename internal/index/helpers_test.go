package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	fixedA = "01HZX3K4M5N6P7Q8R9S0T1V2W3"
	fixedB = "01J0ABCDEFGHJKMNPQRSTVWXYZ"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeClock makes db.now return start, start+1, start+2, ...
func fakeClock(db *DB, start int64) {
	t := start - 1
	db.now = func() int64 {
		t++
		return t
	}
}

func mustNote(t *testing.T, db *DB, folderID *string, title, content string) string {
	t.Helper()
	n, err := db.CreateNote(context.Background(), folderID, title, content)
	require.NoError(t, err)
	return n.ID
}

func ref(id string) string { return "[[" + id + "]]" }

func ptr[T any](v T) *T { return &v }
