package index

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_RebuildsDerivedData(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	b := mustNote(t, db, nil, "B", "searchable")
	mustNote(t, db, nil, "A", ref(b))
	_, err := db.conn.Exec(`DELETE FROM notes_fts`)
	require.NoError(t, err)

	st, err := Sync(ctx, db, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Indexed: 2, Links: 1}, st)

	hits, err := db.Search(ctx, "searchable", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
