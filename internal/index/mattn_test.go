//go:build sqlite_fts5

package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mdnote/internal/apperr"
)

func TestMattnDriver_SearchAndLinks(t *testing.T) {
	db, err := Open(t.TempDir(), WithDriver(DriverMattn))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	b := mustNote(t, db, nil, "B", "powerful full-text search")
	a := mustNote(t, db, nil, "A", "")
	_, err = db.SyncBacklinks(ctx, a, "see "+ref(b))
	require.NoError(t, err)

	res, err := db.Search(ctx, "powerful", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Contains(t, res[0].Snippet, "==powerful==")

	back, err := db.GetBacklinks(ctx, b)
	require.NoError(t, err)
	assert.Len(t, back, 1)

	for _, q := range []string{`*`, `NEAR(alpha beta, x)`, `"open`} {
		_, err := db.Search(ctx, q, 10)
		assert.Equal(t, apperr.KindQuerySyntax, apperr.KindOf(err), q)
	}

	var fk int
	require.NoError(t, db.conn.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}
