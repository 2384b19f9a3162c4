package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mdnote/internal/apperr"
)

func TestSearch_RanksAndHighlights(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	weak := mustNote(t, db, nil, "Groceries", "buy milk and a rust-proof pan, also more milk")
	strong := mustNote(t, db, nil, "Rust notes", "rust ownership, rust borrowing, rust lifetimes")
	mustNote(t, db, nil, "Unrelated", "nothing here")

	res, err := db.Search(ctx, "rust", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, strong, res[0].ID)
	assert.Equal(t, weak, res[1].ID)
	assert.LessOrEqual(t, res[0].Rank, res[1].Rank)
	assert.Contains(t, strings.ToLower(res[0].Snippet), SnippetOpen+"rust"+SnippetClose)
}

func TestSearch_TitleOnlyMatch(t *testing.T) {
	db := testDB(t)
	id := mustNote(t, db, nil, "Zeppelin", "body without the word")

	res, err := db.Search(context.Background(), "zeppelin", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, id, res[0].ID)
	assert.Equal(t, "Zeppelin", res[0].Title)
}

func TestSearch_Limit(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 5; i++ {
		mustNote(t, db, nil, "n", "common")
	}
	res, err := db.Search(context.Background(), "common", 3)
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestSearch_BlankQuery(t *testing.T) {
	db := testDB(t)
	mustNote(t, db, nil, "n", "text")
	res, err := db.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestSearch_MalformedQuery(t *testing.T) {
	db := testDB(t)
	mustNote(t, db, nil, "n", "text")

	for _, q := range []string{`"unterminated`, `AND`, `(`, `nosuchcol:text`, `*`, `**`, `NEAR(alpha beta, x)`} {
		_, err := db.Search(context.Background(), q, 10)
		require.Error(t, err, q)
		assert.True(t, errors.Is(err, apperr.ErrQuerySyntax), "%q: %v", q, err)
		assert.Equal(t, apperr.KindQuerySyntax, apperr.KindOf(err), q)
	}
}

func TestSearchErr_OtherFailuresStayStorage(t *testing.T) {
	err := searchErr("index: search", errors.New("disk I/O error"))
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	assert.False(t, errors.Is(err, apperr.ErrQuerySyntax))
}

func TestRebuildSearchIndex(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := mustNote(t, db, nil, "n", "recoverable")
	_, err := db.conn.Exec(`DELETE FROM notes_fts`)
	require.NoError(t, err)

	res, err := db.Search(ctx, "recoverable", 10)
	require.NoError(t, err)
	assert.Empty(t, res)

	n, err := db.RebuildSearchIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err = db.Search(ctx, "recoverable", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, id, res[0].ID)
}
