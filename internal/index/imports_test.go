package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportNote_Lifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	target := mustNote(t, db, nil, "target", "")

	f := ImportFile{Path: "a.md", Checksum: "1", Title: "A", Content: "links to " + ref(target)}
	res, err := db.ImportNote(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, ImportCreated, res.Status)
	id := res.Note.ID

	back, err := db.GetBacklinks(ctx, target)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, id, back[0].SourceID)

	res, err = db.ImportNote(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, ImportUnchanged, res.Status)
	assert.Equal(t, id, res.Note.ID)

	f.Checksum, f.Content = "2", "no links now"
	res, err = db.ImportNote(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, ImportUpdated, res.Status)
	assert.Equal(t, id, res.Note.ID)
	assert.Equal(t, "no links now", res.Note.Content)

	back, err = db.GetBacklinks(ctx, target)
	require.NoError(t, err)
	assert.Empty(t, back)

	sums, err := db.ImportedChecksums(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.md": "2"}, sums)
}

func TestImportNote_RecreatesDeletedNote(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	f := ImportFile{Path: "a.md", Checksum: "1", Title: "A", Content: "x"}
	res, err := db.ImportNote(ctx, f)
	require.NoError(t, err)
	require.NoError(t, db.DeleteNote(ctx, res.Note.ID))

	again, err := db.ImportNote(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, ImportCreated, again.Status)
	assert.NotEqual(t, res.Note.ID, again.Note.ID)
}
