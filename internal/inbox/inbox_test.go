package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mdnote/internal/index"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/internal/testutil"
)

func TestSplitTitle(t *testing.T) {
	cases := []struct {
		name, rel, data, title, content string
	}{
		{"heading", "a.md", "# Hello\n\nbody", "Hello", "body"},
		{"crlf", "a.md", "# Hello\r\n\r\nbody", "Hello", "body"},
		{"bom", "a.md", "\ufeff# Hello\nbody", "Hello", "body"},
		{"no heading", "dir/My Note.md", "just text", "My Note", "just text"},
		{"h2 is not a title", "x.md", "## Sub\ntext", "x", "## Sub\ntext"},
		{"empty heading", "x.md", "# \ntext", "x", "# \ntext"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, content := splitTitle(tc.rel, tc.data)
			assert.Equal(t, tc.title, title)
			assert.Equal(t, tc.content, content)
		})
	}
}

func TestScan_ImportsChangedFilesOnly(t *testing.T) {
	db := testutil.TestDB(t)
	dir, store := testutil.TestInbox(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.md"), []byte("# One\nfirst"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "two.md"), []byte("second"), 0o644))

	var events []string
	im := NewImporter(db, store, testutil.Logger(), func(kind string, n *models.Note) {
		events = append(events, kind+":"+n.Title)
	})

	n, err := im.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"created:One", "created:two"}, events)

	n, err = im.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "unchanged files are skipped")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.md"), []byte("# One\nedited"), 0o644))
	n, err = im.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "updated:One", events[len(events)-1])

	hits, err := db.Search(ctx, "edited", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestWatch_ImportsNewFiles(t *testing.T) {
	db := testutil.TestDB(t)
	dir, store := testutil.TestInbox(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		events []string
	)
	im := NewImporter(db, store, testutil.Logger(), func(kind string, n *models.Note) {
		mu.Lock()
		events = append(events, kind+":"+n.Title)
		mu.Unlock()
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = im.Watch(ctx, store)
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.md"), []byte("# Fresh\nwatched content"), 0o644))

	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:Fresh" {
				return true
			}
		}
		return false
	}, "new file not imported by watcher")

	sub := filepath.Join(dir, "later")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep\nx"), 0o644))

	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		sums, err := db.ImportedChecksums(context.Background())
		return err == nil && sums["later/deep.md"] != ""
	}, "file in new subdir not imported")

	cancel()
	<-done
}

func TestWatch_SkipsHiddenFiles(t *testing.T) {
	db := testutil.TestDB(t)
	dir, store := testutil.TestInbox(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	im := NewImporter(db, store, testutil.Logger(), nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = im.Watch(ctx, store)
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".draft.md"), []byte("# Draft\nx"), 0o644))
	hidden := filepath.Join(dir, ".obsidian")
	require.NoError(t, os.MkdirAll(hidden, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(hidden, "x.md"), []byte("# Hidden\nx"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.md"), []byte("# Visible\nx"), 0o644))

	var sums map[string]string
	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		var err error
		sums, err = db.ImportedChecksums(context.Background())
		return err == nil && sums["visible.md"] != ""
	}, "visible file not imported")

	cancel()
	<-done

	assert.NotContains(t, sums, ".draft.md")
	assert.NotContains(t, sums, ".obsidian/x.md")
}

func TestExport_RoundTrip(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	parent, err := db.CreateFolder(ctx, "Work", nil)
	require.NoError(t, err)
	child, err := db.CreateFolder(ctx, "Q/3", &parent.ID)
	require.NoError(t, err)
	_, err = db.CreateNote(ctx, nil, "Root note", "at the root")
	require.NoError(t, err)
	_, err = db.CreateNote(ctx, &child.ID, "Plan", "ship it")
	require.NoError(t, err)
	_, err = db.CreateNote(ctx, &child.ID, "Plan", "duplicate title")
	require.NoError(t, err)

	_, out := testutil.TestInbox(t)
	n, err := Export(ctx, db, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := out.Read("Root note.md")
	require.NoError(t, err)
	assert.Equal(t, "# Root note\n\nat the root", string(data))

	metas, err := out.List("Work/Q-3")
	require.NoError(t, err)
	assert.Len(t, metas, 2)

	// Importing the export into a fresh database restores titles and content.
	fresh := testutil.TestDB(t)
	im := NewImporter(fresh, out, testutil.Logger(), nil)
	imported, err := im.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	items, _, err := fresh.ListNotes(ctx, index.NoteFilter{})
	require.NoError(t, err)
	titles := map[string]bool{}
	for _, s := range items {
		titles[s.Title] = true
	}
	assert.True(t, titles["Root note"])
	assert.True(t, titles["Plan"])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a-b", fileName("a/b"))
	assert.Equal(t, "untitled", fileName("  ..  "))
	assert.Equal(t, "日記", fileName("日記"))
}
