package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/checksum"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	f, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return f
}

func TestWriteAndRead(t *testing.T) {
	s := tempFS(t)
	content := []byte("# Hello\nWorld\n")
	require.NoError(t, s.Write("note.md", content))

	got, err := s.Read("note.md")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempFS(t)
	require.NoError(t, s.Write("a/b/c.md", []byte("deep")))

	got, err := s.Read("a/b/c.md")
	require.NoError(t, err)
	assert.Equal(t, "deep", string(got))
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempFS(t)
	require.NoError(t, s.Write("x.md", []byte("x")))

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.md", entries[0].Name())
}

func TestList(t *testing.T) {
	s := tempFS(t)
	require.NoError(t, s.Write("a.md", []byte("a")))
	require.NoError(t, s.Write("sub/b.md", []byte("b")))
	require.NoError(t, s.Write("skip.txt", []byte("c")))
	require.NoError(t, s.Write(".hidden/d.md", []byte("d")))

	metas, err := s.List("")
	require.NoError(t, err)
	paths := make([]string, len(metas))
	for i, m := range metas {
		paths[i] = m.Path
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"a.md", "sub/b.md"}, paths)

	for _, m := range metas {
		if m.Path == "a.md" {
			assert.Equal(t, checksum.Sum([]byte("a")), m.Checksum)
		}
	}
}

func TestPathTraversalRejected(t *testing.T) {
	s := tempFS(t)
	for _, p := range []string{"../escape.md", "a/../../escape.md", "/etc/passwd"} {
		_, err := s.Read(p)
		assert.True(t, errors.Is(err, apperr.ErrInvalid), p)
		assert.True(t, errors.Is(s.Write(p, []byte("x")), apperr.ErrInvalid), p)
	}
}

func TestReadMissing(t *testing.T) {
	s := tempFS(t)
	_, err := s.Read("nope.md")
	assert.True(t, errors.Is(err, apperr.ErrIO))
}

func TestRel(t *testing.T) {
	s := tempFS(t)
	rel, ok := s.Rel(filepath.Join(s.Root(), "sub", "n.md"))
	require.True(t, ok)
	assert.Equal(t, "sub/n.md", rel)

	_, ok = s.Rel(filepath.Dir(s.Root()))
	assert.False(t, ok)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(".draft.md"))
	assert.True(t, IsHidden(".obsidian/x.md"))
	assert.True(t, IsHidden("a/.trash/b.md"))
	assert.False(t, IsHidden("a/b.md"))
	assert.False(t, IsHidden("."))
	assert.False(t, IsHidden("notes.v2.md"))
}
