package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	assert.Equal(t, empty, Sum(nil))
	assert.NotEqual(t, Sum([]byte("a")), Sum([]byte("b")))
}

func TestSumFile_MatchesSum(t *testing.T) {
	data := []byte("# Title\n\nbody\n")
	path := filepath.Join(t.TempDir(), "n.md")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := SumFile(path)
	require.NoError(t, err)
	assert.Equal(t, Sum(data), got)

	_, err = SumFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
