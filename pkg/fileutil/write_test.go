package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.toml")
	assert.False(t, Exists(path))

	require.NoError(t, WriteFileOverwrite(path, []byte("first version"), 0o600))
	require.NoError(t, WriteFileOverwrite(path, []byte("second"), 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
	assert.True(t, Exists(path))
}
