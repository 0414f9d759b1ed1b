//go:build unix

package instance

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "focusfollow.lock")

	first, err := acquireFile(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	_, err = acquireFile(path)
	assert.True(t, errors.Is(err, ErrAlreadyRunning), "got %v", err)

	require.NoError(t, first.Release())

	again, err := acquireFile(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestLockDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000", lockDir())

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Equal(t, os.TempDir(), lockDir())
}
