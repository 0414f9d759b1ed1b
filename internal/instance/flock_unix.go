//go:build unix

package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lockDir returns $XDG_RUNTIME_DIR when set, the temp dir otherwise.
func lockDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// acquireFile takes an exclusive, non-blocking flock on path. The lock
// lives as long as the open file description, so a crashed process
// never leaves it held.
func acquireFile(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("instance: create lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("instance: open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("instance: flock: %w", err)
	}

	f.Truncate(0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	return newLock(func() error {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		return f.Close()
	}), nil
}
