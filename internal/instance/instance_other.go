//go:build unix && !linux

package instance

import "path/filepath"

// Acquire claims the single-instance lock for name.
func Acquire(name string) (*Lock, error) {
	return acquireFile(filepath.Join(lockDir(), name+".lock"))
}
