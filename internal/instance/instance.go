// Package instance keeps a single copy of focusfollow running per user
// session.
//
// Linux claims a well-known name on the D-Bus session bus and falls back
// to a lock file when no bus is reachable. Windows uses a named mutex and
// other Unix systems use flock(2).
package instance

import (
	"errors"
	"sync"
)

// ErrAlreadyRunning is returned by Acquire when another process holds the lock.
var ErrAlreadyRunning = errors.New("instance: another instance is already running")

// Lock is a held single-instance lock.
type Lock struct {
	once    sync.Once
	err     error
	release func() error
}

func newLock(release func() error) *Lock {
	return &Lock{release: release}
}

// Release gives up the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	l.once.Do(func() {
		l.err = l.release()
	})
	return l.err
}
