//go:build windows

package instance

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// MutexName returns the session-local mutex name used for name.
func MutexName(name string) string {
	return `Local\` + name + `-instance`
}

// Acquire claims the single-instance lock for name.
func Acquire(name string) (*Lock, error) {
	ptr, err := windows.UTF16PtrFromString(MutexName(name))
	if err != nil {
		return nil, fmt.Errorf("instance: mutex name: %w", err)
	}

	h, err := windows.CreateMutex(nil, false, ptr)
	if err != nil {
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			if h != 0 {
				windows.CloseHandle(h)
			}
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("instance: create mutex: %w", err)
	}

	return newLock(func() error {
		return windows.CloseHandle(h)
	}), nil
}
