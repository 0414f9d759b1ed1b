// Package autostart registers focusfollow to start at user login.
//
// Platform mechanisms:
//   - Windows: a value under HKCU\Software\Microsoft\Windows\CurrentVersion\Run
//   - macOS:   a LaunchAgent plist in ~/Library/LaunchAgents
//   - others:  an XDG autostart desktop entry in $XDG_CONFIG_HOME/autostart
//
// Registration is per user; nothing here needs elevated privileges.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName is the name registered with the platform.
const AppName = "focusfollow"

// Manager provides platform-specific autostart registration.
type Manager interface {
	// IsEnabled reports whether the app is registered to start at login.
	IsEnabled() (bool, error)

	// Enable registers execPath to start at login, replacing any
	// existing registration.
	Enable(execPath string) error

	// Disable removes the registration. Disabling an unregistered app
	// is not an error.
	Disable() error

	// Location describes where the registration lives.
	Location() string
}

// New returns the Manager for the running platform.
func New() (Manager, error) {
	return newPlatformManager(AppName)
}

// Sync brings the registration in line with want.
func Sync(m Manager, want bool, execPath string) error {
	enabled, err := m.IsEnabled()
	if err != nil {
		return err
	}
	switch {
	case want && !enabled:
		return m.Enable(execPath)
	case !want && enabled:
		return m.Disable()
	}
	return nil
}

// Executable returns the absolute, symlink-resolved path of the running
// binary, suitable for passing to Enable.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("autostart: locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Abs(exe)
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("autostart: create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("autostart: write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("autostart: replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// removeFile deletes path, treating a missing file as success.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("autostart: remove %s: %w", filepath.Base(path), err)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("autostart: stat %s: %w", filepath.Base(path), err)
	}
}
