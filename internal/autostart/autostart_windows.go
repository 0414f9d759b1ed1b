//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// RegistryRun registers the app as a value under the current user's Run key.
type RegistryRun struct {
	name string
}

func newPlatformManager(name string) (Manager, error) {
	return &RegistryRun{name: name}, nil
}

// Location returns the registry path of the value.
func (r *RegistryRun) Location() string {
	return `HKCU\` + runKey + `\` + r.name
}

// IsEnabled reports whether the Run value exists.
func (r *RegistryRun) IsEnabled() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("autostart: open run key: %w", err)
	}
	defer k.Close()

	if _, _, err := k.GetStringValue(r.name); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("autostart: read run value: %w", err)
	}
	return true, nil
}

// Enable writes the quoted executable path as the Run value.
func (r *RegistryRun) Enable(execPath string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("autostart: open run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(r.name, `"`+execPath+`"`); err != nil {
		return fmt.Errorf("autostart: write run value: %w", err)
	}
	return nil
}

// Disable deletes the Run value.
func (r *RegistryRun) Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("autostart: open run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(r.name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("autostart: delete run value: %w", err)
	}
	return nil
}
