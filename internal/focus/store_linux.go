//go:build linux

package focus

import (
	"fmt"
	"os"
	"os/exec"
)

// NewSystemStore returns the Store for the running desktop. Only GNOME on
// X11 is supported: Wayland compositors do not let clients move the
// pointer.
func NewSystemStore() (Store, error) {
	if _, err := exec.LookPath("gsettings"); err != nil {
		return nil, fmt.Errorf("%w: gsettings not found", ErrUnsupportedPlatform)
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" && os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("%w: Wayland session without X11", ErrUnsupportedPlatform)
	}
	return NewGSettingsStore(ExecRunner{}), nil
}
