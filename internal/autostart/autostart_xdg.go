//go:build !windows && !darwin

package autostart

func newPlatformManager(name string) (Manager, error) {
	return NewDesktopEntry(XDGAutostartDir(), name), nil
}
