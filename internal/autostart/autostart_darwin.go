//go:build darwin

package autostart

func newPlatformManager(name string) (Manager, error) {
	return NewLaunchAgent(LaunchAgentsDir(), "io.github."+name), nil
}
