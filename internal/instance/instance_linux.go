//go:build linux

package instance

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

// BusName returns the session-bus name claimed for name.
func BusName(name string) string {
	return "io.github." + name + ".Instance"
}

// Acquire claims the single-instance lock for name.
func Acquire(name string) (*Lock, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		slog.Debug("session bus unavailable, using lock file", "error", err)
		return acquireFile(filepath.Join(lockDir(), name+".lock"))
	}
	return acquireBusName(conn, BusName(name))
}

// acquireBusName requests busName on conn without queueing. The name is
// dropped by the bus when conn closes, including on crash.
func acquireBusName(conn *dbus.Conn, busName string) (*Lock, error) {
	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("instance: request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, ErrAlreadyRunning
	}

	return newLock(func() error {
		conn.ReleaseName(busName)
		return conn.Close()
	}), nil
}
