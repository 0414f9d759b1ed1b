// Package tray is the system-tray shell around the focus controller.
//
// The shell owns one long-lived controller. It calls Initialize once at
// startup, routes the "Enable" menu item to FocusOn/FocusOff and calls
// Finalize once on Quit or on SIGINT/SIGTERM. Any controller failure is
// fatal: it is logged, written as a crash report and the process exits
// with status 1.
package tray

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"focusfollow/internal/autostart"
	"focusfollow/internal/focus"
	"focusfollow/internal/logging"
)

// Focus is the controller boundary the shell drives.
type Focus interface {
	Initialize() error
	Finalize() error
	FocusOn() error
	FocusOff() error
}

// Options configure an App.
type Options struct {
	Focus Focus

	// Autostart backs the "Launch at login" item. Nil disables the item.
	Autostart autostart.Manager

	// ExecPath is registered when autostart is enabled.
	ExecPath string

	// EnableOnStart leaves tracking on after Initialize.
	EnableOnStart bool

	Logger *slog.Logger
	Crash  *logging.CrashHandler

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)
}

// App holds the shell state behind the tray menu.
type App struct {
	focus     Focus
	autostart autostart.Manager
	execPath  string
	enableOn  bool
	logger    *slog.Logger
	crash     *logging.CrashHandler
	exit      func(int)

	mu       sync.Mutex
	enabled  bool
	started  bool
	finished bool
}

// New creates an App. Nothing touches the OS until Start.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "tray")
	}
	exit := opts.Exit
	if exit == nil {
		exit = os.Exit
	}
	return &App{
		focus:     opts.Focus,
		autostart: opts.Autostart,
		execPath:  opts.ExecPath,
		enableOn:  opts.EnableOnStart,
		logger:    logger,
		crash:     opts.Crash,
		exit:      exit,
	}
}

// Start initializes the controller and, unless EnableOnStart is set,
// switches tracking back off.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.focus.Initialize(); err != nil {
		return err
	}
	a.started = true
	a.enabled = true

	if !a.enableOn {
		if err := a.focus.FocusOff(); err != nil {
			return err
		}
		a.enabled = false
	}
	a.logger.Info("focus follows mouse ready", "enabled", a.enabled)
	return nil
}

// Enabled reports the state shown by the "Enable" item.
func (a *App) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// SetEnabled turns tracking on or off.
func (a *App) SetEnabled(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if on {
		err = a.focus.FocusOn()
	} else {
		err = a.focus.FocusOff()
	}
	if err != nil {
		return err
	}
	a.enabled = on
	a.logger.Info("focus follows mouse toggled", "enabled", on)
	return nil
}

// AutostartEnabled reports whether launch at login is registered.
func (a *App) AutostartEnabled() (bool, error) {
	if a.autostart == nil {
		return false, nil
	}
	return a.autostart.IsEnabled()
}

// SetAutostart registers or removes launch at login.
func (a *App) SetAutostart(on bool) error {
	if a.autostart == nil {
		return nil
	}
	if err := autostart.Sync(a.autostart, on, a.execPath); err != nil {
		return err
	}
	a.logger.Info("launch at login changed", "enabled", on, "location", a.autostart.Location())
	return nil
}

// Shutdown restores the original settings. Only the first call does work.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started || a.finished {
		return nil
	}
	a.finished = true
	if err := a.focus.Finalize(); err != nil {
		return err
	}
	a.logger.Info("original focus settings restored")
	return nil
}

// Fatal logs err, writes a crash report and exits with status 1.
func (a *App) Fatal(err error) {
	attrs := []any{"error", err}
	context := map[string]string{}

	var cfgErr *focus.ConfigError
	if errors.As(err, &cfgErr) {
		attrs = append(attrs, "op", string(cfgErr.Op))
		context["op"] = string(cfgErr.Op)
	}
	a.logger.Error("fatal focus configuration error", attrs...)

	if a.crash != nil {
		if path := a.crash.HandleFatal(err, context); path != "" {
			a.logger.Error("crash report written", "path", path)
		}
	}
	a.exit(1)
}

// handle routes a menu action error: controller failures are fatal,
// anything else is logged.
func (a *App) handle(action string, err error) {
	if err == nil {
		return
	}
	if focus.IsFatal(err) {
		a.Fatal(err)
		return
	}
	a.logger.Warn(action+" failed", "error", err)
}
