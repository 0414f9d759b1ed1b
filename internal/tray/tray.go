package tray

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/systray"
)

// Run starts the controller, shows the tray icon and blocks until Quit is
// chosen, ctx is cancelled or SIGINT/SIGTERM arrives. Settings are
// restored before it returns. Run must be called from the main goroutine.
func (a *App) Run(ctx context.Context) {
	if err := a.Start(); err != nil {
		a.Fatal(err)
		return
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.logger.Info("shutdown requested", "reason", context.Cause(ctx))
			systray.Quit()
		case <-done:
		}
	}()

	systray.Run(a.onReady, a.onExit)
}

type menu struct {
	enable *systray.MenuItem
	login  *systray.MenuItem
	quit   *systray.MenuItem
}

func (a *App) onReady() {
	enabled := a.Enabled()
	systray.SetIcon(iconFor(enabled))
	systray.SetTooltip("focusfollow")

	m := menu{
		enable: systray.AddMenuItemCheckbox("Enable", "Focus follows mouse", enabled),
	}

	login, err := a.AutostartEnabled()
	if err != nil {
		a.logger.Warn("read launch at login", "error", err)
	}
	m.login = systray.AddMenuItemCheckbox("Launch at login", "Start focusfollow when you log in", login)
	if a.autostart == nil {
		m.login.Disable()
	}

	systray.AddSeparator()
	m.quit = systray.AddMenuItem("Quit", "Restore focus settings and exit")

	go a.menuLoop(m)
}

func (a *App) menuLoop(m menu) {
	if a.crash != nil {
		defer a.crash.Recover()
	}
	for {
		select {
		case <-m.enable.ClickedCh:
			on := !m.enable.Checked()
			if err := a.SetEnabled(on); err != nil {
				a.handle("toggle focus", err)
				continue
			}
			setChecked(m.enable, on)
			systray.SetIcon(iconFor(on))

		case <-m.login.ClickedCh:
			on := !m.login.Checked()
			if err := a.SetAutostart(on); err != nil {
				a.handle("toggle launch at login", err)
				continue
			}
			setChecked(m.login, on)

		case <-m.quit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (a *App) onExit() {
	if err := a.Shutdown(); err != nil {
		a.Fatal(err)
	}
}

func setChecked(item *systray.MenuItem, on bool) {
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}
