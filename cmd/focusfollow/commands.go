package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"focusfollow/internal/autostart"
	"focusfollow/internal/config"
	"focusfollow/internal/focus"
	"focusfollow/internal/instance"
	"focusfollow/internal/logging"
	"focusfollow/internal/tray"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// annotationTray marks the commands that run the tray application.
const annotationTray = "focusfollow/tray"

// crashRetention is how long crash reports are kept.
const crashRetention = 30 * 24 * time.Hour

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
)

var (
	Root = &cobra.Command{
		Use:               "focusfollow",
		Short:             "Focus follows mouse from the system tray",
		SilenceUsage:      true,
		Args:              cobra.NoArgs,
		PersistentPostRun: teardown,
		RunE:              runTray,
		Annotations:       map[string]string{annotationTray: "true"},
	}

	Run = &cobra.Command{
		Use:         "run",
		Short:       "Run the tray application",
		Args:        cobra.NoArgs,
		RunE:        runTray,
		Annotations: map[string]string{annotationTray: "true"},
	}

	Status = &cobra.Command{
		Use:   "status",
		Short: "Show the desktop's focus tracking settings",
		Args:  cobra.NoArgs,
		RunE:  status,
	}

	SelfTest = &cobra.Command{
		Use:   "selftest",
		Short: "Apply the profile, verify it, restore the original settings and probe the cursor",
		Args:  cobra.NoArgs,
		RunE:  selfTest,
	}

	Autostart = &cobra.Command{
		Use:   "autostart",
		Short: "Manage launch at login",
	}

	AutostartEnable = &cobra.Command{
		Use:  "enable",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error { return setAutostart(cmd, true) },
	}

	AutostartDisable = &cobra.Command{
		Use:  "disable",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error { return setAutostart(cmd, false) },
	}

	AutostartStatus = &cobra.Command{
		Use:  "status",
		Args: cobra.NoArgs,
		RunE: autostartStatus,
	}

	VersionCmd = &cobra.Command{
		Use:              "version",
		Short:            "Print the version",
		Args:             cobra.NoArgs,
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "focusfollow %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
)

func init() {
	Root.PersistentPreRunE = setup

	Root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	Root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	Status.Flags().Bool("json", false, "print the settings as JSON")
	SelfTest.Flags().Duration("settle", 10*focus.PropagationDelay, "how long to wait for each change to become visible")

	Root.AddCommand(Run, Status, SelfTest, Autostart, VersionCmd)
	Autostart.AddCommand(AutostartEnable, AutostartDisable, AutostartStatus)
}

// setup loads the configuration and builds the logger. The tray logs
// where the configuration says; every other command logs to stderr.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	lc, err := loggingConfig(cfg.Logging)
	if err != nil {
		return err
	}
	if !runsTray(cmd) {
		lc.Output = "stderr"
	}
	logger, err = logging.New(lc)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	slog.SetDefault(logger.Logger)
	logger.Debug("configuration loaded", "path", configPath, "log-level", lc.Level)
	return nil
}

func runsTray(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationTray] == "true"
}

func teardown(cmd *cobra.Command, args []string) {
	if logger != nil {
		logger.Close()
	}
}

func loggingConfig(c config.LoggingConfig) (*logging.Config, error) {
	lc := logging.DefaultConfig()
	lc.Component = ""

	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	lc.Level = level
	lc.Format = format
	if c.Output != "" {
		lc.Output = c.Output
	}
	if c.FilePath != "" {
		lc.FilePath = c.FilePath
	}
	return lc, nil
}

func focusOptions(c *config.Config) focus.Options {
	opts := focus.DefaultOptions()
	opts.DelayMs = c.Focus.TrackingDelayMs
	opts.RaiseOnFocus = c.Focus.RaiseOnFocus
	opts.Logger = logger.WithComponent("focus").Logger
	return opts
}

func runTray(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	lock, err := instance.Acquire(autostart.AppName)
	switch {
	case errors.Is(err, instance.ErrAlreadyRunning):
		logger.Info("focusfollow is already running")
		return nil
	case err != nil:
		logger.Warn("single instance check failed", "error", err)
	default:
		defer lock.Release()
	}

	crash := logging.NewCrashHandler(&logging.CrashHandlerConfig{Version: Version})
	defer crash.Recover()
	if err := crash.CleanupOld(crashRetention); err != nil {
		logger.Debug("clean up crash reports", "error", err)
	}

	store, err := focus.NewSystemStore()
	if err != nil {
		logger.Error("focus follows mouse is unavailable", "error", err)
		crash.HandleFatal(err, map[string]string{"op": "open settings store"})
		return err
	}

	var starter autostart.Manager
	if m, err := autostart.New(); err != nil {
		logger.Warn("launch at login unavailable", "error", err)
	} else {
		starter = m
	}
	exe, err := autostart.Executable()
	if err != nil {
		logger.Warn("locate executable", "error", err)
	}
	if starter != nil && cfg.Autostart.Enabled && exe != "" {
		if err := autostart.Sync(starter, true, exe); err != nil {
			logger.Warn("register launch at login", "error", err)
		}
	}

	stopWatch := watchConfig(ctx)
	defer stopWatch()

	app := tray.New(tray.Options{
		Focus:         focus.NewController(store, focusOptions(cfg)),
		Autostart:     starter,
		ExecPath:      exe,
		EnableOnStart: cfg.Focus.EnableOnStart,
		Logger:        logger.WithComponent("tray").Logger,
		Crash:         crash,
	})
	app.Run(ctx)
	return nil
}

// watchConfig re-levels the logger when the configuration file changes.
// Focus settings are applied once at startup and are not reloaded. The
// returned function stops watching and closes the loader.
func watchConfig(ctx context.Context) (stop func()) {
	loader := config.NewLoader(configPath)
	if _, err := loader.Load(); err != nil {
		logger.Warn("config reload disabled", "error", err)
		return func() {}
	}
	loader.OnChange(func(c *config.Config) {
		level, err := logging.ParseLevel(c.Logging.Level)
		if err != nil {
			return
		}
		if logLevel == "" {
			logger.SetLevel(level)
		}
		logger.Info("configuration reloaded", "path", loader.Path(), "log-level", logging.LevelString(logger.Level()))
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("config reload disabled", "error", err)
		loader.Close()
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer loader.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-loader.Errors():
				logger.Warn("config reload failed", "error", err)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func status(cmd *cobra.Command, args []string) error {
	store, err := focus.NewSystemStore()
	if err != nil {
		return err
	}
	current, err := focus.Snapshot(store)
	if err != nil {
		return err
	}
	cursor, err := store.CursorPosition()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Tracking focus.TrackingConfig `json:"tracking"`
			Cursor   focus.CursorPosition `json:"cursor"`
		}{current, cursor})
	}
	fmt.Fprintf(out, "tracking: %s\n", current)
	fmt.Fprintf(out, "cursor:   %s\n", cursor)
	return nil
}

func selfTest(cmd *cobra.Command, args []string) error {
	lock, err := instance.Acquire(autostart.AppName)
	if errors.Is(err, instance.ErrAlreadyRunning) {
		return errors.New("the tray application is running; quit it before running the self test")
	}
	if err == nil {
		defer lock.Release()
	}

	store, err := focus.NewSystemStore()
	if err != nil {
		return err
	}
	settle, _ := cmd.Flags().GetDuration("settle")

	out := cmd.OutOrStdout()
	rep, err := focus.SelfTest(cmd.Context(), store, focusOptions(cfg), settle)
	fmt.Fprintf(out, "original: %s\n", rep.Original)
	if err != nil {
		fmt.Fprintf(out, "FAIL: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "applied:  %s\n", rep.Applied)
	fmt.Fprintf(out, "restored: %s\n", rep.Restored)
	fmt.Fprintf(out, "cursor:   %s -> %s (observed %s)\n", rep.Probe.Start, rep.Probe.Target, rep.Probe.Observed)
	if rep.Probe.Clamped() {
		fmt.Fprintln(out, "note: the cursor was clamped by the screen layout")
	}
	fmt.Fprintln(out, "PASS")
	return nil
}

func setAutostart(cmd *cobra.Command, on bool) error {
	m, err := autostart.New()
	if err != nil {
		return err
	}
	exe, err := autostart.Executable()
	if err != nil {
		return err
	}
	if err := autostart.Sync(m, on, exe); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if on {
		fmt.Fprintf(out, "launch at login enabled (%s)\n", m.Location())
		return nil
	}
	fmt.Fprintln(out, "launch at login disabled")
	if cfg.Autostart.Enabled {
		fmt.Fprintln(cmd.ErrOrStderr(), "note: autostart.enabled is set in the configuration; the next run registers again")
	}
	return nil
}

func autostartStatus(cmd *cobra.Command, args []string) error {
	m, err := autostart.New()
	if err != nil {
		return err
	}
	on, err := m.IsEnabled()
	if err != nil {
		return err
	}
	state := "disabled"
	if on {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "launch at login %s (%s)\n", state, m.Location())
	return nil
}
