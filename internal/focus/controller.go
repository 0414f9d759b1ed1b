package focus

import (
	"log/slog"
	"sync"
)

// DefaultDelayMs is the activation delay applied by Initialize.
const DefaultDelayMs = 100

// State is the lifecycle state of a Controller.
type State int

const (
	// StateUninitialized means no focus profile is applied by this controller.
	StateUninitialized State = iota
	// StateActive means Initialize has captured a snapshot and applied the profile.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	default:
		return "uninitialized"
	}
}

// Options tune the profile applied by Initialize.
type Options struct {
	// DelayMs is the tracking delay applied on Initialize.
	DelayMs uint64

	// RaiseOnFocus is applied on Initialize where the platform supports it.
	RaiseOnFocus bool

	Logger *slog.Logger
}

// DefaultOptions returns the focus-follows-mouse profile: tracking on,
// no raise, 100ms delay.
func DefaultOptions() Options {
	return Options{
		DelayMs:      DefaultDelayMs,
		RaiseOnFocus: false,
	}
}

// Controller applies focus-follows-mouse on top of the user's desktop
// settings and puts them back afterwards.
//
// A Controller is safe for concurrent use. Host UI toolkits may deliver
// menu callbacks on arbitrary threads, so every method holds the same lock
// for its whole duration, OS calls included.
type Controller struct {
	mu       sync.Mutex
	store    Store
	opts     Options
	logger   *slog.Logger
	state    State
	original *TrackingConfig
}

// NewController creates a controller over store. Nothing is read or
// written until Initialize.
func NewController(store Store, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "focus")
	}
	return &Controller{
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// Initialize records the current settings and applies the profile.
//
// It fails with ErrAlreadyInitialized while a snapshot is live, so that a
// stray second call can never replace the user's true original settings
// with the profile values. Any *ConfigError is fatal.
func (c *Controller) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateActive {
		return ErrAlreadyInitialized
	}

	original, err := Snapshot(c.store)
	if err != nil {
		return err
	}
	c.original = &original
	// The snapshot is live from here on: if applying the profile fails
	// halfway, Finalize can still restore it.
	c.state = StateActive
	c.logger.Info("captured original focus settings", "config", original.String())

	profile := TrackingConfig{Enabled: true, DelayMs: c.opts.DelayMs}
	if c.store.SupportsRaiseOnFocus() {
		profile.RaiseOnFocus = Bool(c.opts.RaiseOnFocus)
	}
	if err := Apply(c.store, profile); err != nil {
		return err
	}
	c.logger.Info("applied focus-follows-mouse profile", "config", profile.String())
	return nil
}

// Finalize restores the snapshot taken by the most recent Initialize.
//
// It may be called repeatedly; each call re-applies the same values.
func (c *Controller) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.original == nil {
		return ErrNotInitialized
	}
	if err := Apply(c.store, *c.original); err != nil {
		return err
	}
	c.state = StateUninitialized
	c.logger.Info("restored original focus settings", "config", c.original.String())
	return nil
}

// FocusOn enables tracking. It does not write anything if tracking is
// already enabled, and never touches the raise or delay settings.
func (c *Controller) FocusOn() error {
	return c.setEnabled(true)
}

// FocusOff disables tracking, symmetric to FocusOn.
func (c *Controller) FocusOff() error {
	return c.setEnabled(false)
}

func (c *Controller) setEnabled(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.store.TrackingEnabled()
	if err != nil {
		return err
	}
	if current == enabled {
		return nil
	}
	if err := c.store.SetTrackingEnabled(enabled); err != nil {
		return err
	}
	c.logger.Debug("focus tracking toggled", "enabled", enabled)
	return nil
}

// Enabled reports whether tracking is currently enabled on the desktop.
func (c *Controller) Enabled() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.TrackingEnabled()
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Original returns the snapshot Finalize would restore, if any.
func (c *Controller) Original() (TrackingConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.original == nil {
		return TrackingConfig{}, false
	}
	cfg := *c.original
	if cfg.RaiseOnFocus != nil {
		cfg.RaiseOnFocus = Bool(*cfg.RaiseOnFocus)
	}
	return cfg, true
}
