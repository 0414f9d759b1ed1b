// Package focus reads, overrides and restores the OS-global parameters that
// drive "focus follows mouse" window activation.
//
// This package ties together:
//   - Store, the per-platform accessors for the tracking flags and cursor
//   - Controller, which snapshots the user's settings, applies the
//     focus-follows-mouse profile, and restores the snapshot on shutdown
//   - WaitFor and Probe, a small validation harness that tolerates the
//     propagation delay between a setter and the next getter
//
// Platform backends live in store_windows.go, store_linux.go and
// store_other.go.
package focus

import (
	"fmt"
	"strconv"
)

// CursorPosition is a point in virtual-screen coordinates.
type CursorPosition struct {
	X int32
	Y int32
}

func (p CursorPosition) String() string {
	return "(" + strconv.Itoa(int(p.X)) + ", " + strconv.Itoa(int(p.Y)) + ")"
}

// TrackingConfig is the focus-tracking configuration of the desktop.
type TrackingConfig struct {
	// Enabled reports whether the window under the pointer is activated.
	Enabled bool `json:"enabled"`

	// RaiseOnFocus reports whether a tracked window is also brought to the
	// front. Nil when the platform has no such setting.
	RaiseOnFocus *bool `json:"raise_on_focus,omitempty"`

	// DelayMs is how long the pointer has to rest before focus moves.
	DelayMs uint64 `json:"delay_ms"`
}

// Equal reports whether two configurations carry identical values,
// including the presence of the raise setting.
func (c TrackingConfig) Equal(o TrackingConfig) bool {
	if c.Enabled != o.Enabled || c.DelayMs != o.DelayMs {
		return false
	}
	if (c.RaiseOnFocus == nil) != (o.RaiseOnFocus == nil) {
		return false
	}
	return c.RaiseOnFocus == nil || *c.RaiseOnFocus == *o.RaiseOnFocus
}

func (c TrackingConfig) String() string {
	raise := "unsupported"
	if c.RaiseOnFocus != nil {
		raise = strconv.FormatBool(*c.RaiseOnFocus)
	}
	return fmt.Sprintf("enabled=%t raise_on_focus=%s delay=%dms", c.Enabled, raise, c.DelayMs)
}

// Bool returns a pointer to v, for filling TrackingConfig.RaiseOnFocus.
func Bool(v bool) *bool {
	return &v
}

// Store gives typed access to the OS-global focus tracking settings.
//
// Every method is a single blocking call into the platform settings
// facility. A value written by a setter may take the OS some time (about
// 100ms on Windows) to become visible to the matching getter.
type Store interface {
	TrackingEnabled() (bool, error)
	SetTrackingEnabled(enabled bool) error

	// SupportsRaiseOnFocus reports whether the raise accessors are usable.
	// When false they fail with ErrUnsupported.
	SupportsRaiseOnFocus() bool
	TrackingRaiseOnFocus() (bool, error)
	SetTrackingRaiseOnFocus(raise bool) error

	TrackingDelay() (uint64, error)
	SetTrackingDelay(delayMs uint64) error

	CursorPosition() (CursorPosition, error)
	SetCursorPosition(pos CursorPosition) error
}

// Snapshot reads the complete tracking configuration from s.
func Snapshot(s Store) (TrackingConfig, error) {
	var cfg TrackingConfig
	var err error

	if cfg.Enabled, err = s.TrackingEnabled(); err != nil {
		return TrackingConfig{}, err
	}
	if s.SupportsRaiseOnFocus() {
		raise, err := s.TrackingRaiseOnFocus()
		if err != nil {
			return TrackingConfig{}, err
		}
		cfg.RaiseOnFocus = &raise
	}
	if cfg.DelayMs, err = s.TrackingDelay(); err != nil {
		return TrackingConfig{}, err
	}
	return cfg, nil
}

// Apply writes cfg to s in the order enabled, raise, delay. The raise
// setting is skipped when cfg does not carry one or s cannot store it.
func Apply(s Store, cfg TrackingConfig) error {
	if err := s.SetTrackingEnabled(cfg.Enabled); err != nil {
		return err
	}
	if cfg.RaiseOnFocus != nil && s.SupportsRaiseOnFocus() {
		if err := s.SetTrackingRaiseOnFocus(*cfg.RaiseOnFocus); err != nil {
			return err
		}
	}
	return s.SetTrackingDelay(cfg.DelayMs)
}
