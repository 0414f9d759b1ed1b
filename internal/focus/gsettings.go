package focus

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// GNOME window-manager preferences driving pointer focus.
const (
	wmSchema         = "org.gnome.desktop.wm.preferences"
	keyFocusMode     = "focus-mode"
	keyAutoRaise     = "auto-raise"
	keyAutoRaiseWait = "auto-raise-delay"

	focusModeClick  = "click"
	focusModeSloppy = "sloppy"
)

// commandTimeout bounds a single helper invocation.
const commandTimeout = 5 * time.Second

// Runner executes an external helper and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs helpers with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}

// GSettingsStore implements Store on GNOME through the gsettings and
// xdotool command line tools.
//
// Tracking is enabled whenever focus-mode is not "click". Raise-on-focus
// maps to auto-raise, and its companion auto-raise-delay serves as the
// tracking delay since GNOME has no other delay knob.
//
// Enabling from "click" writes back the last pointer mode the store has
// seen ("sloppy" or "mouse"), so a disable/enable cycle keeps the user's
// choice.
type GSettingsStore struct {
	runner Runner

	mu          sync.Mutex
	pointerMode string
}

// NewGSettingsStore creates a store that shells out through runner.
func NewGSettingsStore(runner Runner) *GSettingsStore {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &GSettingsStore{runner: runner, pointerMode: focusModeSloppy}
}

func (s *GSettingsStore) run(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return s.runner.Run(ctx, name, args...)
}

func (s *GSettingsStore) get(key string) (string, error) {
	out, err := s.run("gsettings", "get", wmSchema, key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *GSettingsStore) set(key, value string) error {
	_, err := s.run("gsettings", "set", wmSchema, key, value)
	return err
}

// focusMode reads focus-mode and remembers it when it is a pointer mode.
func (s *GSettingsStore) focusMode() (string, error) {
	v, err := s.get(keyFocusMode)
	if err != nil {
		return "", err
	}
	mode := strings.Trim(v, "'")
	if mode != focusModeClick {
		s.mu.Lock()
		s.pointerMode = mode
		s.mu.Unlock()
	}
	return mode, nil
}

func (s *GSettingsStore) lastPointerMode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointerMode
}

// TrackingEnabled implements Store.
func (s *GSettingsStore) TrackingEnabled() (bool, error) {
	mode, err := s.focusMode()
	if err != nil {
		return false, opError(OpGetEnabled, err)
	}
	return mode != focusModeClick, nil
}

// SetTrackingEnabled implements Store. Enabling keeps an existing
// pointer mode and otherwise restores the last one seen.
func (s *GSettingsStore) SetTrackingEnabled(enabled bool) error {
	current, err := s.focusMode()
	if err != nil {
		return opError(OpSetEnabled, err)
	}
	mode := focusModeClick
	if enabled {
		if current != focusModeClick {
			return nil
		}
		mode = s.lastPointerMode()
	}
	return opError(OpSetEnabled, s.set(keyFocusMode, mode))
}

// SupportsRaiseOnFocus implements Store.
func (s *GSettingsStore) SupportsRaiseOnFocus() bool {
	return true
}

// TrackingRaiseOnFocus implements Store.
func (s *GSettingsStore) TrackingRaiseOnFocus() (bool, error) {
	v, err := s.get(keyAutoRaise)
	if err != nil {
		return false, opError(OpGetRaise, err)
	}
	raise, err := strconv.ParseBool(v)
	if err != nil {
		return false, opError(OpGetRaise, fmt.Errorf("parse %q: %w", v, err))
	}
	return raise, nil
}

// SetTrackingRaiseOnFocus implements Store.
func (s *GSettingsStore) SetTrackingRaiseOnFocus(raise bool) error {
	return opError(OpSetRaise, s.set(keyAutoRaise, strconv.FormatBool(raise)))
}

// TrackingDelay implements Store.
func (s *GSettingsStore) TrackingDelay() (uint64, error) {
	v, err := s.get(keyAutoRaiseWait)
	if err != nil {
		return 0, opError(OpGetDelay, err)
	}
	// Typed output looks like "int32 500" on some versions.
	if i := strings.LastIndexByte(v, ' '); i >= 0 {
		v = v[i+1:]
	}
	d, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, opError(OpGetDelay, fmt.Errorf("parse %q: %w", v, err))
	}
	return d, nil
}

// SetTrackingDelay implements Store.
func (s *GSettingsStore) SetTrackingDelay(delayMs uint64) error {
	if delayMs > 1<<31-1 {
		return opError(OpSetDelay, ErrDelayOutOfRange)
	}
	return opError(OpSetDelay, s.set(keyAutoRaiseWait, strconv.FormatUint(delayMs, 10)))
}

// CursorPosition implements Store.
func (s *GSettingsStore) CursorPosition() (CursorPosition, error) {
	out, err := s.run("xdotool", "getmouselocation", "--shell")
	if err != nil {
		return CursorPosition{}, opError(OpGetCursor, err)
	}
	pos, err := parseMouseLocation(out)
	if err != nil {
		return CursorPosition{}, opError(OpGetCursor, err)
	}
	return pos, nil
}

// SetCursorPosition implements Store.
func (s *GSettingsStore) SetCursorPosition(pos CursorPosition) error {
	_, err := s.run("xdotool", "mousemove", "--sync",
		strconv.Itoa(int(pos.X)), strconv.Itoa(int(pos.Y)))
	return opError(OpSetCursor, err)
}

// parseMouseLocation reads the X= and Y= lines of
// "xdotool getmouselocation --shell".
func parseMouseLocation(out string) (CursorPosition, error) {
	var pos CursorPosition
	var haveX, haveY bool
	for _, line := range strings.Split(out, "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch k {
		case "X", "Y":
			n, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return CursorPosition{}, fmt.Errorf("parse %s=%q: %w", k, v, err)
			}
			if k == "X" {
				pos.X, haveX = int32(n), true
			} else {
				pos.Y, haveY = int32(n), true
			}
		}
	}
	if !haveX || !haveY {
		return CursorPosition{}, fmt.Errorf("unexpected xdotool output %q", out)
	}
	return pos, nil
}
