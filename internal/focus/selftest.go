package focus

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SelfTestReport records what SelfTest observed.
type SelfTestReport struct {
	Original TrackingConfig
	Applied  TrackingConfig
	Restored TrackingConfig
	Probe    ProbeResult
}

// SelfTest runs a full controller lifecycle against s and checks each
// step is visible through the store: the profile after Initialize, the
// enabled flag after FocusOff and FocusOn, and the original settings
// after Finalize. It then probes the cursor 10px right and down of its
// current position.
//
// Each wait is bounded by settle. The original settings are restored even
// when a check fails.
func SelfTest(ctx context.Context, s Store, opts Options, settle time.Duration) (rep SelfTestReport, err error) {
	if settle <= 0 {
		settle = 10 * PropagationDelay
	}
	wait := func(want TrackingConfig) (TrackingConfig, error) {
		wctx, cancel := context.WithTimeout(ctx, settle)
		defer cancel()
		return WaitFor(wctx, s, want, 0)
	}

	c := NewController(s, opts)
	if err := c.Initialize(); err != nil {
		err = fmt.Errorf("initialize: %w", err)
		if c.State() == StateActive {
			if ferr := c.Finalize(); ferr != nil {
				err = errors.Join(err, fmt.Errorf("restore original settings: %w", ferr))
			}
		}
		return rep, err
	}
	rep.Original, _ = c.Original()

	finalized := false
	defer func() {
		if !finalized {
			if ferr := c.Finalize(); ferr != nil && err == nil {
				err = fmt.Errorf("finalize: %w", ferr)
			}
		}
	}()

	want := TrackingConfig{Enabled: true, DelayMs: opts.DelayMs}
	if s.SupportsRaiseOnFocus() {
		want.RaiseOnFocus = Bool(opts.RaiseOnFocus)
	}
	if rep.Applied, err = wait(want); err != nil {
		return rep, fmt.Errorf("initialize: %w", err)
	}

	if err = c.FocusOff(); err != nil {
		return rep, fmt.Errorf("focus off: %w", err)
	}
	off := want
	off.Enabled = false
	if _, err = wait(off); err != nil {
		return rep, fmt.Errorf("focus off: %w", err)
	}

	if err = c.FocusOn(); err != nil {
		return rep, fmt.Errorf("focus on: %w", err)
	}
	if _, err = wait(want); err != nil {
		return rep, fmt.Errorf("focus on: %w", err)
	}

	finalized = true
	if err = c.Finalize(); err != nil {
		return rep, fmt.Errorf("finalize: %w", err)
	}
	if rep.Restored, err = wait(rep.Original); err != nil {
		return rep, fmt.Errorf("finalize: %w", err)
	}

	start, err := s.CursorPosition()
	if err != nil {
		return rep, fmt.Errorf("probe: %w", err)
	}
	if rep.Probe, err = Probe(s, CursorPosition{X: start.X + 10, Y: start.Y + 10}); err != nil {
		return rep, fmt.Errorf("probe: %w", err)
	}
	return rep, nil
}
