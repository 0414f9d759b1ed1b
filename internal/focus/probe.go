package focus

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PropagationDelay is how long the OS typically takes before a written
// setting is visible to readers.
const PropagationDelay = 100 * time.Millisecond

// ErrMismatch is returned by WaitFor and Probe when the observed value
// never matched the expected one.
var ErrMismatch = errors.New("focus: observed settings do not match")

// WaitFor polls s until its tracking configuration equals want or ctx is
// done. interval defaults to PropagationDelay / 4.
//
// It exists for validation only. Controller never waits on the OS.
func WaitFor(ctx context.Context, s Store, want TrackingConfig, interval time.Duration) (TrackingConfig, error) {
	if interval <= 0 {
		interval = PropagationDelay / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		got, err := Snapshot(s)
		if err != nil {
			return got, err
		}
		if got.Equal(want) {
			return got, nil
		}
		select {
		case <-ctx.Done():
			return got, fmt.Errorf("%w: want %s, got %s", ErrMismatch, want, got)
		case <-ticker.C:
		}
	}
}

// ProbeResult describes a cursor probe.
type ProbeResult struct {
	Start    CursorPosition
	Target   CursorPosition
	Observed CursorPosition
}

// Clamped reports whether the OS put the cursor somewhere other than the
// target, which happens near monitor edges and in multi-monitor layouts
// with gaps.
func (r ProbeResult) Clamped() bool {
	return r.Observed != r.Target
}

// Probe moves the cursor to target, reads it back, and puts it where it
// was. The cursor is restored even when the read fails.
func Probe(s Store, target CursorPosition) (res ProbeResult, err error) {
	res.Target = target
	if res.Start, err = s.CursorPosition(); err != nil {
		return res, err
	}
	defer func() {
		if rerr := s.SetCursorPosition(res.Start); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if err = s.SetCursorPosition(target); err != nil {
		return res, err
	}
	res.Observed, err = s.CursorPosition()
	return res, err
}
