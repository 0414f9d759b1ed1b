package focus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAndApply(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: true, RaiseOnFocus: Bool(false), DelayMs: 10})

	want := TrackingConfig{Enabled: false, RaiseOnFocus: Bool(true), DelayMs: 1234}
	require.NoError(t, Apply(store, want))

	got, err := Snapshot(store)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestApply_SkipsRaiseWhenUnsupported(t *testing.T) {
	store := newFakeStore(TrackingConfig{})

	require.NoError(t, Apply(store, TrackingConfig{Enabled: true, RaiseOnFocus: Bool(true), DelayMs: 5}))
	assert.Zero(t, store.count(OpSetRaise))
	assert.Equal(t, TrackingConfig{Enabled: true, DelayMs: 5}, store.state())
}

func TestSetGetDelay(t *testing.T) {
	for _, d := range []uint64{0, 100, 37, 86400000} {
		store := newFakeStore(TrackingConfig{})
		require.NoError(t, store.SetTrackingDelay(d))
		got, err := store.TrackingDelay()
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestTrackingConfig_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b TrackingConfig
		want bool
	}{
		{"identical", TrackingConfig{Enabled: true, DelayMs: 1}, TrackingConfig{Enabled: true, DelayMs: 1}, true},
		{"delay differs", TrackingConfig{DelayMs: 1}, TrackingConfig{DelayMs: 2}, false},
		{"raise presence differs", TrackingConfig{RaiseOnFocus: Bool(false)}, TrackingConfig{}, false},
		{"raise value differs", TrackingConfig{RaiseOnFocus: Bool(false)}, TrackingConfig{RaiseOnFocus: Bool(true)}, false},
		{"raise same value distinct pointers", TrackingConfig{RaiseOnFocus: Bool(true)}, TrackingConfig{RaiseOnFocus: Bool(true)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestTrackingConfig_String(t *testing.T) {
	assert.Equal(t, "enabled=true raise_on_focus=unsupported delay=100ms",
		TrackingConfig{Enabled: true, DelayMs: 100}.String())
	assert.Equal(t, "enabled=false raise_on_focus=true delay=0ms",
		TrackingConfig{RaiseOnFocus: Bool(true)}.String())
}

// =============================================================================
// Propagation
// =============================================================================

func TestWaitFor_ToleratesPropagationLag(t *testing.T) {
	for _, initial := range []bool{false, true} {
		store := newFakeStore(TrackingConfig{Enabled: initial})
		store.lagReads = 3

		for _, v := range []bool{!initial, initial} {
			require.NoError(t, store.SetTrackingEnabled(v))

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			got, err := WaitFor(ctx, store, TrackingConfig{Enabled: v}, time.Millisecond)
			cancel()

			require.NoError(t, err)
			assert.Equal(t, v, got.Enabled)
		}
	}
}

func TestWaitFor_Mismatch(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, DelayMs: 100})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WaitFor(ctx, store, TrackingConfig{Enabled: true, DelayMs: 100}, time.Millisecond)
	assert.ErrorIs(t, err, ErrMismatch)
}

// =============================================================================
// Cursor probing
// =============================================================================

func TestProbe_RoundTrip(t *testing.T) {
	store := newFakeStore(TrackingConfig{})
	store.cursor = CursorPosition{X: 5, Y: 6}

	res, err := Probe(store, CursorPosition{X: 100, Y: 100})
	require.NoError(t, err)

	assert.False(t, res.Clamped())
	assert.Equal(t, CursorPosition{X: 100, Y: 100}, res.Observed)
	assert.Equal(t, CursorPosition{X: 5, Y: 6}, store.cursor, "cursor must be put back")
}

func TestProbe_ReportsClamping(t *testing.T) {
	store := newFakeStore(TrackingConfig{})
	store.clamp = &CursorPosition{X: 1919, Y: 1079}

	res, err := Probe(store, CursorPosition{X: 5000, Y: 200})
	require.NoError(t, err)

	assert.True(t, res.Clamped())
	assert.Equal(t, CursorPosition{X: 1919, Y: 200}, res.Observed)
}

func TestProbe_StartReadFailure(t *testing.T) {
	store := newFakeStore(TrackingConfig{})
	store.failOn(OpGetCursor)

	_, err := Probe(store, CursorPosition{X: 9, Y: 9})
	assert.True(t, IsFatal(err))
	assert.Zero(t, store.count(OpSetCursor), "nothing moved when the start could not be read")
}
