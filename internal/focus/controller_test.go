package focus

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Lifecycle
// =============================================================================

func TestController_InitializeAppliesProfile(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, RaiseOnFocus: Bool(true), DelayMs: 0})
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.Initialize())

	assert.Equal(t, StateActive, c.State())
	got := store.state()
	assert.True(t, got.Enabled)
	require.NotNil(t, got.RaiseOnFocus)
	assert.False(t, *got.RaiseOnFocus)
	assert.Equal(t, uint64(DefaultDelayMs), got.DelayMs)
}

func TestController_RoundTrip(t *testing.T) {
	initial := []TrackingConfig{
		{Enabled: false, RaiseOnFocus: Bool(false), DelayMs: 0},
		{Enabled: true, RaiseOnFocus: Bool(true), DelayMs: 250},
		{Enabled: true, RaiseOnFocus: Bool(false), DelayMs: 100},
		{Enabled: false, DelayMs: 4000},
		{Enabled: true, DelayMs: 7},
	}

	for _, cfg := range initial {
		t.Run(cfg.String(), func(t *testing.T) {
			store := newFakeStore(cfg)
			c := NewController(store, DefaultOptions())

			require.NoError(t, c.Initialize())
			require.NoError(t, c.Finalize())

			assert.True(t, cfg.Equal(store.state()), "want %s, got %s", cfg, store.state())
			assert.Equal(t, StateUninitialized, c.State())
		})
	}
}

func TestController_ScenarioFocusOffThenFinalize(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, DelayMs: 0})
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.Initialize())
	assert.Equal(t, TrackingConfig{Enabled: true, DelayMs: 100}, store.state())

	require.NoError(t, c.FocusOff())
	assert.Equal(t, TrackingConfig{Enabled: false, DelayMs: 100}, store.state())

	require.NoError(t, c.Finalize())
	assert.Equal(t, TrackingConfig{Enabled: false, DelayMs: 0}, store.state())
}

func TestController_FinalizeRestoresAfterExternalChanges(t *testing.T) {
	original := TrackingConfig{Enabled: true, RaiseOnFocus: Bool(true), DelayMs: 300}
	store := newFakeStore(original)
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.Initialize())
	require.NoError(t, store.SetTrackingEnabled(false))
	require.NoError(t, store.SetTrackingRaiseOnFocus(false))
	require.NoError(t, store.SetTrackingDelay(400))

	require.NoError(t, c.Finalize())
	assert.True(t, original.Equal(store.state()))
}

func TestController_FinalizeIsRepeatable(t *testing.T) {
	original := TrackingConfig{Enabled: false, RaiseOnFocus: Bool(true), DelayMs: 20}
	store := newFakeStore(original)
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.Initialize())
	require.NoError(t, c.Finalize())
	require.NoError(t, store.SetTrackingDelay(999))
	require.NoError(t, c.Finalize())

	assert.True(t, original.Equal(store.state()))
	snap, ok := c.Original()
	require.True(t, ok)
	assert.True(t, original.Equal(snap))
}

func TestController_FinalizeWithoutInitialize(t *testing.T) {
	store := newFakeStore(TrackingConfig{})
	c := NewController(store, DefaultOptions())

	assert.ErrorIs(t, c.Finalize(), ErrNotInitialized)
	assert.Zero(t, store.writes())
}

func TestController_DoubleInitializeKeepsSnapshot(t *testing.T) {
	original := TrackingConfig{Enabled: false, RaiseOnFocus: Bool(true), DelayMs: 0}
	store := newFakeStore(original)
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.Initialize())
	writes := store.writes()

	assert.ErrorIs(t, c.Initialize(), ErrAlreadyInitialized)
	assert.Equal(t, writes, store.writes())

	require.NoError(t, c.Finalize())
	assert.True(t, original.Equal(store.state()))
}

func TestController_ReinitializeAfterFinalize(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, DelayMs: 0})
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.Initialize())
	require.NoError(t, c.Finalize())

	// The user changes their settings between two runs.
	require.NoError(t, store.SetTrackingDelay(50))
	require.NoError(t, c.Initialize())
	require.NoError(t, c.Finalize())

	assert.Equal(t, TrackingConfig{Enabled: false, DelayMs: 50}, store.state())
}

func TestController_CustomOptions(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, RaiseOnFocus: Bool(false), DelayMs: 0})
	c := NewController(store, Options{DelayMs: 500, RaiseOnFocus: true})

	require.NoError(t, c.Initialize())
	got := store.state()
	assert.Equal(t, uint64(500), got.DelayMs)
	assert.True(t, *got.RaiseOnFocus)
}

// =============================================================================
// Raise-on-focus capability
// =============================================================================

func TestController_UnsupportedRaiseIsNeverCalled(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, DelayMs: 10})
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.Initialize())
	require.NoError(t, c.FocusOff())
	require.NoError(t, c.Finalize())

	assert.Zero(t, store.count(OpGetRaise))
	assert.Zero(t, store.count(OpSetRaise))

	snap, ok := c.Original()
	require.True(t, ok)
	assert.Nil(t, snap.RaiseOnFocus)
}

// =============================================================================
// Toggling
// =============================================================================

func TestController_FocusOnIsIdempotent(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, DelayMs: 100})
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.FocusOn())
	assert.Equal(t, 1, store.count(OpSetEnabled))
	first := store.state()

	require.NoError(t, c.FocusOn())
	assert.Equal(t, 1, store.count(OpSetEnabled), "second FocusOn must not write")
	assert.Equal(t, first, store.state())
}

func TestController_FocusOffIsIdempotent(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: true, DelayMs: 100})
	c := NewController(store, DefaultOptions())

	require.NoError(t, c.FocusOff())
	require.NoError(t, c.FocusOff())

	assert.Equal(t, 1, store.count(OpSetEnabled))
	assert.False(t, store.state().Enabled)
}

func TestController_ToggleLeavesDelayAndRaise(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, RaiseOnFocus: Bool(false), DelayMs: 0})
	c := NewController(store, DefaultOptions())
	require.NoError(t, c.Initialize())

	raiseWrites, delayWrites := store.count(OpSetRaise), store.count(OpSetDelay)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.FocusOff())
		require.NoError(t, c.FocusOn())
	}

	assert.Equal(t, raiseWrites, store.count(OpSetRaise))
	assert.Equal(t, delayWrites, store.count(OpSetDelay))
	assert.Equal(t, uint64(100), store.state().DelayMs)
}

func TestController_ConcurrentToggles(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, RaiseOnFocus: Bool(true), DelayMs: 30})
	c := NewController(store, DefaultOptions())
	require.NoError(t, c.Initialize())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			if on {
				assert.NoError(t, c.FocusOn())
			} else {
				assert.NoError(t, c.FocusOff())
			}
		}(i%2 == 0)
	}
	wg.Wait()

	require.NoError(t, c.Finalize())
	assert.Equal(t, TrackingConfig{Enabled: false, RaiseOnFocus: Bool(true), DelayMs: 30}, store.state())
}

// =============================================================================
// Failures
// =============================================================================

func TestController_InitializeReadFailure(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, RaiseOnFocus: Bool(false)})
	store.failOn(OpGetRaise)
	c := NewController(store, DefaultOptions())

	err := c.Initialize()
	require.Error(t, err)
	assert.True(t, IsFatal(err))

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, OpGetRaise, ce.Op)
	assert.Contains(t, err.Error(), "get tracking raise-on-focus")

	assert.Equal(t, StateUninitialized, c.State())
	assert.Zero(t, store.writes())
}

func TestController_InitializeWriteFailureKeepsSnapshot(t *testing.T) {
	original := TrackingConfig{Enabled: false, RaiseOnFocus: Bool(true), DelayMs: 0}
	store := newFakeStore(original)
	store.failOn(OpSetDelay)
	c := NewController(store, DefaultOptions())

	err := c.Initialize()
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, StateActive, c.State())

	snap, ok := c.Original()
	require.True(t, ok)
	assert.True(t, original.Equal(snap))
}

func TestController_ToggleFailure(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false})
	store.failOn(OpSetEnabled)
	c := NewController(store, DefaultOptions())

	err := c.FocusOn()
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, OpSetEnabled, ce.Op)
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(ErrAlreadyInitialized))
	assert.True(t, IsFatal(&ConfigError{Op: OpSetCursor, Err: errors.New("x")}))
}
