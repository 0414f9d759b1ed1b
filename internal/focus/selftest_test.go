package focus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfTest_Passes(t *testing.T) {
	original := TrackingConfig{Enabled: false, RaiseOnFocus: Bool(true), DelayMs: 400}
	store := newFakeStore(original)
	store.lagReads = 2
	store.cursor = CursorPosition{X: 100, Y: 200}

	rep, err := SelfTest(context.Background(), store, DefaultOptions(), time.Second)
	require.NoError(t, err)

	assert.True(t, original.Equal(rep.Original))
	assert.True(t, rep.Applied.Equal(TrackingConfig{Enabled: true, RaiseOnFocus: Bool(false), DelayMs: DefaultDelayMs}))
	assert.True(t, original.Equal(rep.Restored))
	assert.Equal(t, CursorPosition{X: 110, Y: 210}, rep.Probe.Observed)
	assert.False(t, rep.Probe.Clamped())
	assert.True(t, original.Equal(store.state()))
	assert.Equal(t, CursorPosition{X: 100, Y: 200}, store.cursor)
}

// stuckStore ignores requests to disable tracking.
type stuckStore struct {
	*fakeStore
}

func (s stuckStore) SetTrackingEnabled(enabled bool) error {
	if !enabled {
		return nil
	}
	return s.fakeStore.SetTrackingEnabled(enabled)
}

func TestSelfTest_MismatchRestoresOriginal(t *testing.T) {
	original := TrackingConfig{Enabled: true, DelayMs: 500}
	fake := newFakeStore(original)

	_, err := SelfTest(context.Background(), stuckStore{fake}, DefaultOptions(), 50*time.Millisecond)
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "focus off")
	assert.True(t, original.Equal(fake.state()))
}

func TestSelfTest_InitializeFailure(t *testing.T) {
	store := newFakeStore(TrackingConfig{Enabled: false, DelayMs: 500})
	store.failOn(OpSetDelay)

	_, err := SelfTest(context.Background(), store, DefaultOptions(), 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	// The restore hits the same failing delay write and must be reported.
	assert.Contains(t, err.Error(), "restore original settings")
	assert.Equal(t, 2, store.count(OpSetDelay))
}
