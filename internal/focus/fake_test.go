package focus

import (
	"errors"
	"sync"
)

// fakeStore is an in-memory Store that counts calls, can hide writes for a
// number of reads to mimic OS propagation, and can fail selected ops.
type fakeStore struct {
	mu sync.Mutex

	enabled bool
	raise   bool
	delay   uint64
	cursor  CursorPosition

	supportsRaise bool
	// staleReads is how many reads still see the previous enabled value.
	lagReads   int
	staleReads int
	prevEnable bool

	// clamp, when set, limits cursor coordinates like a screen edge.
	clamp *CursorPosition

	calls map[Op]int
	fail  map[Op]error
}

func newFakeStore(cfg TrackingConfig) *fakeStore {
	s := &fakeStore{
		enabled: cfg.Enabled,
		delay:   cfg.DelayMs,
		calls:   make(map[Op]int),
		fail:    make(map[Op]error),
	}
	if cfg.RaiseOnFocus != nil {
		s.supportsRaise = true
		s.raise = *cfg.RaiseOnFocus
	}
	return s
}

func (s *fakeStore) record(op Op) error {
	s.calls[op]++
	if err, ok := s.fail[op]; ok {
		return &ConfigError{Op: op, Err: err}
	}
	return nil
}

func (s *fakeStore) count(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[OpSetEnabled] + s.calls[OpSetRaise] + s.calls[OpSetDelay] + s.calls[OpSetCursor]
}

func (s *fakeStore) failOn(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = errors.New("access denied")
}

func (s *fakeStore) state() TrackingConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := TrackingConfig{Enabled: s.enabled, DelayMs: s.delay}
	if s.supportsRaise {
		cfg.RaiseOnFocus = Bool(s.raise)
	}
	return cfg
}

func (s *fakeStore) TrackingEnabled() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(OpGetEnabled); err != nil {
		return false, err
	}
	if s.staleReads > 0 {
		s.staleReads--
		return s.prevEnable, nil
	}
	return s.enabled, nil
}

func (s *fakeStore) SetTrackingEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(OpSetEnabled); err != nil {
		return err
	}
	s.prevEnable = s.enabled
	s.staleReads = s.lagReads
	s.enabled = enabled
	return nil
}

func (s *fakeStore) SupportsRaiseOnFocus() bool {
	return s.supportsRaise
}

func (s *fakeStore) TrackingRaiseOnFocus() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(OpGetRaise); err != nil {
		return false, err
	}
	if !s.supportsRaise {
		return false, &ConfigError{Op: OpGetRaise, Err: ErrUnsupported}
	}
	return s.raise, nil
}

func (s *fakeStore) SetTrackingRaiseOnFocus(raise bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(OpSetRaise); err != nil {
		return err
	}
	if !s.supportsRaise {
		return &ConfigError{Op: OpSetRaise, Err: ErrUnsupported}
	}
	s.raise = raise
	return nil
}

func (s *fakeStore) TrackingDelay() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(OpGetDelay); err != nil {
		return 0, err
	}
	return s.delay, nil
}

func (s *fakeStore) SetTrackingDelay(delayMs uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(OpSetDelay); err != nil {
		return err
	}
	s.delay = delayMs
	return nil
}

func (s *fakeStore) CursorPosition() (CursorPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(OpGetCursor); err != nil {
		return CursorPosition{}, err
	}
	return s.cursor, nil
}

func (s *fakeStore) SetCursorPosition(pos CursorPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(OpSetCursor); err != nil {
		return err
	}
	if s.clamp != nil {
		pos.X = min(pos.X, s.clamp.X)
		pos.Y = min(pos.Y, s.clamp.Y)
	}
	s.cursor = pos
	return nil
}
