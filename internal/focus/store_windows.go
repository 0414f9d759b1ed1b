//go:build windows

package focus

import (
	"errors"
	"math"
	"unsafe"

	"golang.org/x/sys/windows"
)

// SystemParametersInfo actions for active window tracking.
const (
	spiGetActiveWindowTracking = 0x1000
	spiSetActiveWindowTracking = 0x1001
	spiGetActiveWndTrkZOrder   = 0x100C
	spiSetActiveWndTrkZOrder   = 0x100D
	spiGetActiveWndTrkTimeout  = 0x2002
	spiSetActiveWndTrkTimeout  = 0x2003

	// Broadcast WM_SETTINGCHANGE without persisting to the user profile:
	// the original values are restored by Finalize.
	spifSendChange = 0x0002
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSystemParametersInfoW = user32.NewProc("SystemParametersInfoW")
	procGetCursorPos          = user32.NewProc("GetCursorPos")
	procSetCursorPos          = user32.NewProc("SetCursorPos")
)

type point struct {
	X int32
	Y int32
}

// windowsStore implements Store with SystemParametersInfoW.
type windowsStore struct{}

// NewSystemStore returns the Store for the running desktop.
func NewSystemStore() (Store, error) {
	if err := procSystemParametersInfoW.Find(); err != nil {
		return nil, err
	}
	return windowsStore{}, nil
}

// call invokes proc and converts a zero BOOL result into an error.
func call(proc *windows.LazyProc, args ...uintptr) error {
	r1, _, lastErr := proc.Call(args...)
	if r1 != 0 {
		return nil
	}
	var errno windows.Errno
	if errors.As(lastErr, &errno) && errno != 0 {
		return errno
	}
	return errors.New(proc.Name + " returned FALSE")
}

func getUint32(action uintptr) (uint32, error) {
	var v uint32
	err := call(procSystemParametersInfoW, action, 0, uintptr(unsafe.Pointer(&v)), 0)
	return v, err
}

// setValue passes v by value in pvParam, which is how the tracking
// actions expect their argument.
func setValue(action uintptr, v uintptr) error {
	return call(procSystemParametersInfoW, action, 0, v, spifSendChange)
}

func boolArg(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

func (windowsStore) TrackingEnabled() (bool, error) {
	v, err := getUint32(spiGetActiveWindowTracking)
	if err != nil {
		return false, opError(OpGetEnabled, err)
	}
	return v != 0, nil
}

func (windowsStore) SetTrackingEnabled(enabled bool) error {
	return opError(OpSetEnabled, setValue(spiSetActiveWindowTracking, boolArg(enabled)))
}

func (windowsStore) SupportsRaiseOnFocus() bool {
	return true
}

func (windowsStore) TrackingRaiseOnFocus() (bool, error) {
	v, err := getUint32(spiGetActiveWndTrkZOrder)
	if err != nil {
		return false, opError(OpGetRaise, err)
	}
	return v != 0, nil
}

func (windowsStore) SetTrackingRaiseOnFocus(raise bool) error {
	return opError(OpSetRaise, setValue(spiSetActiveWndTrkZOrder, boolArg(raise)))
}

func (windowsStore) TrackingDelay() (uint64, error) {
	v, err := getUint32(spiGetActiveWndTrkTimeout)
	if err != nil {
		return 0, opError(OpGetDelay, err)
	}
	return uint64(v), nil
}

func (windowsStore) SetTrackingDelay(delayMs uint64) error {
	if delayMs > math.MaxUint32 {
		return opError(OpSetDelay, ErrDelayOutOfRange)
	}
	return opError(OpSetDelay, setValue(spiSetActiveWndTrkTimeout, uintptr(delayMs)))
}

func (windowsStore) CursorPosition() (CursorPosition, error) {
	var pt point
	if err := call(procGetCursorPos, uintptr(unsafe.Pointer(&pt))); err != nil {
		return CursorPosition{}, opError(OpGetCursor, err)
	}
	return CursorPosition{X: pt.X, Y: pt.Y}, nil
}

func (windowsStore) SetCursorPosition(pos CursorPosition) error {
	return opError(OpSetCursor, call(procSetCursorPos, uintptr(pos.X), uintptr(pos.Y)))
}
