package focus

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrUnsupported         = errors.New("focus: setting not supported on this platform")
	ErrUnsupportedPlatform = errors.New("focus: platform not supported")
	ErrDelayOutOfRange     = errors.New("focus: tracking delay out of range")
	ErrAlreadyInitialized  = errors.New("focus: controller already initialized")
	ErrNotInitialized      = errors.New("focus: controller not initialized")
)

// Op identifies a single settings accessor.
type Op string

// Accessor operations.
const (
	OpGetEnabled Op = "get tracking enabled"
	OpSetEnabled Op = "set tracking enabled"
	OpGetRaise   Op = "get tracking raise-on-focus"
	OpSetRaise   Op = "set tracking raise-on-focus"
	OpGetDelay   Op = "get tracking delay"
	OpSetDelay   Op = "set tracking delay"
	OpGetCursor  Op = "get cursor position"
	OpSetCursor  Op = "set cursor position"
)

// ConfigError reports that the OS rejected a settings call. Callers are
// expected to treat it as unrecoverable: the desktop may be left with a
// partially applied configuration.
type ConfigError struct {
	Op  Op
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("focus: failed to %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func opError(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Op: op, Err: err}
}

// IsFatal reports whether err came from a rejected OS settings call.
func IsFatal(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
