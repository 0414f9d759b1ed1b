//go:build !windows && !linux

package focus

// NewSystemStore returns ErrUnsupportedPlatform: this desktop exposes no
// global focus-follows-mouse settings.
func NewSystemStore() (Store, error) {
	return nil, ErrUnsupportedPlatform
}
