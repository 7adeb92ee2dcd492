//go:build !windows
// +build !windows

package broadcast

// User32 is unavailable off Windows; every send reports ErrNotSupported.
type User32 struct{}

func (User32) SendSettingChange(msg Message) error {
	return ErrNotSupported
}
