//go:build !windows
// +build !windows

package msi

// Installer opens sessions backed by msi.dll, which only exists on Windows.
type Installer struct{}

func (Installer) Open(h Handle, action string) (Session, error) {
	return openFailed(action, ErrNotSupported)
}
