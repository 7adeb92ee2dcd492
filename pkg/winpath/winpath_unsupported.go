//go:build !windows
// +build !windows

package winpath

import "github.com/containers/refreshenv/pkg/broadcast"

func Add(scope Scope, sender broadcast.Sender, dirs ...string) error {
	return ErrNotSupported
}

func Remove(scope Scope, sender broadcast.Sender, dirs ...string) error {
	return ErrNotSupported
}

func HasAdminRights() bool {
	return false
}
