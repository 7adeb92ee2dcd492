//go:build windows
// +build windows

package winpath

import (
	"io/fs"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
	winreg "golang.org/x/sys/windows/registry"

	"github.com/containers/refreshenv/pkg/broadcast"
)

// Add appends dirs to the Path of scope and broadcasts the change.
// Directories already present are left alone.
func Add(scope Scope, sender broadcast.Sender, dirs ...string) error {
	if err := validateDirs(dirs); err != nil {
		return err
	}
	k, err := openEnvironment(scope, true)
	if err != nil {
		return err
	}
	defer k.Close()

	return edit(k, scope, sender, dirs, appendDir)
}

// Remove drops dirs from the Path of scope and broadcasts the change. A
// missing environment key is not an error.
func Remove(scope Scope, sender broadcast.Sender, dirs ...string) error {
	if err := validateDirs(dirs); err != nil {
		return err
	}
	k, err := openEnvironment(scope, false)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing to do
			return nil
		}
		return err
	}
	defer k.Close()

	return edit(k, scope, sender, dirs, removeDir)
}

func openEnvironment(scope Scope, create bool) (winreg.Key, error) {
	root, path := winreg.CURRENT_USER, userEnvironmentKey
	if scope == Machine {
		if !HasAdminRights() {
			return 0, ErrNotAdmin
		}
		root, path = winreg.LOCAL_MACHINE, machineEnvironmentKey
	}

	if create {
		k, _, err := winreg.CreateKey(root, path, winreg.WRITE|winreg.READ)
		return k, errors.Wrapf(err, "could not open %s environment", scope)
	}
	k, err := winreg.OpenKey(root, path, winreg.READ|winreg.WRITE)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		err = errors.Wrapf(err, "could not open %s environment", scope)
	}
	return k, err
}

func edit(k winreg.Key, scope Scope, sender broadcast.Sender, dirs []string, fn editFunc) error {
	existing, typ, err := k.GetStringValue(pathValue)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "could not read %s Path", scope)
		}
		existing, typ = "", winreg.EXPAND_SZ
	}

	updated, changed := applyAll(existing, dirs, fn)
	if !changed {
		logrus.Debugf("%s Path already up to date", scope)
		return nil
	}

	if typ == winreg.EXPAND_SZ {
		err = k.SetExpandStringValue(pathValue, updated)
	} else {
		err = k.SetStringValue(pathValue, updated)
	}
	if err != nil {
		return errors.Wrapf(err, "could not write %s Path", scope)
	}

	logrus.Debugf("%s Path updated", scope)
	broadcast.NotifyEnvironment(sender)
	return nil
}

// HasAdminRights reports whether the process is elevated or its token is a
// member of the builtin administrators group.
func HasAdminRights() bool {
	var sid *windows.SID

	// See: https://coolaj86.com/articles/golang-and-windows-and-admins-oh-my/
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid)
	if err != nil {
		logrus.Warnf("SID allocation error: %s", err)
		return false
	}
	defer windows.FreeSid(sid)

	// A zero token makes CheckTokenMembership use the impersonation token
	// of the calling thread, or a duplicate of the primary token.
	token := windows.Token(0)

	member, err := token.IsMember(sid)
	if err != nil {
		logrus.Warnf("Token Membership Error: %s", err)
		return false
	}

	return member || token.IsElevated()
}
