// Package winpath adds and removes directories in the Windows Path
// environment variable stored in the registry, notifying running processes
// after every change.
package winpath

import (
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/containers/refreshenv/pkg/config"
)

type Scope int

const (
	// User edits HKCU\Environment.
	User Scope = iota
	// Machine edits the system environment under HKLM and needs
	// administrator rights.
	Machine
)

const (
	userEnvironmentKey    = `Environment`
	machineEnvironmentKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
	pathValue             = "Path"
	separator             = ";"
)

var (
	ErrNotSupported = errors.New("editing the windows path is not supported on this platform")
	ErrNotAdmin     = errors.New("administrator rights are required to edit the machine path")
)

func (s Scope) String() string {
	if s == Machine {
		return config.MachineScope
	}
	return config.UserScope
}

// ParseScope maps a config scope name to a Scope.
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(name) {
	case config.UserScope, "":
		return User, nil
	case config.MachineScope:
		return Machine, nil
	}
	return User, errors.Errorf("unknown path scope %q", name)
}

// appendDir returns list with dir added at the end. The second result is false
// when dir was already present, compared case-insensitively, and list is
// returned unchanged.
func appendDir(list, dir string) (string, bool) {
	for _, element := range strings.Split(list, separator) {
		if strings.EqualFold(element, dir) {
			return list, false
		}
	}

	if len(list) > 0 && !strings.HasSuffix(list, separator) {
		list += separator
	}
	return list + dir, true
}

// removeDir returns list without any element matching dir case-insensitively.
// The second result reports whether anything was removed.
func removeDir(list, dir string) (string, bool) {
	var (
		elements []string
		removed  bool
	)
	for _, element := range strings.Split(list, separator) {
		if strings.EqualFold(element, dir) {
			removed = true
			continue
		}
		elements = append(elements, element)
	}
	if !removed {
		return list, false
	}
	return strings.Join(elements, separator), true
}

// editFunc is appendDir or removeDir.
type editFunc func(list, dir string) (string, bool)

// applyAll runs edit for every dir and reports whether the list changed.
func applyAll(list string, dirs []string, edit editFunc) (string, bool) {
	changed := false
	for _, dir := range dirs {
		var ok bool
		list, ok = edit(list, dir)
		changed = changed || ok
	}
	return list, changed
}

// validateDirs checks that every dir can be stored as a single Path element.
func validateDirs(dirs []string) error {
	if len(dirs) == 0 {
		return errors.New("no directories given")
	}

	var result *multierror.Error
	for _, dir := range dirs {
		switch {
		case strings.TrimSpace(dir) == "":
			result = multierror.Append(result, errors.New("empty directory"))
		case strings.Contains(dir, separator):
			result = multierror.Append(result, errors.Errorf("%q contains the path separator %q", dir, separator))
		case !filepath.IsAbs(dir):
			result = multierror.Append(result, errors.Errorf("%q is not an absolute path", dir))
		}
	}
	return result.ErrorOrNil()
}
