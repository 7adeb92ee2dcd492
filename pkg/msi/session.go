// Package msi provides the per-invocation installer session used by custom
// actions to correlate their log output with the running install.
package msi

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Handle is the MSIHANDLE the installer passes to a custom action.
type Handle uint32

const (
	ERROR_SUCCESS          = 0
	ERROR_INVALID_HANDLE   = 6
	ERROR_INSTALL_USEREXIT = 1602
	ERROR_INSTALL_FAILURE  = 1603
)

var (
	ErrNotSupported  = errors.New("windows installer sessions are not supported on this platform")
	ErrInvalidHandle = errors.New("invalid installer handle")
)

// Session is the logging context of one custom action invocation.
type Session interface {
	// Log writes an informational entry to the installer log.
	Log(format string, args ...interface{})
	// Finalize releases the session and returns the status the custom
	// action should hand back to the installer.
	Finalize(status uint32) uint32
}

// Opener acquires a session for a custom action.
//
// Open always returns a non-nil Session, including when it also returns an
// error, so callers can finalize unconditionally.
type Opener interface {
	Open(h Handle, action string) (Session, error)
}

// Standalone opens sessions that log through logrus instead of an installer.
// It is used when the action runs outside of msiexec, e.g. as an EXE custom
// action or from the command line.
type Standalone struct {
	Logger *logrus.Logger
}

func (s Standalone) Open(h Handle, action string) (Session, error) {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &standaloneSession{
		entry: logger.WithField("action", action),
	}, nil
}

type standaloneSession struct {
	entry     *logrus.Entry
	finalized bool
}

func (s *standaloneSession) Log(format string, args ...interface{}) {
	s.entry.Info(fmt.Sprintf(format, args...))
}

func (s *standaloneSession) Finalize(status uint32) uint32 {
	if s.finalized {
		logrus.Warnf("session for %v finalized twice", s.entry.Data["action"])
		return status
	}
	s.finalized = true
	s.entry.Debugf("exiting with status %d", status)
	return status
}

// failedSession is returned alongside an Open error. Logging is dropped and
// Finalize reports failure regardless of the status passed in.
type failedSession struct {
	action string
	err    error
}

func (f *failedSession) Log(format string, args ...interface{}) {}

func (f *failedSession) Finalize(status uint32) uint32 {
	logrus.Debugf("%s: session was never initialized: %v", f.action, f.err)
	return ERROR_INSTALL_FAILURE
}

func openFailed(action string, err error) (Session, error) {
	return &failedSession{action: action, err: err}, err
}
