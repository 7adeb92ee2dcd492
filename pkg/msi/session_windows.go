//go:build windows
// +build windows

package msi

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

const (
	ERROR_MORE_DATA     = 234
	INSTALLMESSAGE_INFO = 0x04000000
	IDCANCEL            = 2
)

var (
	msidll                  = windows.NewLazySystemDLL("msi.dll")
	procMsiGetPropertyW     = msidll.NewProc("MsiGetPropertyW")
	procMsiCreateRecord     = msidll.NewProc("MsiCreateRecord")
	procMsiRecordSetStringW = msidll.NewProc("MsiRecordSetStringW")
	procMsiProcessMessage   = msidll.NewProc("MsiProcessMessage")
	procMsiCloseHandle      = msidll.NewProc("MsiCloseHandle")
)

// Installer opens sessions backed by msi.dll.
type Installer struct{}

func (Installer) Open(h Handle, action string) (Session, error) {
	if h == 0 {
		return openFailed(action, ErrInvalidHandle)
	}
	if err := msidll.Load(); err != nil {
		return openFailed(action, errors.Wrap(err, "could not load msi.dll"))
	}

	// Probing a property is the cheapest way to learn whether the
	// installer recognizes the handle.
	if _, err := getProperty(h, "ProductCode"); err != nil {
		return openFailed(action, errors.Wrapf(err, "%s: could not initialize session", action))
	}

	logrus.Debugf("%s: installer session %d opened", action, h)
	return &installerSession{handle: h, action: action}, nil
}

type installerSession struct {
	handle    Handle
	action    string
	cancelled bool
	finalized bool
}

func (s *installerSession) Log(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if err := s.processMessage(INSTALLMESSAGE_INFO, msg); err != nil {
		logrus.Debugf("%s: could not write to the installer log: %v", s.action, err)
	}
}

func (s *installerSession) Finalize(status uint32) uint32 {
	if s.finalized {
		logrus.Warnf("%s: session finalized twice", s.action)
		return status
	}
	s.finalized = true

	if s.cancelled && status == ERROR_SUCCESS {
		status = ERROR_INSTALL_USEREXIT
	}
	logrus.Debugf("%s: installer session %d closed with status %d", s.action, s.handle, status)
	return status
}

func (s *installerSession) processMessage(kind uint32, msg string) error {
	text, err := syscall.UTF16PtrFromString(msg)
	if err != nil {
		return err
	}

	rec, _, _ := procMsiCreateRecord.Call(1)
	if rec == 0 {
		return errors.New("MsiCreateRecord failed")
	}
	defer procMsiCloseHandle.Call(rec)

	ret, _, _ := procMsiRecordSetStringW.Call(rec, 0, uintptr(unsafe.Pointer(text)))
	if ret != ERROR_SUCCESS {
		return syscall.Errno(ret)
	}

	ret, _, _ = procMsiProcessMessage.Call(uintptr(s.handle), uintptr(kind), rec)
	switch int32(ret) {
	case -1:
		return errors.New("MsiProcessMessage failed")
	case IDCANCEL:
		s.cancelled = true
	}
	return nil
}

func getProperty(h Handle, name string) (string, error) {
	namePtr, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return "", err
	}

	var empty uint16
	size := uint32(0)
	ret, _, _ := procMsiGetPropertyW.Call(uintptr(h), uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(&empty)), uintptr(unsafe.Pointer(&size)))
	switch ret {
	case ERROR_SUCCESS:
		return "", nil
	case ERROR_MORE_DATA:
	case ERROR_INVALID_HANDLE:
		return "", ErrInvalidHandle
	default:
		return "", syscall.Errno(ret)
	}

	// size excludes the terminator
	size++
	buf := make([]uint16, size)
	ret, _, _ = procMsiGetPropertyW.Call(uintptr(h), uintptr(unsafe.Pointer(namePtr)),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if ret != ERROR_SUCCESS {
		return "", syscall.Errno(ret)
	}
	return syscall.UTF16ToString(buf), nil
}
