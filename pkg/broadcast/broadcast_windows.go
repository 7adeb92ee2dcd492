//go:build windows
// +build windows

package broadcast

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSendMessageTimeoutA = user32.NewProc("SendMessageTimeoutA")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
)

// User32 broadcasts through SendMessageTimeoutA/W.
type User32 struct{}

func (User32) SendSettingChange(msg Message) error {
	switch msg.Encoding {
	case Narrow:
		area, err := EncodeNarrow(msg.Area)
		if err != nil {
			return err
		}
		err = sendMessageTimeout(procSendMessageTimeoutA, unsafe.Pointer(&area[0]), msg)
		runtime.KeepAlive(area)
		return err
	case Wide:
		area, err := EncodeWide(msg.Area)
		if err != nil {
			return err
		}
		err = sendMessageTimeout(procSendMessageTimeoutW, unsafe.Pointer(&area[0]), msg)
		runtime.KeepAlive(area)
		return err
	default:
		return errors.Errorf("unknown broadcast encoding %s", msg.Encoding)
	}
}

func sendMessageTimeout(proc *windows.LazyProc, area unsafe.Pointer, msg Message) error {
	if err := proc.Find(); err != nil {
		return errors.Wrapf(err, "could not locate %s", proc.Name)
	}

	var result uintptr
	ret, _, err := proc.Call(
		HWND_BROADCAST,
		WM_SETTINGCHANGE,
		0,
		uintptr(area),
		uintptr(msg.Flags),
		uintptr(msg.Timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&result)))
	if ret != 0 {
		return nil
	}

	// A zero return with no last error means a receiver timed out
	if errno, ok := err.(windows.Errno); ok && errno == 0 {
		return ErrTimeout
	}
	return errors.Wrap(err, proc.Name)
}
