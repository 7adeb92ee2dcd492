// Package broadcast sends the WM_SETTINGCHANGE notification that tells
// top-level windows (Explorer, shells) to re-read a configuration area such
// as the environment block.
package broadcast

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	HWND_BROADCAST   = 0xFFFF
	WM_SETTINGCHANGE = 0x001A
	SMTO_ABORTIFHUNG = 0x0002

	// Environment is the area name receivers compare against before
	// reloading environment variables.
	Environment = "Environment"

	// DefaultTimeout bounds how long a single window may hold up the
	// broadcast before it is skipped.
	DefaultTimeout = 5000 * time.Millisecond
)

var (
	ErrNotSupported = errors.New("setting change broadcast is not supported on this platform")
	ErrTimeout      = errors.New("setting change broadcast timed out")
)

// Encoding selects the character width of the area string carried in
// lParam.
type Encoding int

const (
	// Narrow sends an 8-bit string through SendMessageTimeoutA.
	Narrow Encoding = iota
	// Wide sends a UTF-16 string through SendMessageTimeoutW.
	Wide
)

func (e Encoding) String() string {
	switch e {
	case Narrow:
		return "narrow"
	case Wide:
		return "wide"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// Message describes one WM_SETTINGCHANGE broadcast.
type Message struct {
	Area     string
	Encoding Encoding
	Flags    uint32
	Timeout  time.Duration
}

// SettingChange returns the abort-if-hung message for area with the
// default timeout.
func SettingChange(area string, enc Encoding) Message {
	return Message{
		Area:     area,
		Encoding: enc,
		Flags:    SMTO_ABORTIFHUNG,
		Timeout:  DefaultTimeout,
	}
}

// Sender delivers a setting change message to all top-level windows.
type Sender interface {
	SendSettingChange(msg Message) error
}

// NotifyEnvironment broadcasts the "Environment" area twice, narrow first
// and then wide, since some receivers only honor one of the two. Delivery
// is best effort: failures are traced and never stop the second send.
func NotifyEnvironment(s Sender) {
	for _, enc := range []Encoding{Narrow, Wide} {
		msg := SettingChange(Environment, enc)
		if err := s.SendSettingChange(msg); err != nil {
			logrus.Debugf("%s broadcast of %q: %v", enc, msg.Area, err)
			continue
		}
		logrus.Debugf("%s broadcast of %q delivered", enc, msg.Area)
	}
}
