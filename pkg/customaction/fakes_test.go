package customaction

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/containers/refreshenv/pkg/broadcast"
	"github.com/containers/refreshenv/pkg/msi"
)

type fakeSession struct {
	logs      []string
	finalized []uint32
}

func (s *fakeSession) Log(format string, args ...interface{}) {
	s.logs = append(s.logs, fmt.Sprintf(format, args...))
}

func (s *fakeSession) Finalize(status uint32) uint32 {
	s.finalized = append(s.finalized, status)
	return status
}

type fakeOpener struct {
	fail     bool
	handles  []msi.Handle
	actions  []string
	sessions []*fakeSession
}

func (o *fakeOpener) Open(h msi.Handle, action string) (msi.Session, error) {
	o.handles = append(o.handles, h)
	o.actions = append(o.actions, action)
	s := &fakeSession{}
	o.sessions = append(o.sessions, s)
	if o.fail {
		return s, errors.Wrap(msi.ErrInvalidHandle, "open")
	}
	return s, nil
}

type fakeSender struct {
	sent []broadcast.Message
	err  error
}

func (f *fakeSender) SendSettingChange(msg broadcast.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}
