package customaction

import (
	"github.com/containers/refreshenv/pkg/broadcast"
	"github.com/containers/refreshenv/pkg/msi"
)

// RefreshEnvironmentVariables tells running processes that the environment
// block changed. It returns ERROR_SUCCESS, or ERROR_INSTALL_FAILURE when the
// installer session could not be initialized, in which case nothing is
// broadcast. The session is finalized exactly once on every path.
func (m *Module) RefreshEnvironmentVariables(h msi.Handle) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	action := m.config.Action.Name
	if !m.attached {
		m.logger.Errorf("%s: %v", action, ErrNotAttached)
		return msi.ERROR_INSTALL_FAILURE
	}

	status := uint32(msi.ERROR_SUCCESS)
	sess, err := m.opener.Open(h, action)
	if err != nil {
		m.logger.Errorf("%s: failed to initialize: %v", action, err)
		status = msi.ERROR_INSTALL_FAILURE
	} else {
		sess.Log("Initialized.")
		broadcast.NotifyEnvironment(m.sender)
	}

	if sess == nil {
		return status
	}
	return sess.Finalize(status)
}
