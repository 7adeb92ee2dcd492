// Package customaction implements the RefreshEnvironmentVariables Windows
// Installer custom action and the module lifecycle that hosts it.
//
// The process-wide logging state a custom action DLL sets up on load is held
// by a Module value instead of package globals, so hosts (the DLL, the
// command line tool, tests) create it, attach it, and pass it around
// explicitly.
package customaction

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/containers/refreshenv/pkg/broadcast"
	"github.com/containers/refreshenv/pkg/config"
	"github.com/containers/refreshenv/pkg/logging"
	"github.com/containers/refreshenv/pkg/msi"
)

// Loader notification reasons, as passed to DllMain.
const (
	DLL_PROCESS_DETACH = 0
	DLL_PROCESS_ATTACH = 1
	DLL_THREAD_ATTACH  = 2
	DLL_THREAD_DETACH  = 3
)

var ErrNotAttached = errors.New("custom action module is not attached")

type Options struct {
	Config *config.Config
	Opener msi.Opener
	Sender broadcast.Sender
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
	// Output receives log lines when no log file is configured. Defaults
	// to stderr.
	Output io.Writer
}

// Module is the global state of a loaded custom action library.
type Module struct {
	mu     sync.RWMutex
	config *config.Config
	opener msi.Opener
	sender broadcast.Sender
	logger *logrus.Logger
	output io.Writer

	instance uintptr
	attached bool
	closer   io.Closer
}

func NewModule(opts Options) *Module {
	m := &Module{
		config: opts.Config,
		opener: opts.Opener,
		sender: opts.Sender,
		logger: opts.Logger,
		output: opts.Output,
	}
	if m.config == nil {
		m.config = config.Default()
	}
	if m.logger == nil {
		m.logger = logrus.StandardLogger()
	}
	if m.output == nil {
		m.output = os.Stderr
	}
	return m
}

// Main handles a loader notification. Process attach and detach set up and
// tear down the module state; every other reason is ignored. Main always
// reports success to the loader.
func (m *Module) Main(instance uintptr, reason uint32) bool {
	switch reason {
	case DLL_PROCESS_ATTACH:
		if err := m.Attach(instance); err != nil {
			m.logger.Warnf("Module attach: %v", err)
		}
	case DLL_PROCESS_DETACH:
		m.Detach()
	}
	return true
}

// Attach initializes logging for the module loaded at instance. If the
// configured log file cannot be opened, logging falls back to the default
// output and the error is returned; the module is attached either way.
func (m *Module) Attach(instance uintptr) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attached {
		return nil
	}

	closer, err := logging.Setup(m.logger, m.config.Log, m.output)
	if err != nil {
		fallback := m.config.Log
		fallback.File = ""
		closer, _ = logging.Setup(m.logger, fallback, m.output)
		if closer == nil {
			m.logger.SetOutput(m.output)
		}
		err = errors.Wrap(err, "falling back to default log output")
	}

	m.instance = instance
	m.closer = closer
	m.attached = true
	m.logger.Debugf("Module %#x attached", instance)
	return err
}

// Detach releases the state set up by Attach. It is a no-op when the module
// is not attached.
func (m *Module) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.attached {
		return
	}
	m.logger.Debugf("Module %#x detached", m.instance)
	if m.closer != nil {
		if err := m.closer.Close(); err != nil {
			m.logger.SetOutput(m.output)
			m.logger.Warnf("Closing log output: %v", err)
		}
		m.closer = nil
	}
	m.logger.SetOutput(io.Discard)
	m.instance = 0
	m.attached = false
}

func (m *Module) Attached() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attached
}

func (m *Module) Instance() uintptr {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instance
}

func (m *Module) Config() *config.Config {
	return m.config
}
