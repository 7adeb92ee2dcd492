// Package logging configures the process-wide logrus logger from the
// refreshenv configuration.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/containers/refreshenv/pkg/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup applies cfg to logger. Output goes to cfg.File when set, otherwise
// to out. The returned closer releases the log file, if one was opened.
func Setup(logger *logrus.Logger, cfg config.LogConfig, out io.Writer) (io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "could not open log file %s", cfg.File)
		}
		out = f
		closer = f
	}

	logger.SetLevel(level)
	logger.SetOutput(out)
	switch cfg.Format {
	case config.JSONFormat:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: !isTerminal(out),
			FullTimestamp: true,
		})
	}
	return closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
