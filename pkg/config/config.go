// Package config loads the optional refreshenv TOML configuration.
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EnvVar names the environment variable consulted for a config path when
// none is given explicitly.
const EnvVar = "REFRESHENV_CONF"

const (
	UserScope    = "user"
	MachineScope = "machine"

	TextFormat = "text"
	JSONFormat = "json"

	DefaultActionName = "RefreshEnvironmentVariables"
)

type Config struct {
	Log    LogConfig    `toml:"log"`
	Action ActionConfig `toml:"action"`
	Path   PathConfig   `toml:"path"`
}

type LogConfig struct {
	// Level is a logrus level name
	Level string `toml:"level"`
	// File receives log output when set; otherwise the host default is used
	File   string `toml:"file"`
	Format string `toml:"format"`
}

type ActionConfig struct {
	// Name correlates installer log entries with this action
	Name string `toml:"name"`
}

type PathConfig struct {
	Scope string `toml:"scope"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  logrus.InfoLevel.String(),
			Format: TextFormat,
		},
		Action: ActionConfig{
			Name: DefaultActionName,
		},
		Path: PathConfig{
			Scope: UserScope,
		},
	}
}

// Load reads the file at path over the defaults. An empty path falls back
// to $REFRESHENV_CONF, and to the defaults alone if that is unset too.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, errors.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	logrus.Debugf("loaded config from %s", path)
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case TextFormat, JSONFormat:
	default:
		return errors.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Path.Scope {
	case UserScope, MachineScope:
	default:
		return errors.Errorf("unknown path scope %q", c.Path.Scope)
	}
	if strings.TrimSpace(c.Action.Name) == "" {
		return errors.New("action name must not be empty")
	}
	return nil
}
