package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/containers/refreshenv/pkg/broadcast"
	"github.com/containers/refreshenv/pkg/config"
	"github.com/containers/refreshenv/pkg/customaction"
	"github.com/containers/refreshenv/pkg/msi"
)

type cliOptions struct {
	configPath string
	logLevel   string
	logFile    string

	sender broadcast.Sender
	stderr io.Writer
	config *config.Config
	module *customaction.Module
}

func newRootCommand(opts *cliOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "refreshenv",
		Short: "Tell running programs that the environment changed",
		Long: `Broadcasts WM_SETTINGCHANGE for "Environment" so that Explorer and new
shells pick up modified environment variables without a reboot.

Without a command, runs the RefreshEnvironmentVariables custom action outside
of an installer session. The exit code is the installer status.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.setup,
		RunE:              opts.refresh,
		Example: `refreshenv
  refreshenv --log-level debug
  refreshenv path add 'C:\Program Files\Tool\bin'`,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to the config file (default $"+config.EnvVar+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log messages above specified level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.logFile, "log-file", "", "Write log messages to this file instead of stderr")

	rootCmd.AddCommand(newPathCommand(opts))
	return rootCmd
}

func (o *cliOptions) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.config = cfg

	o.module = customaction.NewModule(customaction.Options{
		Config: cfg,
		Opener: msi.Standalone{},
		Sender: o.sender,
		Output: o.stderr,
	})
	if err := o.module.Attach(0); err != nil {
		logrus.Warn(err)
	}
	return nil
}

func (o *cliOptions) refresh(cmd *cobra.Command, args []string) error {
	status := o.module.RefreshEnvironmentVariables(0)
	if status != msi.ERROR_SUCCESS {
		return &exitError{
			code: int(status),
			err:  errors.Errorf("%s failed with status %d", o.config.Action.Name, status),
		}
	}
	return nil
}
