package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/containers/refreshenv/pkg/broadcast"
	"github.com/containers/refreshenv/pkg/winpath"
)

type pathEdit func(scope winpath.Scope, sender broadcast.Sender, dirs ...string) error

func newPathCommand(opts *cliOptions) *cobra.Command {
	var system bool

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Manage directories in the windows path",
		Long:  "Add or remove directories in the user or machine windows path",
		RunE:  subCommandExists,
	}
	pathCmd.PersistentFlags().BoolVar(&system, "system", false, "Edit the machine path (requires administrator rights)")

	addCmd := &cobra.Command{
		Use:   "add [options] [DIR...]",
		Short: "Add directories to the windows path",
		Long:  "Adds directories to the windows path. Defaults to the directory holding this executable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.editPath(args, system, "Adding", winpath.Add)
		},
		Example: `refreshenv path add
  refreshenv path add --system 'C:\Program Files\Tool\bin'`,
	}

	removeCmd := &cobra.Command{
		Use:   "remove [options] [DIR...]",
		Short: "Remove directories from the windows path",
		Long:  "Removes directories from the windows path. Defaults to the directory holding this executable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.editPath(args, system, "Removing", winpath.Remove)
		},
		Example: `refreshenv path remove`,
	}

	pathCmd.AddCommand(addCmd, removeCmd)
	return pathCmd
}

func (o *cliOptions) editPath(args []string, system bool, verb string, edit pathEdit) error {
	scope, err := winpath.ParseScope(o.config.Path.Scope)
	if err != nil {
		return err
	}
	if system {
		scope = winpath.Machine
	}

	dirs := args
	if len(dirs) == 0 {
		target, err := executableDir()
		if err != nil {
			return &exitError{code: OPERATION_FAILED, err: err}
		}
		dirs = []string{target}
	}

	for _, dir := range dirs {
		logrus.Infof("%s %s path target = %s", verb, scope, dir)
	}
	if err := edit(scope, o.sender, dirs...); err != nil {
		return &exitError{code: OPERATION_FAILED, err: err}
	}
	return nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
