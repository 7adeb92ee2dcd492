package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/containers/refreshenv/pkg/broadcast"
)

const (
	ERR_BAD_ARGS     = 0x000A
	OPERATION_FAILED = 0x06AC
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Cause() error  { return e.err }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(Execute(os.Args[1:], os.Stderr, broadcast.User32{}))
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stderr io.Writer, sender broadcast.Sender) int {
	opts := &cliOptions{sender: sender, stderr: stderr}
	rootCmd := newRootCommand(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stderr)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if opts.module != nil {
		opts.module.Detach()
	}
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ERR_BAD_ARGS
}
