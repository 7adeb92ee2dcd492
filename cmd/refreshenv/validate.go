package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// subCommandExists returns an error if no sub command is provided
func subCommandExists(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		suggestions := cmd.SuggestionsFor(args[0])
		if len(suggestions) == 0 {
			return errors.Errorf("unrecognized command `%[1]s %[2]s`\nTry '%[1]s --help' for more information.", cmd.CommandPath(), args[0])
		}
		return errors.Errorf("unrecognized command `%[1]s %[2]s`\n\nDid you mean this?\n\t%[3]s\n\nTry '%[1]s --help' for more information.", cmd.CommandPath(), args[0], strings.Join(suggestions, "\n\t"))
	}
	_ = cmd.Help()
	return errors.Errorf("missing command '%[1]s COMMAND'", cmd.CommandPath())
}
