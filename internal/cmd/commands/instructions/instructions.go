// Package instructions implements the "context" commands, which edit the
// text instructions, example SQL and sample questions of a space.
package instructions

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage the instructions and sample questions of a space"
}

func (c *Command) Help() string {
	return `Usage: geniectl context <subcommand> [options] [args]

  This command groups subcommands for the context Genie uses to answer
  questions: the text instruction, example question/SQL pairs and the
  sample questions shown in the space. A space has at most one text
  instruction; more text is appended to its content lines.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
