package space

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage Genie spaces"
}

func (c *Command) Help() string {
	return `Usage: geniectl space <subcommand> [options] [args]

  This command groups subcommands for creating, inspecting, exporting and
  deleting Genie spaces.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
