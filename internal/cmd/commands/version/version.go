package version

import (
	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	buildinfo "github.com/hashicorp-forge/geniectl/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the geniectl version"
}

func (c *Command) Help() string {
	return `Usage: geniectl version`
}

func (c *Command) Run(args []string) int {
	c.UI.Output("geniectl " + buildinfo.Version)
	return 0
}
