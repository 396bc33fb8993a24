package datasource

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type RemoveCommand struct {
	*base.Command

	conn   base.ConnectionFlags
	source sourceFlags
}

func (c *RemoveCommand) Synopsis() string {
	return "Remove tables or metric views from a space"
}

func (c *RemoveCommand) Help() string {
	return `Usage: geniectl datasource remove [options] <space-id> <name>...

  Removes data sources from a space. Nothing is written when any of them
  is not present.` +
		c.Flags().Help()
}

func (c *RemoveCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("remove", flag.ContinueOnError))
	c.conn.Register(f)
	c.source.register(f, false)
	return f
}

func (c *RemoveCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() < 2 {
		return c.Fail("expected arguments: <space-id> <name>...")
	}
	spaceID := f.Arg(0)

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	names := c.source.qualify(s.Config, f.Args()[1:])
	if _, err := s.Syncer.Sync(ctx, spaceID, c.source.section(), serialized.Remove(names...)); err != nil {
		return c.Fail("error removing data sources: %v", err)
	}
	for _, name := range names {
		c.UI.Output(fmt.Sprintf("Removed %s", name))
	}
	return 0
}
