package measure

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type RemoveCommand struct {
	*base.Command

	conn base.ConnectionFlags
	kind kindFlags
}

func (c *RemoveCommand) Synopsis() string {
	return "Remove measures from a space"
}

func (c *RemoveCommand) Help() string {
	return `Usage: geniectl measure remove [options] <space-id> <id>...

  Removes the measures with the given IDs. Nothing is written when any ID
  is missing.` +
		c.Flags().Help()
}

func (c *RemoveCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("remove", flag.ContinueOnError))
	c.conn.Register(f)
	c.kind.register(f)
	return f
}

func (c *RemoveCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() < 2 {
		return c.Fail("expected arguments: <space-id> <id>...")
	}
	section, err := c.kind.section()
	if err != nil {
		return c.Fail("%v", err)
	}
	spaceID, ids := f.Arg(0), f.Args()[1:]

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	if _, err := s.Syncer.Sync(ctx, spaceID, section, serialized.Remove(ids...)); err != nil {
		return c.Fail("error removing %s: %v", c.kind.kind, err)
	}
	c.UI.Output(fmt.Sprintf("Removed %d %s(s) from %s", len(ids), c.kind.kind, spaceID))
	return 0
}
