package datasource

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type ReplaceCommand struct {
	*base.Command

	conn   base.ConnectionFlags
	source sourceFlags
}

func (c *ReplaceCommand) Synopsis() string {
	return "Replace the tables or metric views of a space"
}

func (c *ReplaceCommand) Help() string {
	return `Usage: geniectl datasource replace [options] <space-id> <name>...

  Replaces every table (or metric view, with -metric-view) of a space with
  the given list. Column configs of the previous tables are dropped.` +
		c.Flags().Help()
}

func (c *ReplaceCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("replace", flag.ContinueOnError))
	c.conn.Register(f)
	c.source.register(f, true)
	return f
}

func (c *ReplaceCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() < 2 {
		return c.Fail("expected arguments: <space-id> <name>...")
	}
	if c.source.metricView && c.source.entityColumns != "" {
		return c.Fail("entity-columns only applies to tables")
	}
	spaceID := f.Arg(0)

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	section := c.source.section()
	items := c.source.items(s.Config, f.Args()[1:])
	if _, err := s.Syncer.Sync(ctx, spaceID, section, serialized.ReplaceAll(items...)); err != nil {
		return c.Fail("error replacing data sources: %v", err)
	}
	c.UI.Output(fmt.Sprintf("Replaced %s of %s with %d entries", section, spaceID, len(items)))
	return 0
}
