package datasource

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type AddCommand struct {
	*base.Command

	conn   base.ConnectionFlags
	source sourceFlags
}

func (c *AddCommand) Synopsis() string {
	return "Add tables or metric views to a space"
}

func (c *AddCommand) Help() string {
	return `Usage: geniectl datasource add [options] <space-id> <name>...

  Adds data sources to a space. Adding one that is already present, or
  going over the data source limit, fails without writing.` +
		c.Flags().Help()
}

func (c *AddCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("add", flag.ContinueOnError))
	c.conn.Register(f)
	c.source.register(f, true)
	return f
}

func (c *AddCommand) Run(args []string) int {
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
	if _, err := s.Syncer.Sync(ctx, spaceID, section, serialized.Insert(items...)); err != nil {
		return c.Fail("error adding data sources: %v", err)
	}
	for _, it := range items {
		c.UI.Output(fmt.Sprintf("Added %s", it.Key(section)))
	}
	return 0
}
