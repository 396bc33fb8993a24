package measure

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type AddCommand struct {
	*base.Command

	conn     base.ConnectionFlags
	kind     kindFlags
	flagName string
	flagSQL  string
}

func (c *AddCommand) Synopsis() string {
	return "Add a measure to a space"
}

func (c *AddCommand) Help() string {
	return `Usage: geniectl measure add [options] -name <name> -sql <expr> <space-id>

  Adds a measure with a fresh ID. Other sections of the space are written
  back unchanged. Prints the new ID.` +
		c.Flags().Help()
}

func (c *AddCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("add", flag.ContinueOnError))
	c.conn.Register(f)
	c.kind.register(f)
	f.StringVar(&c.flagName, "name", "", "Display name")
	f.StringVar(&c.flagSQL, "sql", "", "(Required) SQL expression")
	return f
}

func (c *AddCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 1 {
		return c.Fail("expected one argument: <space-id>")
	}
	if c.flagSQL == "" {
		return c.Fail("sql flag is required")
	}
	section, err := c.kind.section()
	if err != nil {
		return c.Fail("%v", err)
	}
	spaceID := f.Arg(0)

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	item := newSnippet(section, c.flagName, c.flagSQL)
	if _, err := s.Syncer.Sync(ctx, spaceID, section, serialized.Insert(item)); err != nil {
		return c.Fail("error adding %s: %v", c.kind.kind, err)
	}
	c.UI.Output(item.Str("id"))
	c.UI.Info(fmt.Sprintf("Added %s %q to %s", c.kind.kind, c.flagName, spaceID))
	return 0
}
