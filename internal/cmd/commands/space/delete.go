package space

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
)

type DeleteCommand struct {
	*base.Command

	conn    base.ConnectionFlags
	flagYes bool
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete a space"
}

func (c *DeleteCommand) Help() string {
	return `Usage: geniectl space delete [options] <space-id>

  Deletes a space after asking for confirmation.` +
		c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("delete", flag.ContinueOnError))
	c.conn.Register(f)
	f.BoolVar(&c.flagYes, "yes", false, "Skip the confirmation prompt")
	return f
}

func (c *DeleteCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 1 {
		return c.Fail("expected one argument: <space-id>")
	}
	spaceID := f.Arg(0)

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	space, err := s.Client.GetSpace(ctx, spaceID)
	if err != nil {
		return c.Fail("error getting space: %v", err)
	}

	if !c.flagYes {
		ok, err := c.Confirm(fmt.Sprintf("Delete space %q (%s)?", space.Title, spaceID))
		if err != nil {
			return c.Fail("error reading confirmation: %v", err)
		}
		if !ok {
			c.UI.Output("Aborted.")
			return 0
		}
	}

	if err := s.Client.DeleteSpace(ctx, spaceID); err != nil {
		return c.Fail("error deleting space: %v", err)
	}
	c.UI.Output(fmt.Sprintf("Deleted %s", spaceID))
	return 0
}
