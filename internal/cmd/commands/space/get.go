package space

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type GetCommand struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *GetCommand) Synopsis() string {
	return "Show a space and its section counts"
}

func (c *GetCommand) Help() string {
	return `Usage: geniectl space get [options] <space-id>

  Shows the metadata of a space and the number of entries in each section
  of its serialized document. Reading the document needs CAN_EDIT.` +
		c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("get", flag.ContinueOnError))
	c.conn.Register(f)
	return f
}

func (c *GetCommand) Run(args []string) int {
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

	space, err := s.Client.ExportSpace(ctx, spaceID)
	if err != nil {
		return c.Fail("error getting space: %v", err)
	}
	doc, err := serialized.Parse([]byte(space.SerializedSpace))
	if err != nil {
		return c.Fail("error parsing space %s: %v", spaceID, err)
	}

	c.UI.Output(fmt.Sprintf("ID:          %s", space.SpaceID))
	c.UI.Output(fmt.Sprintf("Title:       %s", space.Title))
	if space.Description != "" {
		c.UI.Output(fmt.Sprintf("Description: %s", space.Description))
	}
	c.UI.Output(fmt.Sprintf("Warehouse:   %s", space.WarehouseID))
	c.UI.Output(fmt.Sprintf("URL:         %s", s.Client.SpaceURL(space.SpaceID)))
	c.UI.Output("")
	c.UI.Output("Sections:")
	for _, section := range serialized.Sections() {
		items, err := doc.Items(section)
		if err != nil {
			return c.Fail("error reading %s: %v", section, err)
		}
		c.UI.Output(fmt.Sprintf("  %-22s %d", section.String(), len(items)))
	}
	return 0
}
