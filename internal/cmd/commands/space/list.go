package space

import (
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp-forge/geniectl/internal/cleanup"
	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
)

type ListCommand struct {
	*base.Command

	conn       base.ConnectionFlags
	flagFilter string
}

func (c *ListCommand) Synopsis() string {
	return "List spaces"
}

func (c *ListCommand) Help() string {
	return `Usage: geniectl space list [options]

  Lists every space the caller can access, one per line as ID and title.` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ContinueOnError))
	c.conn.Register(f)
	f.StringVar(&c.flagFilter, "filter", "",
		"Only list spaces whose title contains this text, ignoring case")
	return f
}

func (c *ListCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 0 {
		return c.Fail("list takes no arguments")
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	spaces, err := s.Client.ListSpaces(ctx)
	if err != nil {
		return c.Fail("error listing spaces: %v", err)
	}

	width := 0
	for _, sp := range spaces {
		width = max(width, len(sp.SpaceID))
	}
	for _, sp := range spaces {
		if c.flagFilter != "" && !cleanup.Matches(sp.Title, []string{c.flagFilter}) {
			continue
		}
		c.UI.Output(fmt.Sprintf("%-*s  %s", width, sp.SpaceID, strings.TrimSpace(sp.Title)))
	}
	return 0
}
