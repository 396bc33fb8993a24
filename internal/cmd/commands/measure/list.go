package measure

import (
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type ListCommand struct {
	*base.Command

	conn base.ConnectionFlags
	kind kindFlags
}

func (c *ListCommand) Synopsis() string {
	return "List the measures of a space"
}

func (c *ListCommand) Help() string {
	return `Usage: geniectl measure list [options] <space-id>

  Lists measures as ID, display name and SQL, in document order.` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ContinueOnError))
	c.conn.Register(f)
	c.kind.register(f)
	return f
}

func (c *ListCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 1 {
		return c.Fail("expected one argument: <space-id>")
	}
	section, err := c.kind.section()
	if err != nil {
		return c.Fail("%v", err)
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	doc, err := s.Syncer.Export(ctx, f.Arg(0))
	if err != nil {
		return c.Fail("error exporting space: %v", err)
	}
	items, err := doc.Items(section)
	if err != nil {
		return c.Fail("error reading %s: %v", section, err)
	}

	for _, it := range items {
		var snippet serialized.Snippet
		if err := it.Decode(&snippet); err != nil {
			return c.Fail("error decoding %s: %v", section, err)
		}
		c.UI.Output(fmt.Sprintf("%s  %s  %s", snippet.ID, snippet.DisplayName, strings.Join(snippet.SQL, "")))
	}
	return 0
}
