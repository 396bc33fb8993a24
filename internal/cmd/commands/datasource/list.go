package datasource

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type ListCommand struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *ListCommand) Synopsis() string {
	return "List the data sources of a space"
}

func (c *ListCommand) Help() string {
	return `Usage: geniectl datasource list [options] <space-id>

  Lists tables and metric views with their kind and the number of
  configured columns.` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ContinueOnError))
	c.conn.Register(f)
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

	tables, err := doc.Items(serialized.Tables)
	if err != nil {
		return c.Fail("error reading tables: %v", err)
	}
	for _, it := range tables {
		var t serialized.Table
		if err := it.Decode(&t); err != nil {
			return c.Fail("error decoding table: %v", err)
		}
		line := fmt.Sprintf("table        %s", t.Identifier)
		if n := len(t.ColumnConfigs); n > 0 {
			line += fmt.Sprintf(" (%d column configs)", n)
		}
		c.UI.Output(line)
	}

	views, err := doc.Items(serialized.MetricViews)
	if err != nil {
		return c.Fail("error reading metric views: %v", err)
	}
	for _, it := range views {
		c.UI.Output(fmt.Sprintf("metric_view  %s", it.Key(serialized.MetricViews)))
	}
	return 0
}
