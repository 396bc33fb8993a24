package sql

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

type Command struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *Command) Synopsis() string {
	return "Run a SQL statement on the configured warehouse"
}

func (c *Command) Help() string {
	return `Usage: geniectl sql [options] <statement>

  Runs one statement on the SQL warehouse and prints the result rows as
  tab-separated values with a header line. A statement that does not
  succeed exits 1.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("sql", flag.ContinueOnError))
	c.conn.Register(f)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() == 0 {
		return c.Fail("expected a statement")
	}
	statement := strings.Join(f.Args(), " ")

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	resp, err := s.Client.ExecuteSQL(ctx, statement)
	if err != nil {
		return c.Fail("error running statement: %v", err)
	}
	if err := resp.Err(); err != nil {
		return c.Fail("%v", err)
	}

	printRows(c, resp)
	return 0
}

func printRows(c *Command, resp *genie.StatementResponse) {
	if resp.Manifest == nil {
		c.UI.Output(string(resp.Status.State))
		return
	}

	columns := append([]genie.Column(nil), resp.Manifest.Schema.Columns...)
	sort.SliceStable(columns, func(i, j int) bool { return columns[i].Position < columns[j].Position })

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	c.UI.Output(strings.Join(header, "\t"))

	for _, row := range resp.Rows() {
		values := make([]string, len(columns))
		for i, col := range columns {
			if v := row[col.Name]; v != nil {
				values[i] = fmt.Sprint(v)
			} else {
				values[i] = "NULL"
			}
		}
		c.UI.Output(strings.Join(values, "\t"))
	}
}
