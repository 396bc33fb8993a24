package cleanup

import (
	"flag"
	"fmt"

	examples "github.com/hashicorp-forge/geniectl/internal/cleanup"
	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

type Command struct {
	*base.Command

	conn       base.ConnectionFlags
	flagTables bool
	flagSchema bool
	flagYes    bool
}

func (c *Command) Synopsis() string {
	return "Delete the spaces and objects created by the examples"
}

func (c *Command) Help() string {
	return `Usage: geniectl cleanup [options]

  Finds spaces whose title matches one of the example titles and deletes
  them after confirmation. With -drop-tables the example tables and metric
  view are dropped too, and with -drop-schema the example schema.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("cleanup", flag.ContinueOnError))
	c.conn.Register(f)
	f.BoolVar(&c.flagTables, "drop-tables", false, "Also drop the example tables and views")
	f.BoolVar(&c.flagSchema, "drop-schema", false, "Also drop the example schema named by -schema")
	f.BoolVar(&c.flagYes, "yes", false, "Skip the confirmation prompt")
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 0 {
		return c.Fail("cleanup takes no arguments")
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}
	cleaner := examples.New(s.Client, c.Log, s.Config.Catalog, s.Config.Schema)

	spaces, err := cleaner.FindSpaces(ctx)
	if err != nil {
		return c.Fail("error finding spaces: %v", err)
	}
	if len(spaces) == 0 && !c.flagTables && !c.flagSchema {
		c.UI.Output("No example spaces found.")
		return 0
	}

	c.UI.Output(fmt.Sprintf("Found %d example space(s):", len(spaces)))
	for _, sp := range spaces {
		c.UI.Output(fmt.Sprintf("  %s  %s", sp.SpaceID, sp.Title))
	}
	if c.flagTables {
		c.UI.Output(fmt.Sprintf("Objects to drop in %s.%s: %v", s.Config.Catalog, s.Config.Schema, examples.Objects))
	}
	if c.flagSchema {
		c.UI.Output(fmt.Sprintf("Schema to drop: %s.%s", s.Config.Catalog, s.Config.Schema))
	}

	if !c.flagYes {
		ok, err := c.Confirm("Proceed?")
		if err != nil {
			return c.Fail("error reading confirmation: %v", err)
		}
		if !ok {
			c.UI.Output("Aborted.")
			return 0
		}
	}

	code := 0
	if err := cleaner.DeleteSpaces(ctx, spaces); err != nil {
		c.UI.Error(fmt.Sprintf("error deleting spaces: %v", err))
		code = 1
	}

	if c.flagTables {
		results, err := cleaner.DropObjects(ctx)
		for _, r := range results {
			c.UI.Output(fmt.Sprintf("  DROP %s: %s", r.Object, r.State))
			if r.State != genie.StatementSucceeded {
				code = 1
			}
		}
		if err != nil {
			c.UI.Error(fmt.Sprintf("error dropping objects: %v", err))
			return 1
		}
	}

	if c.flagSchema {
		r, err := cleaner.DropSchema(ctx)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error dropping schema: %v", err))
			return 1
		}
		c.UI.Output(fmt.Sprintf("  DROP SCHEMA %s: %s", r.Object, r.State))
		if r.State != genie.StatementSucceeded {
			code = 1
		}
	}

	if code == 0 {
		c.UI.Output("Cleanup complete.")
	}
	return code
}
