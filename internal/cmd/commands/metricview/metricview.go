package metricview

import (
	"flag"
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/internal/demo"
	mv "github.com/hashicorp-forge/geniectl/pkg/metricview"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Create metric views and attach them to spaces"
}

func (c *Command) Help() string {
	return `Usage: geniectl metricview <subcommand> [options] [args]

  This command groups subcommands for Unity Catalog metric views. Creating
  a metric view needs a workspace with the metric views feature enabled.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type CreateCommand struct {
	*base.Command

	conn       base.ConnectionFlags
	flagFile   string
	flagName   string
	flagDryRun bool
}

func (c *CreateCommand) Synopsis() string {
	return "Create or replace a metric view"
}

func (c *CreateCommand) Help() string {
	return `Usage: geniectl metricview create [options]

  Runs CREATE OR REPLACE VIEW ... WITH METRICS for a YAML definition. Without
  -file, the invoice metric view over the example schema is created.` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))
	c.conn.Register(f)
	f.StringVar(&c.flagFile, "file", "", "YAML metric view definition")
	f.StringVar(&c.flagName, "name", demo.MetricViewName,
		"View name; unqualified names use -catalog and -schema")
	f.BoolVar(&c.flagDryRun, "dry-run", false, "Print the DDL without running it")
	return f
}

func (c *CreateCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 0 {
		return c.Fail("create takes no arguments")
	}

	cfg, err := c.LoadConfig(&c.conn)
	if err != nil {
		return c.Fail("error loading config: %v", err)
	}

	def := mv.Invoices(cfg.Catalog, cfg.Schema)
	if c.flagFile != "" {
		if def, err = mv.Load(c.Fs, c.flagFile); err != nil {
			return c.Fail("error loading %s: %v", c.flagFile, err)
		}
	}
	name := base.Qualify(cfg, c.flagName)

	if c.flagDryRun {
		ddl, err := def.DDL(name)
		if err != nil {
			return c.Fail("error rendering DDL: %v", err)
		}
		c.UI.Output(ddl)
		return 0
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	if _, err := mv.Create(ctx, s.Client, name, def); err != nil {
		return c.Fail("error creating metric view: %v", err)
	}
	c.UI.Output(fmt.Sprintf("Created metric view %s", name))
	return 0
}

type AttachCommand struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *AttachCommand) Synopsis() string {
	return "Attach a metric view to a space"
}

func (c *AttachCommand) Help() string {
	return `Usage: geniectl metricview attach [options] <space-id> [name]

  Adds a metric view to the data sources of a space. The name defaults to
  the example invoice metric view. Attaching a view twice is a no-op.` +
		c.Flags().Help()
}

func (c *AttachCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("attach", flag.ContinueOnError))
	c.conn.Register(f)
	return f
}

func (c *AttachCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() < 1 || f.NArg() > 2 {
		return c.Fail("expected arguments: <space-id> [name]")
	}
	spaceID, name := f.Arg(0), demo.MetricViewName
	if f.NArg() == 2 {
		name = f.Arg(1)
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	name = base.Qualify(s.Config, name)
	if _, err := mv.Attach(ctx, s.Syncer, spaceID, name); err != nil {
		return c.Fail("error attaching metric view: %v", err)
	}
	c.UI.Output(fmt.Sprintf("Attached %s to %s", name, spaceID))
	return 0
}
