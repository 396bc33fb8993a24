package demo

import (
	"flag"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	runner "github.com/hashicorp-forge/geniectl/internal/demo"
)

type Command struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *Command) Synopsis() string {
	return "Walk through every space operation on a live workspace"
}

func (c *Command) Help() string {
	return `Usage: geniectl demo [options]

  Creates a space with inline measures and context, edits it step by step,
  then creates a second space backed by a metric view when the workspace
  supports them. Both spaces are left in place; remove them with
  "geniectl cleanup". The example tables must already exist in -catalog
  and -schema.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("demo", flag.ContinueOnError))
	c.conn.Register(f)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 0 {
		return c.Fail("demo takes no arguments")
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	r := &runner.Runner{
		Client:  s.Client,
		Syncer:  s.Syncer,
		UI:      c.UI,
		Log:     c.Log,
		Catalog: s.Config.Catalog,
		Schema:  s.Config.Schema,
	}
	if _, err := r.Run(ctx); err != nil {
		return c.Fail("demo failed: %v", err)
	}
	return 0
}
