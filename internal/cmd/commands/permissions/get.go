package permissions

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
)

type GetCommand struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *GetCommand) Synopsis() string {
	return "Show the permissions of a space"
}

func (c *GetCommand) Help() string {
	return `Usage: geniectl permissions get [options] <space-id>

  Prints each principal with the levels it holds, marking inherited ones.` +
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

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	perms, err := s.Client.GetPermissions(ctx, f.Arg(0))
	if err != nil {
		return c.Fail("error getting permissions: %v", err)
	}
	printACL(c.UI, perms)
	return 0
}

type LevelsCommand struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *LevelsCommand) Synopsis() string {
	return "List the permission levels assignable on a space"
}

func (c *LevelsCommand) Help() string {
	return `Usage: geniectl permissions levels [options] <space-id>` +
		c.Flags().Help()
}

func (c *LevelsCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("levels", flag.ContinueOnError))
	c.conn.Register(f)
	return f
}

func (c *LevelsCommand) Run(args []string) int {
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

	levels, err := s.Client.GetPermissionLevels(ctx, f.Arg(0))
	if err != nil {
		return c.Fail("error getting permission levels: %v", err)
	}
	for _, l := range levels.PermissionLevels {
		c.UI.Output(fmt.Sprintf("%-11s %s", l.PermissionLevel, l.Description))
	}
	return 0
}
