package permissions

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
)

type GrantCommand struct {
	*base.Command

	conn base.ConnectionFlags
}

func (c *GrantCommand) Synopsis() string {
	return "Add grants to a space"
}

func (c *GrantCommand) Help() string {
	return `Usage: geniectl permissions grant [options] <space-id> <grant>...

  Merges the grants into the existing permissions. Principals that are not
  named keep their levels.` +
		c.Flags().Help()
}

func (c *GrantCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("grant", flag.ContinueOnError))
	c.conn.Register(f)
	return f
}

func (c *GrantCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() < 2 {
		return c.Fail("expected arguments: <space-id> <grant>...")
	}
	acl, err := parseGrants(f.Args()[1:])
	if err != nil {
		return c.Fail("%v", err)
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	perms, err := s.Client.UpdatePermissions(ctx, f.Arg(0), acl...)
	if err != nil {
		return c.Fail("error granting permissions: %v", err)
	}
	printACL(c.UI, perms)
	return 0
}

type ReplaceCommand struct {
	*base.Command

	conn    base.ConnectionFlags
	flagYes bool
}

func (c *ReplaceCommand) Synopsis() string {
	return "Replace the direct grants of a space"
}

func (c *ReplaceCommand) Help() string {
	return `Usage: geniectl permissions replace [options] <space-id> <grant>...

  Replaces every direct grant on the space with the given list. Inherited
  permissions are not affected. Leaving out the owner can lock them out,
  so a confirmation is asked for unless -yes is set.` +
		c.Flags().Help()
}

func (c *ReplaceCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("replace", flag.ContinueOnError))
	c.conn.Register(f)
	f.BoolVar(&c.flagYes, "yes", false, "Skip the confirmation prompt")
	return f
}

func (c *ReplaceCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() < 2 {
		return c.Fail("expected arguments: <space-id> <grant>...")
	}
	spaceID := f.Arg(0)
	acl, err := parseGrants(f.Args()[1:])
	if err != nil {
		return c.Fail("%v", err)
	}

	if !c.flagYes {
		ok, err := c.Confirm(fmt.Sprintf("Replace all direct grants on %s with %d entries?", spaceID, len(acl)))
		if err != nil {
			return c.Fail("error reading confirmation: %v", err)
		}
		if !ok {
			c.UI.Output("Aborted.")
			return 0
		}
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	perms, err := s.Client.SetPermissions(ctx, spaceID, acl...)
	if err != nil {
		return c.Fail("error replacing permissions: %v", err)
	}
	printACL(c.UI, perms)
	return 0
}
