package permissions

import (
	"fmt"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage who can use a space"
}

func (c *Command) Help() string {
	return `Usage: geniectl permissions <subcommand> [options] [args]

  This command groups subcommands for the access control list of a space.
  Grants are written as <kind>:<name>=<level>, where kind is user, group or
  sp (service principal) and level is CAN_READ, CAN_RUN, CAN_EDIT or
  CAN_MANAGE. For example:

      group:users=CAN_RUN
      user:analyst@example.com=CAN_EDIT`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// ParseGrant parses a <kind>:<name>=<level> grant.
func ParseGrant(s string) (genie.AccessControlRequest, error) {
	principal, levelName, ok := strings.Cut(s, "=")
	if !ok {
		return genie.AccessControlRequest{}, fmt.Errorf("grant %q: expected <kind>:<name>=<level>", s)
	}
	kind, name, ok := strings.Cut(principal, ":")
	if !ok || name == "" {
		return genie.AccessControlRequest{}, fmt.Errorf("grant %q: expected <kind>:<name>=<level>", s)
	}

	level, err := genie.ParsePermissionLevel(levelName)
	if err != nil {
		return genie.AccessControlRequest{}, fmt.Errorf("grant %q: %w", s, err)
	}

	switch strings.ToLower(kind) {
	case "user":
		return genie.GrantUser(name, level), nil
	case "group":
		return genie.GrantGroup(name, level), nil
	case "sp", "service-principal", "service_principal":
		return genie.GrantServicePrincipal(name, level), nil
	}
	return genie.AccessControlRequest{}, fmt.Errorf("grant %q: unknown principal kind %q", s, kind)
}

func parseGrants(args []string) ([]genie.AccessControlRequest, error) {
	acl := make([]genie.AccessControlRequest, 0, len(args))
	for _, arg := range args {
		g, err := ParseGrant(arg)
		if err != nil {
			return nil, err
		}
		acl = append(acl, g)
	}
	return acl, nil
}

func printACL(ui cli.Ui, perms *genie.ObjectPermissions) {
	for _, entry := range perms.AccessControlList {
		levels := make([]string, 0, len(entry.AllPermissions))
		for _, p := range entry.AllPermissions {
			l := string(p.PermissionLevel)
			if p.Inherited {
				l += " (inherited)"
			}
			levels = append(levels, l)
		}
		ui.Output(fmt.Sprintf("%s: %s", entry.Principal(), strings.Join(levels, ", ")))
	}
}
