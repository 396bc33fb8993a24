package instructions

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type AppendCommand struct {
	*base.Command

	conn        base.ConnectionFlags
	flagNewline bool
}

func (c *AppendCommand) Synopsis() string {
	return "Append lines to the text instruction of a space"
}

func (c *AppendCommand) Help() string {
	return `Usage: geniectl context append [options] <space-id> <line>...

  Appends content lines to the text instruction of a space, creating the
  instruction when the space has none. Lines are concatenated by Genie, so
  each one is prefixed with a newline unless -newline=false.` +
		c.Flags().Help()
}

func (c *AppendCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("append", flag.ContinueOnError))
	c.conn.Register(f)
	f.BoolVar(&c.flagNewline, "newline", true, "Start each appended line with a newline")
	return f
}

func (c *AppendCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() < 2 {
		return c.Fail("expected arguments: <space-id> <line>...")
	}
	spaceID := f.Arg(0)

	lines := f.Args()[1:]
	if c.flagNewline {
		for i, line := range lines {
			lines[i] = "\n" + line
		}
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	if _, err := s.Syncer.Sync(ctx, spaceID, serialized.TextInstructions, serialized.AppendContent(lines...)); err != nil {
		return c.Fail("error appending text instruction: %v", err)
	}
	c.UI.Output(fmt.Sprintf("Appended %d line(s) to %s", len(lines), spaceID))
	return 0
}
