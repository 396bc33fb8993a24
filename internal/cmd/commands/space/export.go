package space

import (
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
)

type ExportCommand struct {
	*base.Command

	conn    base.ConnectionFlags
	flagOut string
}

func (c *ExportCommand) Synopsis() string {
	return "Export the serialized document of a space"
}

func (c *ExportCommand) Help() string {
	return `Usage: geniectl space export [options] <space-id>

  Writes the serialized document of a space exactly as the workspace
  returned it, to stdout or to the file given by -out.` +
		c.Flags().Help()
}

func (c *ExportCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("export", flag.ContinueOnError))
	c.conn.Register(f)
	f.StringVar(&c.flagOut, "out", "", "File to write instead of stdout")
	return f
}

func (c *ExportCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 1 {
		return c.Fail("expected one argument: <space-id>")
	}
	spaceID := f.Arg(0)

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	space, err := s.Client.ExportSpace(ctx, spaceID)
	if err != nil {
		return c.Fail("error exporting space: %v", err)
	}

	if c.flagOut == "" {
		c.UI.Output(space.SerializedSpace)
		return 0
	}
	if err := afero.WriteFile(c.Fs, c.flagOut, []byte(space.SerializedSpace), 0o644); err != nil {
		return c.Fail("error writing %s: %v", c.flagOut, err)
	}
	c.UI.Info(fmt.Sprintf("Exported %s to %s", spaceID, c.flagOut))
	return 0
}
