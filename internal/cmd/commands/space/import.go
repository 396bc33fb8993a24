package space

import (
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type ImportCommand struct {
	*base.Command

	conn     base.ConnectionFlags
	flagFile string
}

func (c *ImportCommand) Synopsis() string {
	return "Replace the serialized document of a space"
}

func (c *ImportCommand) Help() string {
	return `Usage: geniectl space import [options] -file <path> <space-id>

  Replaces the whole serialized document of a space with the contents of a
  file, typically one written by "geniectl space export". Sections are
  sorted and validated before writing.` +
		c.Flags().Help()
}

func (c *ImportCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("import", flag.ContinueOnError))
	c.conn.Register(f)
	f.StringVar(&c.flagFile, "file", "", "(Required) Serialized space JSON file")
	return f
}

func (c *ImportCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags: %v", err)
	}
	if f.NArg() != 1 {
		return c.Fail("expected one argument: <space-id>")
	}
	if c.flagFile == "" {
		return c.Fail("file flag is required")
	}
	spaceID := f.Arg(0)

	data, err := afero.ReadFile(c.Fs, c.flagFile)
	if err != nil {
		return c.Fail("error reading %s: %v", c.flagFile, err)
	}
	doc, err := serialized.Parse(data)
	if err != nil {
		return c.Fail("error parsing %s: %v", c.flagFile, err)
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	if _, err := s.Syncer.Replace(ctx, spaceID, doc); err != nil {
		return c.Fail("error importing space: %v", err)
	}
	c.UI.Output(fmt.Sprintf("Imported %s into %s", c.flagFile, spaceID))
	return 0
}
