package space

import (
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/genie"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type CreateCommand struct {
	*base.Command

	conn            base.ConnectionFlags
	flagTitle       string
	flagDescription string
	flagFile        string
	flagParentPath  string
	flagTables      string
}

func (c *CreateCommand) Synopsis() string {
	return "Create a space"
}

func (c *CreateCommand) Help() string {
	return `Usage: geniectl space create [options]

  Creates a space from a serialized document file, or from a list of
  tables. Sections are sorted and validated before the request is sent.
  Prints the new space ID.` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))
	c.conn.Register(f)
	f.StringVar(&c.flagTitle, "title", "", "(Required) Space title")
	f.StringVar(&c.flagDescription, "description", "", "Space description")
	f.StringVar(&c.flagFile, "file", "",
		"Serialized space JSON file to create the space from")
	f.StringVar(&c.flagParentPath, "parent-path", "",
		"Workspace folder to create the space in")
	f.StringVar(&c.flagTables, "tables", "",
		"Comma-separated table names; unqualified names use -catalog and -schema")
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
	if c.flagTitle == "" {
		return c.Fail("title flag is required")
	}
	if c.flagFile != "" && c.flagTables != "" {
		return c.Fail("file and tables flags are mutually exclusive")
	}

	ctx, cancel := c.Context()
	defer cancel()

	s, err := c.Connect(ctx, &c.conn)
	if err != nil {
		return c.Fail("error connecting: %v", err)
	}

	doc := serialized.New()
	if c.flagFile != "" {
		data, err := afero.ReadFile(c.Fs, c.flagFile)
		if err != nil {
			return c.Fail("error reading %s: %v", c.flagFile, err)
		}
		if doc, err = serialized.Parse(data); err != nil {
			return c.Fail("error parsing %s: %v", c.flagFile, err)
		}
	}
	if c.flagTables != "" {
		var tables []serialized.Item
		for _, name := range base.SplitList(c.flagTables) {
			tables = append(tables, serialized.NewTable(base.Qualify(s.Config, name)))
		}
		if doc, err = doc.Apply(serialized.Tables, serialized.ReplaceAll(tables...)); err != nil {
			return c.Fail("error building space: %v", err)
		}
	}

	if _, err := doc.Normalize(); err != nil {
		return c.Fail("error sorting space: %v", err)
	}
	if err := doc.Validate(); err != nil {
		return c.Fail("invalid space: %v", err)
	}

	space, err := s.Client.CreateSpace(ctx, &genie.CreateSpaceRequest{
		Title:           c.flagTitle,
		Description:     c.flagDescription,
		ParentPath:      c.flagParentPath,
		SerializedSpace: doc.String(),
	})
	if err != nil {
		return c.Fail("error creating space: %v", err)
	}

	c.UI.Output(space.SpaceID)
	c.UI.Info(fmt.Sprintf("Created %s", s.Client.SpaceURL(space.SpaceID)))
	return 0
}
