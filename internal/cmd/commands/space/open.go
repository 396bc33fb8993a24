package space

import (
	"flag"

	"github.com/pkg/browser"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
)

// openURL is replaced in tests.
var openURL = browser.OpenURL

type OpenCommand struct {
	*base.Command

	conn      base.ConnectionFlags
	flagPrint bool
}

func (c *OpenCommand) Synopsis() string {
	return "Open a space in the browser"
}

func (c *OpenCommand) Help() string {
	return `Usage: geniectl space open [options] <space-id>

  Opens the space in the default browser.` +
		c.Flags().Help()
}

func (c *OpenCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("open", flag.ContinueOnError))
	c.conn.Register(f)
	f.BoolVar(&c.flagPrint, "print", false, "Print the URL instead of opening it")
	return f
}

func (c *OpenCommand) Run(args []string) int {
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

	url := s.Client.SpaceURL(f.Arg(0))
	c.UI.Output(url)
	if c.flagPrint {
		return 0
	}
	if err := openURL(url); err != nil {
		return c.Fail("error opening browser: %v", err)
	}
	return 0
}
