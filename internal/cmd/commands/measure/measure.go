package measure

import (
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage the SQL snippets of a space"
}

func (c *Command) Help() string {
	return `Usage: geniectl measure <subcommand> [options] [args]

  This command groups subcommands for the inline measures of a space. The
  -kind flag selects filters or expressions instead, which share the same
  shape.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// kindFlags select which snippet section a subcommand operates on.
type kindFlags struct {
	kind string
}

func (k *kindFlags) register(f *base.FlagSet) {
	f.StringVar(&k.kind, "kind", "measure",
		"Snippet kind: measure, filter or expression")
}

func (k *kindFlags) section() (serialized.Section, error) {
	switch k.kind {
	case "measure", "measures":
		return serialized.Measures, nil
	case "filter", "filters":
		return serialized.Filters, nil
	case "expression", "expressions":
		return serialized.Expressions, nil
	}
	return 0, fmt.Errorf("unknown kind %q", k.kind)
}

func newSnippet(s serialized.Section, name, sql string) serialized.Item {
	switch s {
	case serialized.Filters:
		return serialized.NewFilter(name, sql)
	case serialized.Expressions:
		return serialized.NewExpression(name, sql)
	}
	return serialized.NewMeasure(name, sql)
}
