package datasource

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/internal/config"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage the tables and metric views of a space"
}

func (c *Command) Help() string {
	return `Usage: geniectl datasource <subcommand> [options] [args]

  This command groups subcommands for the data sources of a space. A space
  may reference at most 30 tables and metric views combined. Names without
  a catalog and schema are qualified with -catalog and -schema.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

// sourceFlags select tables or metric views and how new tables are
// configured.
type sourceFlags struct {
	metricView    bool
	entityColumns string
}

func (sf *sourceFlags) register(f *base.FlagSet, columns bool) {
	f.BoolVar(&sf.metricView, "metric-view", false,
		"Operate on metric views instead of tables")
	if columns {
		f.StringVar(&sf.entityColumns, "entity-columns", "",
			"Comma-separated columns to enable entity matching and format assistance on")
	}
}

func (sf *sourceFlags) section() serialized.Section {
	if sf.metricView {
		return serialized.MetricViews
	}
	return serialized.Tables
}

func (sf *sourceFlags) items(cfg *config.Config, names []string) []serialized.Item {
	var columns []serialized.ColumnConfig
	for _, col := range base.SplitList(sf.entityColumns) {
		columns = append(columns, serialized.NewColumnConfig(col))
	}

	items := make([]serialized.Item, 0, len(names))
	for _, name := range names {
		id := base.Qualify(cfg, name)
		if sf.metricView {
			items = append(items, serialized.NewMetricView(id))
			continue
		}
		items = append(items, serialized.NewTable(id, columns...))
	}
	return items
}

func (sf *sourceFlags) qualify(cfg *config.Config, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, base.Qualify(cfg, name))
	}
	return out
}
