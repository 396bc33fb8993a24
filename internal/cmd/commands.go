package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/cleanup"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/datasource"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/demo"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/instructions"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/measure"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/metricview"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/permissions"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/space"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/sql"
	"github.com/hashicorp-forge/geniectl/internal/cmd/commands/version"
)

// Commands is the mapping of all available geniectl commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.New(log, ui)

	Commands = map[string]cli.CommandFactory{
		"space": func() (cli.Command, error) {
			return &space.Command{Command: b}, nil
		},
		"space list": func() (cli.Command, error) {
			return &space.ListCommand{Command: b}, nil
		},
		"space get": func() (cli.Command, error) {
			return &space.GetCommand{Command: b}, nil
		},
		"space create": func() (cli.Command, error) {
			return &space.CreateCommand{Command: b}, nil
		},
		"space delete": func() (cli.Command, error) {
			return &space.DeleteCommand{Command: b}, nil
		},
		"space export": func() (cli.Command, error) {
			return &space.ExportCommand{Command: b}, nil
		},
		"space import": func() (cli.Command, error) {
			return &space.ImportCommand{Command: b}, nil
		},
		"space open": func() (cli.Command, error) {
			return &space.OpenCommand{Command: b}, nil
		},

		"measure": func() (cli.Command, error) {
			return &measure.Command{Command: b}, nil
		},
		"measure add": func() (cli.Command, error) {
			return &measure.AddCommand{Command: b}, nil
		},
		"measure remove": func() (cli.Command, error) {
			return &measure.RemoveCommand{Command: b}, nil
		},
		"measure list": func() (cli.Command, error) {
			return &measure.ListCommand{Command: b}, nil
		},

		"datasource": func() (cli.Command, error) {
			return &datasource.Command{Command: b}, nil
		},
		"datasource add": func() (cli.Command, error) {
			return &datasource.AddCommand{Command: b}, nil
		},
		"datasource remove": func() (cli.Command, error) {
			return &datasource.RemoveCommand{Command: b}, nil
		},
		"datasource replace": func() (cli.Command, error) {
			return &datasource.ReplaceCommand{Command: b}, nil
		},
		"datasource list": func() (cli.Command, error) {
			return &datasource.ListCommand{Command: b}, nil
		},

		"context": func() (cli.Command, error) {
			return &instructions.Command{Command: b}, nil
		},
		"context show": func() (cli.Command, error) {
			return &instructions.ShowCommand{Command: b}, nil
		},
		"context append": func() (cli.Command, error) {
			return &instructions.AppendCommand{Command: b}, nil
		},
		"context add-sample-question": func() (cli.Command, error) {
			return &instructions.AddSampleQuestionCommand{Command: b}, nil
		},
		"context add-example-sql": func() (cli.Command, error) {
			return &instructions.AddExampleSQLCommand{Command: b}, nil
		},

		"permissions": func() (cli.Command, error) {
			return &permissions.Command{Command: b}, nil
		},
		"permissions get": func() (cli.Command, error) {
			return &permissions.GetCommand{Command: b}, nil
		},
		"permissions levels": func() (cli.Command, error) {
			return &permissions.LevelsCommand{Command: b}, nil
		},
		"permissions grant": func() (cli.Command, error) {
			return &permissions.GrantCommand{Command: b}, nil
		},
		"permissions replace": func() (cli.Command, error) {
			return &permissions.ReplaceCommand{Command: b}, nil
		},

		"metricview": func() (cli.Command, error) {
			return &metricview.Command{Command: b}, nil
		},
		"metricview create": func() (cli.Command, error) {
			return &metricview.CreateCommand{Command: b}, nil
		},
		"metricview attach": func() (cli.Command, error) {
			return &metricview.AttachCommand{Command: b}, nil
		},

		"sql": func() (cli.Command, error) {
			return &sql.Command{Command: b}, nil
		},
		"cleanup": func() (cli.Command, error) {
			return &cleanup.Command{Command: b}, nil
		},
		"demo": func() (cli.Command, error) {
			return &demo.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
