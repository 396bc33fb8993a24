package cleanup

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/geniectl/internal/cmd/base"
	"github.com/hashicorp-forge/geniectl/internal/fakegenie"
	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

func setup(t *testing.T) (*Command, *cli.MockUi, *fakegenie.Server) {
	t.Helper()
	srv := fakegenie.NewServer()
	t.Cleanup(srv.Close)

	doc := `{"version":2}`
	srv.AddSpace(genie.Space{Title: "Genie API Demo: Inline Measures", SerializedSpace: doc})
	srv.AddSpace(genie.Space{Title: "Finance Data Space", SerializedSpace: doc})
	srv.AddSpace(genie.Space{Title: "Revenue forecasting", SerializedSpace: doc})

	ui := cli.NewMockUi()
	return &Command{Command: &base.Command{
		UI:        ui,
		Log:       hclog.NewNullLogger(),
		Fs:        afero.NewMemMapFs(),
		LookupEnv: srv.LookupEnv,
	}}, ui, srv
}

func TestCommand_Aborted(t *testing.T) {
	c, ui, srv := setup(t)
	ui.InputReader = strings.NewReader("\n")

	require.Equal(t, 0, c.Run(nil))
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "Found 2 example space(s):")
	assert.Contains(t, out, "Aborted.")
	assert.Equal(t, 3, srv.SpaceCount())
}

func TestCommand_Spaces(t *testing.T) {
	c, ui, srv := setup(t)

	require.Equal(t, 0, c.Run([]string{"-yes"}), ui.ErrorWriter.String())
	assert.Equal(t, 1, srv.SpaceCount())
	assert.Empty(t, srv.Statements())
	assert.Contains(t, ui.OutputWriter.String(), "Cleanup complete.")

	ui.OutputWriter.Reset()
	require.Equal(t, 0, c.Run([]string{"-yes"}))
	assert.Equal(t, "No example spaces found.\n", ui.OutputWriter.String())
}

func TestCommand_TablesAndSchema(t *testing.T) {
	c, ui, srv := setup(t)

	require.Equal(t, 0, c.Run([]string{"-yes", "-drop-tables", "-drop-schema", "-catalog", "main"}), ui.ErrorWriter.String())
	assert.Equal(t, []string{
		"DROP TABLE IF EXISTS main.finance.invoices",
		"DROP TABLE IF EXISTS main.finance.payments",
		"DROP TABLE IF EXISTS main.finance.accounts",
		"DROP TABLE IF EXISTS main.finance.mv_invoice",
		"DROP SCHEMA IF EXISTS main.finance",
	}, srv.Statements())
	assert.Contains(t, ui.OutputWriter.String(), "DROP SCHEMA main.finance: SUCCEEDED")
}

func TestCommand_SchemaNotEmpty(t *testing.T) {
	c, ui, srv := setup(t)
	srv.StatementHandler = func(req genie.ExecuteStatementRequest) genie.StatementResponse {
		if strings.HasPrefix(req.Statement, "DROP SCHEMA") {
			return fakegenie.Failed("SCHEMA_NOT_EMPTY", "schema is not empty")
		}
		return fakegenie.Result(nil)
	}

	assert.Equal(t, 1, c.Run([]string{"-yes", "-drop-schema"}))
	assert.Contains(t, ui.OutputWriter.String(), "DROP SCHEMA waggoner.finance: FAILED")
	assert.Equal(t, 1, srv.SpaceCount())
}

func TestCommand_Help(t *testing.T) {
	c, _, _ := setup(t)

	help := c.Help()
	assert.Contains(t, help, "-drop-tables")
	assert.Contains(t, help, "-drop-schema")
	assert.Contains(t, help, "\n  -schema=")
}
