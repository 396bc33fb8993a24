package metricview

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
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

func setup(t *testing.T) (*base.Command, *cli.MockUi, *fakegenie.Server) {
	t.Helper()
	srv := fakegenie.NewServer()
	t.Cleanup(srv.Close)

	ui := cli.NewMockUi()
	return &base.Command{
		UI:        ui,
		Log:       hclog.NewNullLogger(),
		Fs:        afero.NewMemMapFs(),
		LookupEnv: srv.LookupEnv,
	}, ui, srv
}

func metricViews(t *testing.T, srv *fakegenie.Server, spaceID string) []string {
	t.Helper()
	doc, err := serialized.Parse([]byte(srv.SerializedSpace(spaceID)))
	require.NoError(t, err)
	items, err := doc.Items(serialized.MetricViews)
	require.NoError(t, err)

	var ids []string
	for _, it := range items {
		ids = append(ids, it.Key(serialized.MetricViews))
	}
	return ids
}

func TestCreateCommand_DryRun(t *testing.T) {
	b, ui, srv := setup(t)
	c := &CreateCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{"-dry-run", "-schema", "ops"}), ui.ErrorWriter.String())
	out := ui.OutputWriter.String()
	assert.True(t, strings.HasPrefix(out, "CREATE OR REPLACE VIEW waggoner.ops.mv_invoice\nWITH METRICS\nLANGUAGE YAML\nAS $$\n"), out)
	assert.Contains(t, out, "source: waggoner.ops.invoices")
	assert.Empty(t, srv.Statements())
}

func TestCreateCommand(t *testing.T) {
	b, ui, srv := setup(t)
	c := &CreateCommand{Command: b}

	require.Equal(t, 0, c.Run(nil), ui.ErrorWriter.String())
	require.Len(t, srv.Statements(), 1)
	assert.True(t, strings.HasPrefix(srv.Statements()[0], "CREATE OR REPLACE VIEW waggoner.finance.mv_invoice\n"))
	assert.Contains(t, srv.Statements()[0], "source: waggoner.finance.invoices")
	assert.Contains(t, ui.OutputWriter.String(), "Created metric view waggoner.finance.mv_invoice")
}

func TestCreateCommand_FromFile(t *testing.T) {
	b, ui, srv := setup(t)
	def := `version: 1.1
source: main.sales.orders
measures:
  - name: order_count
    expr: COUNT(1)
`
	require.NoError(t, afero.WriteFile(b.Fs, "orders.yaml", []byte(def), 0o644))

	c := &CreateCommand{Command: b}
	require.Equal(t, 0, c.Run([]string{"-file", "orders.yaml", "-name", "main.sales.mv_orders"}), ui.ErrorWriter.String())
	require.Len(t, srv.Statements(), 1)
	assert.Contains(t, srv.Statements()[0], "CREATE OR REPLACE VIEW main.sales.mv_orders")
	assert.Contains(t, srv.Statements()[0], "source: main.sales.orders")
}

func TestCreateCommand_NotSupported(t *testing.T) {
	b, ui, srv := setup(t)
	srv.StatementHandler = func(genie.ExecuteStatementRequest) genie.StatementResponse {
		return fakegenie.Failed("PARSE_SYNTAX_ERROR", "WITH METRICS is not supported")
	}

	c := &CreateCommand{Command: b}
	assert.Equal(t, 1, c.Run(nil))
	assert.Contains(t, ui.ErrorWriter.String(), "WITH METRICS is not supported")
}

func TestAttachCommand(t *testing.T) {
	b, ui, srv := setup(t)
	id := srv.AddSpace(genie.Space{
		Title:           "Finance Metrics Space",
		SerializedSpace: `{"version":2,"data_sources":{"tables":[{"identifier":"waggoner.finance.invoices"}]}}`,
	})

	c := &AttachCommand{Command: b}
	require.Equal(t, 0, c.Run([]string{id}), ui.ErrorWriter.String())
	assert.Equal(t, []string{"waggoner.finance.mv_invoice"}, metricViews(t, srv, id))
	assert.Contains(t, srv.SerializedSpace(id), `"tables":[{"identifier":"waggoner.finance.invoices"}]`)
	assert.Contains(t, ui.OutputWriter.String(), "Attached waggoner.finance.mv_invoice to "+id)

	t.Run("twice", func(t *testing.T) {
		require.Equal(t, 0, c.Run([]string{id, "mv_invoice"}), ui.ErrorWriter.String())
		assert.Equal(t, []string{"waggoner.finance.mv_invoice"}, metricViews(t, srv, id))
	})

	t.Run("second view", func(t *testing.T) {
		require.Equal(t, 0, c.Run([]string{id, "main.sales.mv_orders"}), ui.ErrorWriter.String())
		assert.Equal(t, []string{"main.sales.mv_orders", "waggoner.finance.mv_invoice"}, metricViews(t, srv, id))
	})
}

func TestAttachCommand_Args(t *testing.T) {
	b, ui, _ := setup(t)
	c := &AttachCommand{Command: b}

	assert.Equal(t, 1, c.Run(nil))
	assert.Contains(t, ui.ErrorWriter.String(), "expected arguments")
}
