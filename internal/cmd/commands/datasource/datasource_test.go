package datasource

import (
	"fmt"
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

const sourcesDoc = `{"version":2,"data_sources":{"tables":[` +
	`{"identifier":"waggoner.finance.accounts"},` +
	`{"identifier":"waggoner.finance.invoices","column_configs":[{"column_name":"status","enable_entity_matching":true}]}]},` +
	`"instructions":{"text_instructions":[{"id":"t1","content":["Amounts are in USD."]}]}}`

func setup(t *testing.T) (*base.Command, *cli.MockUi, *fakegenie.Server, string) {
	t.Helper()
	srv := fakegenie.NewServer()
	t.Cleanup(srv.Close)
	id := srv.AddSpace(genie.Space{Title: "Test Data Sources Space", SerializedSpace: sourcesDoc})

	ui := cli.NewMockUi()
	return &base.Command{
		UI:        ui,
		Log:       hclog.NewNullLogger(),
		Fs:        afero.NewMemMapFs(),
		LookupEnv: srv.LookupEnv,
	}, ui, srv, id
}

func tables(t *testing.T, srv *fakegenie.Server, id string, s serialized.Section) []string {
	t.Helper()
	doc, err := serialized.Parse([]byte(srv.SerializedSpace(id)))
	require.NoError(t, err)
	items, err := doc.Items(s)
	require.NoError(t, err)
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, it.Key(s))
	}
	return keys
}

func TestAddCommand(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &AddCommand{Command: b}

	code := c.Run([]string{"-entity-columns", "method,status", id, "payments"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Equal(t, []string{
		"waggoner.finance.accounts",
		"waggoner.finance.invoices",
		"waggoner.finance.payments",
	}, tables(t, srv, id, serialized.Tables))
	assert.Contains(t, srv.SerializedSpace(id),
		`{"identifier":"waggoner.finance.payments","column_configs":[{"column_name":"method","enable_format_assistance":true,"enable_entity_matching":true}`)
	assert.Contains(t, srv.SerializedSpace(id), `"instructions":{"text_instructions":[{"id":"t1","content":["Amounts are in USD."]}]}`)

	assert.Equal(t, 1, c.Run([]string{id, "accounts"}))
	assert.Contains(t, ui.ErrorWriter.String(), "already exists")
}

func TestAddCommand_MetricView(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &AddCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{"-metric-view", id, "mv_invoice"}), ui.ErrorWriter.String())
	assert.Equal(t, []string{"waggoner.finance.mv_invoice"}, tables(t, srv, id, serialized.MetricViews))

	assert.Equal(t, 1, c.Run([]string{"-metric-view", "-entity-columns", "x", id, "mv"}))
}

func TestAddCommand_Limit(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &AddCommand{Command: b}

	names := []string{id}
	for i := 0; i < serialized.MaxDataSources-1; i++ {
		names = append(names, fmt.Sprintf("t%02d", i))
	}
	assert.Equal(t, 1, c.Run(names))
	assert.Contains(t, ui.ErrorWriter.String(), "data sources, at most 30 allowed")
	assert.Equal(t, sourcesDoc, srv.SerializedSpace(id))
}

func TestRemoveCommand(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &RemoveCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{id, "invoices"}), ui.ErrorWriter.String())
	assert.Equal(t, []string{"waggoner.finance.accounts"}, tables(t, srv, id, serialized.Tables))

	assert.Equal(t, 1, c.Run([]string{id, "invoices"}))
	assert.Equal(t, 1, c.Run([]string{"-metric-view", id, "mv_invoice"}))
	assert.Contains(t, ui.ErrorWriter.String(), "does not exist")
}

func TestReplaceCommand(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &ReplaceCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{id, "payments", "other.schema.accounts"}), ui.ErrorWriter.String())
	assert.Equal(t, []string{"other.schema.accounts", "waggoner.finance.payments"}, tables(t, srv, id, serialized.Tables))
}

func TestListCommand(t *testing.T) {
	b, ui, _, id := setup(t)
	c := &ListCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{id}), ui.ErrorWriter.String())
	assert.Equal(t,
		"table        waggoner.finance.accounts\n"+
			"table        waggoner.finance.invoices (1 column configs)\n",
		ui.OutputWriter.String())
}
