package measure

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

const snippetDoc = `{"version":2,"config":{"sample_questions":[{"id":"q1","question":["How much?"]}]},` +
	`"instructions":{"sql_snippets":{"measures":[{"id":"m5","sql":["SUM(amount)"],"display_name":"total_revenue"}],` +
	`"filters":[{"id":"f1","sql":["status = 'PAID'"],"display_name":"paid"}]}}}`

func setup(t *testing.T) (*base.Command, *cli.MockUi, *fakegenie.Server, string) {
	t.Helper()
	srv := fakegenie.NewServer()
	t.Cleanup(srv.Close)
	id := srv.AddSpace(genie.Space{Title: "Test Metrics Space", SerializedSpace: snippetDoc})

	ui := cli.NewMockUi()
	return &base.Command{
		UI:        ui,
		Log:       hclog.NewNullLogger(),
		Fs:        afero.NewMemMapFs(),
		LookupEnv: srv.LookupEnv,
	}, ui, srv, id
}

func TestAddCommand(t *testing.T) {
	b, ui, srv, id := setup(t)

	c := &AddCommand{Command: b}
	code := c.Run([]string{"-name", "invoice_count", "-sql", "COUNT(DISTINCT invoice_id)", id})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	newID := strings.Fields(ui.OutputWriter.String())[0]
	assert.Len(t, newID, 32)

	doc, err := serialized.Parse([]byte(srv.SerializedSpace(id)))
	require.NoError(t, err)
	items, err := doc.Items(serialized.Measures)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, serialized.Sorted(serialized.Measures, items))

	config, _ := doc.Raw("config")
	assert.Equal(t, `{"sample_questions":[{"id":"q1","question":["How much?"]}]}`, string(config))
}

func TestAddCommand_Filter(t *testing.T) {
	b, ui, srv, id := setup(t)

	c := &AddCommand{Command: b}
	require.Equal(t, 0, c.Run([]string{"-kind", "filter", "-name", "recent", "-sql", "invoice_date > '2024-01-01'", id}),
		ui.ErrorWriter.String())

	doc, err := serialized.Parse([]byte(srv.SerializedSpace(id)))
	require.NoError(t, err)
	filters, err := doc.Items(serialized.Filters)
	require.NoError(t, err)
	assert.Len(t, filters, 2)
	measures, err := doc.Items(serialized.Measures)
	require.NoError(t, err)
	assert.Len(t, measures, 1)
}

func TestAddCommand_Errors(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &AddCommand{Command: b}

	assert.Equal(t, 1, c.Run([]string{id}))
	assert.Contains(t, ui.ErrorWriter.String(), "sql flag is required")

	assert.Equal(t, 1, c.Run([]string{"-kind", "dimension", "-sql", "x", id}))
	assert.Contains(t, ui.ErrorWriter.String(), `unknown kind "dimension"`)

	assert.Equal(t, 0, srv.Requests("PATCH", "/api/2.0/genie/spaces/"+id))
}

func TestRemoveCommand(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &RemoveCommand{Command: b}

	assert.Equal(t, 1, c.Run([]string{id, "m5", "nope"}))
	assert.Contains(t, ui.ErrorWriter.String(), `no item "nope"`)
	assert.Equal(t, snippetDoc, srv.SerializedSpace(id))

	require.Equal(t, 0, c.Run([]string{id, "m5"}), ui.ErrorWriter.String())
	assert.Contains(t, srv.SerializedSpace(id), `"measures":[]`)
}

func TestListCommand(t *testing.T) {
	b, ui, _, id := setup(t)
	c := &ListCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{id}), ui.ErrorWriter.String())
	assert.Equal(t, "m5  total_revenue  SUM(amount)\n", ui.OutputWriter.String())

	ui.OutputWriter.Reset()
	require.Equal(t, 0, c.Run([]string{"-kind", "expression", id}))
	assert.Empty(t, ui.OutputWriter.String())
}
