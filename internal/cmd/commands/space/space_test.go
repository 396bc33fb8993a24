package space

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

const tablesDoc = `{"version":2,"data_sources":{"tables":[{"identifier":"waggoner.finance.accounts"},{"identifier":"waggoner.finance.invoices"}]}}`

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

func TestListCommand(t *testing.T) {
	b, ui, srv := setup(t)
	a := srv.AddSpace(genie.Space{Title: "Finance Metrics Space", SerializedSpace: tablesDoc})
	other := srv.AddSpace(genie.Space{Title: "Sales", SerializedSpace: tablesDoc})

	c := &ListCommand{Command: b}
	require.Equal(t, 0, c.Run(nil), ui.ErrorWriter.String())
	out := ui.OutputWriter.String()
	assert.Contains(t, out, a)
	assert.Contains(t, out, other)
	assert.Contains(t, out, "Finance Metrics Space")

	ui.OutputWriter.Reset()
	require.Equal(t, 0, c.Run([]string{"-filter", "finance"}))
	assert.Contains(t, ui.OutputWriter.String(), a)
	assert.NotContains(t, ui.OutputWriter.String(), other)
}

func TestListCommand_NoCredentials(t *testing.T) {
	b, ui, _ := setup(t)
	b.LookupEnv = func(string) (string, bool) { return "", false }

	c := &ListCommand{Command: b}
	assert.Equal(t, 1, c.Run(nil))
	assert.Contains(t, ui.ErrorWriter.String(), "no credentials")
}

func TestCreateCommand(t *testing.T) {
	t.Run("from tables", func(t *testing.T) {
		b, ui, srv := setup(t)
		c := &CreateCommand{Command: b}
		code := c.Run([]string{"-title", "Test Data Sources Space", "-tables", "payments, waggoner.finance.accounts"})
		require.Equal(t, 0, code, ui.ErrorWriter.String())

		id := strings.Fields(ui.OutputWriter.String())[0]
		doc, err := serialized.Parse([]byte(srv.SerializedSpace(id)))
		require.NoError(t, err)
		items, err := doc.Items(serialized.Tables)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "waggoner.finance.accounts", items[0].Key(serialized.Tables))
		assert.Equal(t, "waggoner.finance.payments", items[1].Key(serialized.Tables))
	})

	t.Run("from unsorted file", func(t *testing.T) {
		b, ui, srv := setup(t)
		unsorted := `{"version":2,"data_sources":{"tables":[{"identifier":"a.b.z"},{"identifier":"a.b.c"}]}}`
		require.NoError(t, afero.WriteFile(b.Fs, "space.json", []byte(unsorted), 0o644))

		c := &CreateCommand{Command: b}
		require.Equal(t, 0, c.Run([]string{"-title", "t", "-file", "space.json"}), ui.ErrorWriter.String())
		id := strings.Fields(ui.OutputWriter.String())[0]
		assert.Contains(t, srv.SerializedSpace(id), `[{"identifier":"a.b.c"},{"identifier":"a.b.z"}]`)
	})

	t.Run("requires title", func(t *testing.T) {
		b, ui, srv := setup(t)
		c := &CreateCommand{Command: b}
		assert.Equal(t, 1, c.Run(nil))
		assert.Contains(t, ui.ErrorWriter.String(), "title flag is required")
		assert.Equal(t, 0, srv.SpaceCount())
	})

	t.Run("invalid document", func(t *testing.T) {
		b, ui, srv := setup(t)
		c := &CreateCommand{Command: b}
		assert.Equal(t, 1, c.Run([]string{"-title", "t", "-tables", "a.b"}))
		assert.Contains(t, ui.ErrorWriter.String(), "is not a catalog.schema.object identifier")
		assert.Equal(t, 0, srv.SpaceCount())
	})
}

func TestGetCommand(t *testing.T) {
	b, ui, srv := setup(t)
	id := srv.AddSpace(genie.Space{Title: "Finance Data Space", SerializedSpace: tablesDoc})

	c := &GetCommand{Command: b}
	require.Equal(t, 0, c.Run([]string{id}), ui.ErrorWriter.String())
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "Finance Data Space")
	assert.Contains(t, out, srv.URL()+"/explore/genie/"+id)
	assert.Regexp(t, `tables\s+2`, out)
	assert.Regexp(t, `measures\s+0`, out)

	assert.Equal(t, 1, c.Run([]string{"missing"}))
	assert.Contains(t, ui.ErrorWriter.String(), "missing")
}

func TestExportImport(t *testing.T) {
	b, ui, srv := setup(t)
	// Unusual spacing must survive an export byte for byte.
	original := `{"version": 2, "data_sources": {"tables": [{"identifier": "a.b.c"}]}}`
	id := srv.AddSpace(genie.Space{Title: "Test Context Space", SerializedSpace: original})

	export := &ExportCommand{Command: b}
	require.Equal(t, 0, export.Run([]string{"-out", "out.json", id}), ui.ErrorWriter.String())
	data, err := afero.ReadFile(b.Fs, "out.json")
	require.NoError(t, err)
	assert.Equal(t, original, string(data))

	require.NoError(t, afero.WriteFile(b.Fs, "in.json",
		[]byte(`{"version":2,"data_sources":{"tables":[{"identifier":"a.b.z"},{"identifier":"a.b.d"}]}}`), 0o644))
	imp := &ImportCommand{Command: b}
	require.Equal(t, 0, imp.Run([]string{"-file", "in.json", id}), ui.ErrorWriter.String())
	assert.Equal(t, `{"version":2,"data_sources":{"tables":[{"identifier":"a.b.d"},{"identifier":"a.b.z"}]}}`,
		srv.SerializedSpace(id))

	ui.OutputWriter.Reset()
	require.Equal(t, 0, export.Run([]string{id}))
	assert.Equal(t, srv.SerializedSpace(id)+"\n", ui.OutputWriter.String())
}

func TestImportCommand_RequiresFile(t *testing.T) {
	b, ui, _ := setup(t)
	c := &ImportCommand{Command: b}
	assert.Equal(t, 1, c.Run([]string{"space"}))
	assert.Contains(t, ui.ErrorWriter.String(), "file flag is required")
}

func TestDeleteCommand(t *testing.T) {
	b, ui, srv := setup(t)
	id := srv.AddSpace(genie.Space{Title: "Test Metrics Space", SerializedSpace: tablesDoc})
	c := &DeleteCommand{Command: b}

	ui.InputReader = strings.NewReader("n\n")
	require.Equal(t, 0, c.Run([]string{id}))
	assert.Contains(t, ui.OutputWriter.String(), "Aborted.")
	assert.Equal(t, 1, srv.SpaceCount())

	ui.InputReader = strings.NewReader("yes\n")
	require.Equal(t, 0, c.Run([]string{id}), ui.ErrorWriter.String())
	assert.Equal(t, 0, srv.SpaceCount())

	assert.Equal(t, 1, c.Run([]string{"-yes", id}))
}

func TestOpenCommand(t *testing.T) {
	b, ui, srv := setup(t)
	var opened string
	orig := openURL
	openURL = func(url string) error {
		opened = url
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	c := &OpenCommand{Command: b}
	require.Equal(t, 0, c.Run([]string{"abc"}), ui.ErrorWriter.String())
	assert.Equal(t, srv.URL()+"/explore/genie/abc", opened)

	opened = ""
	require.Equal(t, 0, c.Run([]string{"-print", "abc"}))
	assert.Empty(t, opened)
}
