package permissions

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

func setup(t *testing.T) (*base.Command, *cli.MockUi, *fakegenie.Server, string) {
	t.Helper()
	srv := fakegenie.NewServer()
	t.Cleanup(srv.Close)
	id := srv.AddSpace(genie.Space{Title: "Test Permissions Space", SerializedSpace: `{"version":2}`})

	ui := cli.NewMockUi()
	return &base.Command{
		UI:        ui,
		Log:       hclog.NewNullLogger(),
		Fs:        afero.NewMemMapFs(),
		LookupEnv: srv.LookupEnv,
	}, ui, srv, id
}

func TestParseGrant(t *testing.T) {
	tests := []struct {
		in      string
		want    genie.AccessControlRequest
		wantErr string
	}{
		{in: "group:users=CAN_RUN", want: genie.GrantGroup("users", genie.CanRun)},
		{in: "user:analyst@example.com=can-edit", want: genie.GrantUser("analyst@example.com", genie.CanEdit)},
		{in: "sp:6c1d=CAN_MANAGE", want: genie.GrantServicePrincipal("6c1d", genie.CanManage)},
		{in: "group:users", wantErr: "expected <kind>:<name>=<level>"},
		{in: "users=CAN_RUN", wantErr: "expected <kind>:<name>=<level>"},
		{in: "group:=CAN_RUN", wantErr: "expected <kind>:<name>=<level>"},
		{in: "group:users=CAN_OWN", wantErr: "unknown level"},
		{in: "team:users=CAN_RUN", wantErr: `unknown principal kind "team"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGrant(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetCommand(t *testing.T) {
	b, ui, _, id := setup(t)
	c := &GetCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{id}), ui.ErrorWriter.String())
	assert.Equal(t,
		"admins: CAN_MANAGE (inherited)\n"+fakegenie.DefaultOwner+": CAN_MANAGE\n",
		ui.OutputWriter.String())
}

func TestLevelsCommand(t *testing.T) {
	b, ui, _, id := setup(t)
	c := &LevelsCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{id}), ui.ErrorWriter.String())
	lines := strings.Split(strings.TrimSpace(ui.OutputWriter.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "CAN_READ"))
	assert.True(t, strings.HasPrefix(lines[3], "CAN_MANAGE"))
}

func TestGrantCommand(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &GrantCommand{Command: b}

	require.Equal(t, 0, c.Run([]string{id, "group:users=CAN_RUN", "group:admins=CAN_EDIT"}), ui.ErrorWriter.String())
	out := ui.OutputWriter.String()
	assert.Contains(t, out, "users: CAN_RUN\n")
	assert.Contains(t, out, "admins: CAN_MANAGE (inherited), CAN_EDIT\n")
	assert.Contains(t, out, fakegenie.DefaultOwner+": CAN_MANAGE\n")

	assert.Equal(t, 1, c.Run([]string{id, "group:users=OWNER"}))
	assert.Equal(t, 1, srv.Requests("PATCH", "/api/2.0/permissions/genie/"+id))
}

func TestReplaceCommand(t *testing.T) {
	b, ui, srv, id := setup(t)
	c := &ReplaceCommand{Command: b}

	ui.InputReader = strings.NewReader("no\n")
	require.Equal(t, 0, c.Run([]string{id, "group:users=CAN_READ"}))
	assert.Equal(t, 0, srv.Requests("PUT", "/api/2.0/permissions/genie/"+id))

	require.Equal(t, 0, c.Run([]string{"-yes", id, "group:users=CAN_READ"}), ui.ErrorWriter.String())
	perms, err := genieClient(t, srv).GetPermissions(t.Context(), id)
	require.NoError(t, err)

	_, owner := perms.Lookup(fakegenie.DefaultOwner)
	assert.False(t, owner)
	users, ok := perms.Lookup("users")
	require.True(t, ok)
	assert.Equal(t, genie.CanRead, users.Highest())
	admins, ok := perms.Lookup("admins")
	require.True(t, ok)
	assert.Equal(t, genie.CanManage, admins.Highest())
}

func genieClient(t *testing.T, srv *fakegenie.Server) *genie.Client {
	t.Helper()
	client, err := genie.NewClient(srv.Config(), nil)
	require.NoError(t, err)
	return client
}
