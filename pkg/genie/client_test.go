package genie

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Host = srv.URL
	cfg.Auth = TokenAuth("test-token")
	cfg.WarehouseID = "wh-1"
	cfg.RetryDelay = time.Millisecond

	client, err := NewClient(cfg, hclog.NewNullLogger())
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{
			name:    "no credentials",
			cfg:     &Config{Host: "https://example.cloud.databricks.com"},
			wantErr: ErrAuth,
		},
		{
			name: "no host",
			cfg:  &Config{Auth: TokenAuth("t")},
		},
		{
			name: "bad scheme",
			cfg:  &Config{Host: "ftp://example.com", Auth: TokenAuth("t")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg, nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestClient_GetRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Space{SpaceID: "abc", Title: "Finance"})
	})

	space, err := client.GetSpace(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Finance", space.Title)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GetGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error_code":"INTERNAL_ERROR","message":"boom"}`))
	})

	_, err := client.GetSpace(context.Background(), "abc")
	require.Error(t, err)

	var rerr *RemoteError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusInternalServerError, rerr.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", rerr.ErrorCode)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "one attempt plus three retries")
}

func TestClient_PatchIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.UpdateSpace(context.Background(), "abc", &UpdateSpaceRequest{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error_code":"UNAUTHENTICATED","message":"bad token"}`, kind: ErrAuth},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error_code":"PERMISSION_DENIED","message":"no"}`, kind: ErrAuth},
		{name: "missing", status: http.StatusNotFound, body: `{"error_code":"RESOURCE_DOES_NOT_EXIST","message":"gone"}`, kind: ErrNotFound},
		{name: "conflict", status: http.StatusConflict, body: `{}`, kind: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetSpace(context.Background(), "abc")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "client errors are not retried")
		})
	}
}

func TestRemoteError_Message(t *testing.T) {
	err := &RemoteError{
		Method:     http.MethodPatch,
		Path:       "/api/2.0/genie/spaces/abc",
		StatusCode: 400,
		ErrorCode:  "INVALID_PARAMETER_VALUE",
		Message:    "measures must be sorted by id",
	}
	assert.Equal(t,
		"PATCH /api/2.0/genie/spaces/abc: status 400 (INVALID_PARAMETER_VALUE): measures must be sorted by id",
		err.Error())
}

func TestClient_ExportSpace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.0/genie/spaces/abc", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_serialized_space"))
		json.NewEncoder(w).Encode(Space{SpaceID: "abc", SerializedSpace: `{"version":2}`})
	})

	space, err := client.ExportSpace(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, `{"version":2}`, space.SerializedSpace)
}

func TestClient_ExportSpaceWithoutDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Space{SpaceID: "abc"})
	})

	_, err := client.ExportSpace(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_ListSpacesFollowsPages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page_token") {
		case "":
			json.NewEncoder(w).Encode(ListSpacesResponse{
				Spaces:        []Space{{SpaceID: "a"}, {SpaceID: "b"}},
				NextPageToken: "p2",
			})
		case "p2":
			json.NewEncoder(w).Encode(ListSpacesResponse{Spaces: []Space{{SpaceID: "c"}}})
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("page_token"))
		}
	})

	spaces, err := client.ListSpaces(context.Background())
	require.NoError(t, err)
	require.Len(t, spaces, 3)
	assert.Equal(t, "c", spaces[2].SpaceID)
}

func TestClient_CreateSpaceDefaultsWarehouse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req CreateSpaceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "wh-1", req.WarehouseID)
		json.NewEncoder(w).Encode(Space{SpaceID: "new", Title: req.Title})
	})

	space, err := client.CreateSpace(context.Background(), &CreateSpaceRequest{
		Title:           "Finance Analytics Space",
		SerializedSpace: `{"version":2}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", space.SpaceID)

	_, err = client.CreateSpace(context.Background(), &CreateSpaceRequest{Title: "no doc"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConstraint))
}

func TestClient_Execute(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.0/sql/statements/", r.URL.Path)

		var req ExecuteStatementRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "JSON_ARRAY", req.Format)
		assert.Equal(t, "50s", req.WaitTimeout)
		assert.Equal(t, "wh-1", req.WarehouseID)

		w.Write([]byte(`{
			"statement_id": "st-1",
			"status": {"state": "SUCCEEDED"},
			"manifest": {"schema": {"column_count": 2, "columns": [
				{"name": "company_id", "type_name": "STRING", "position": 0},
				{"name": "amount", "type_name": "DECIMAL", "position": 1}
			]}},
			"result": {"data_array": [["C-1", "120.50"], ["C-2", null]]}
		}`))
	})

	resp, err := client.ExecuteSQL(context.Background(), "SELECT company_id, amount FROM invoices")
	require.NoError(t, err)
	require.NoError(t, resp.Err())

	rows := resp.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "C-1", rows[0]["company_id"])
	assert.Nil(t, rows[1]["amount"])

	var invoices []struct {
		CompanyID string  `json:"company_id"`
		Amount    float64 `json:"amount"`
	}
	require.NoError(t, resp.DecodeRows(&invoices))
	assert.Equal(t, 120.5, invoices[0].Amount)
}

func TestStatementResponse_Err(t *testing.T) {
	resp := &StatementResponse{
		StatementID: "st-1",
		Status: StatementStatus{
			State: StatementFailed,
			Error: &StatementError{ErrorCode: "TABLE_OR_VIEW_NOT_FOUND", Message: "no such table"},
		},
	}

	err := resp.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatementFailed))
	assert.Contains(t, err.Error(), "no such table")
}

func TestClient_ExecuteWithoutWarehouse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	client.config.WarehouseID = ""

	_, err := client.ExecuteSQL(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConstraint))
}

func TestClient_SpaceURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	client.config.Host = "https://example.cloud.databricks.com/"

	assert.Equal(t, "https://example.cloud.databricks.com/explore/genie/01ef", client.SpaceURL("01ef"))
}

func TestTokenAuth_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := TokenAuth("").Authenticate(req)
	assert.True(t, errors.Is(err, ErrAuth))
}
