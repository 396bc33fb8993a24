package genie

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"
)

const statementsPath = "/api/2.0/sql/statements/"

// StatementState is the execution state of a SQL statement.
type StatementState string

const (
	StatementPending   StatementState = "PENDING"
	StatementRunning   StatementState = "RUNNING"
	StatementSucceeded StatementState = "SUCCEEDED"
	StatementFailed    StatementState = "FAILED"
	StatementCanceled  StatementState = "CANCELED"
	StatementClosed    StatementState = "CLOSED"
)

// ExecuteStatementRequest is the body of a statement execution call.
type ExecuteStatementRequest struct {
	Statement   string `json:"statement"`
	WarehouseID string `json:"warehouse_id"`
	Catalog     string `json:"catalog,omitempty"`
	Schema      string `json:"schema,omitempty"`
	Format      string `json:"format,omitempty"`
	WaitTimeout string `json:"wait_timeout,omitempty"`
}

// StatementError is the error reported for a failed statement.
type StatementError struct {
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
}

// StatementStatus reports where a statement is.
type StatementStatus struct {
	State StatementState  `json:"state"`
	Error *StatementError `json:"error,omitempty"`
}

// Column is one column of a result schema.
type Column struct {
	Name     string `json:"name"`
	TypeName string `json:"type_name,omitempty"`
	Position int    `json:"position"`
}

// ResultManifest describes the result set.
type ResultManifest struct {
	Format string `json:"format,omitempty"`
	Schema struct {
		ColumnCount int      `json:"column_count"`
		Columns     []Column `json:"columns"`
	} `json:"schema"`
	TotalRowCount int64 `json:"total_row_count,omitempty"`
}

// ResultData holds JSON_ARRAY rows. Every value is a string or null.
type ResultData struct {
	RowCount  int64       `json:"row_count,omitempty"`
	DataArray [][]*string `json:"data_array,omitempty"`
}

// StatementResponse is the outcome of a statement execution call.
type StatementResponse struct {
	StatementID string          `json:"statement_id"`
	Status      StatementStatus `json:"status"`
	Manifest    *ResultManifest `json:"manifest,omitempty"`
	Result      *ResultData     `json:"result,omitempty"`
}

// Succeeded reports whether the statement finished successfully.
func (r *StatementResponse) Succeeded() bool {
	return r.Status.State == StatementSucceeded
}

// Err returns nil for a succeeded statement and an ErrStatementFailed
// error carrying the server message otherwise.
func (r *StatementResponse) Err() error {
	if r.Succeeded() {
		return nil
	}
	msg := string(r.Status.State)
	if r.Status.Error != nil && r.Status.Error.Message != "" {
		msg = fmt.Sprintf("%s: %s", r.Status.State, r.Status.Error.Message)
	}
	return &Error{Op: "execute statement " + r.StatementID, Err: ErrStatementFailed, Msg: msg}
}

// Rows returns the result rows keyed by column name.
func (r *StatementResponse) Rows() []map[string]interface{} {
	if r.Manifest == nil || r.Result == nil {
		return nil
	}

	columns := r.Manifest.Schema.Columns
	rows := make([]map[string]interface{}, 0, len(r.Result.DataArray))
	for _, values := range r.Result.DataArray {
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if i >= len(values) || values[i] == nil {
				row[col.Name] = nil
				continue
			}
			row[col.Name] = *values[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// DecodeRows decodes the result rows into out, which must be a pointer to
// a slice of structs or maps. Struct fields are matched by their json tag
// and string values are converted to the field type.
func (r *StatementResponse) DecodeRows(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create row decoder: %w", err)
	}
	if err := decoder.Decode(r.Rows()); err != nil {
		return fmt.Errorf("failed to decode rows: %w", err)
	}
	return nil
}

// Execute runs a statement. An empty WarehouseID uses the configured one;
// Format and WaitTimeout default to JSON_ARRAY and 50s.
func (c *Client) Execute(ctx context.Context, req *ExecuteStatementRequest) (*StatementResponse, error) {
	if req.WarehouseID == "" {
		req.WarehouseID = c.config.WarehouseID
	}
	if req.WarehouseID == "" {
		return nil, &Error{Op: "execute statement", Err: ErrConstraint, Msg: "no warehouse_id configured"}
	}
	if req.Format == "" {
		req.Format = "JSON_ARRAY"
	}
	if req.WaitTimeout == "" {
		req.WaitTimeout = "50s"
	}

	var resp StatementResponse
	if err := c.doRequest(ctx, http.MethodPost, statementsPath, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}

	c.logger.Debug("executed statement", "statement_id", resp.StatementID, "state", resp.Status.State)
	return &resp, nil
}

// ExecuteSQL runs a statement on the configured warehouse.
func (c *Client) ExecuteSQL(ctx context.Context, statement string) (*StatementResponse, error) {
	return c.Execute(ctx, &ExecuteStatementRequest{Statement: statement})
}
