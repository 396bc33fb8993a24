// Package metricview builds Unity Catalog metric views and attaches them to
// Genie spaces.
package metricview

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/hashicorp-forge/geniectl/pkg/genie"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
	"github.com/hashicorp-forge/geniectl/pkg/spacesync"
)

// DefaultVersion is the metric view YAML version written when a definition
// does not set one.
const DefaultVersion = "1.1"

// Version is the metric view YAML version. It is written as a bare number.
type Version string

func (v Version) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: string(v)}, nil
}

// Field is a dimension or measure.
type Field struct {
	Name    string `yaml:"name"`
	Expr    string `yaml:"expr"`
	Comment string `yaml:"comment,omitempty"`
}

func (f Field) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required),
		validation.Field(&f.Expr, validation.Required),
	)
}

// Definition is the YAML body of a metric view.
type Definition struct {
	Version    Version `yaml:"version"`
	Comment    string  `yaml:"comment,omitempty"`
	Source     string  `yaml:"source"`
	Filter     string  `yaml:"filter,omitempty"`
	Dimensions []Field `yaml:"dimensions,omitempty"`
	Measures   []Field `yaml:"measures"`
}

// Validate checks that the definition has a three-level source and at
// least one measure.
func (d *Definition) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Source, validation.Required, validation.By(identifier)),
		validation.Field(&d.Dimensions),
		validation.Field(&d.Measures, validation.Required),
	)
}

func identifier(value interface{}) error {
	s, _ := value.(string)
	if !serialized.ValidIdentifier(s) {
		return fmt.Errorf("must be a catalog.schema.table name")
	}
	return nil
}

// YAML renders the definition.
func (d *Definition) YAML() (string, error) {
	def := *d
	if def.Version == "" {
		def.Version = DefaultVersion
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&def); err != nil {
		return "", fmt.Errorf("failed to encode metric view: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode metric view: %w", err)
	}
	return buf.String(), nil
}

// DDL returns the CREATE OR REPLACE VIEW statement for the metric view
// name, which must be a three-level identifier.
func (d *Definition) DDL(name string) (string, error) {
	if !serialized.ValidIdentifier(name) {
		return "", genie.NewError("metric view ddl", genie.ErrConstraint,
			"%q is not a catalog.schema.view name", name)
	}
	if err := d.Validate(); err != nil {
		return "", genie.NewError("metric view ddl", genie.ErrConstraint, "%v", err)
	}

	body, err := d.YAML()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE VIEW %s\n", name)
	b.WriteString("WITH METRICS\n")
	b.WriteString("LANGUAGE YAML\n")
	b.WriteString("AS $$\n")
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("$$;")
	return b.String(), nil
}

// Load reads a definition from a YAML file.
func Load(fs afero.Fs, path string) (*Definition, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metric view %s: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse metric view %s: %w", path, err)
	}
	return &def, nil
}

// Invoices is the sample invoice metric view over catalog.schema.invoices.
func Invoices(catalog, schema string) *Definition {
	return &Definition{
		Version: DefaultVersion,
		Comment: "Invoice financial metrics",
		Source:  fmt.Sprintf("%s.%s.invoices", catalog, schema),
		Dimensions: []Field{
			{Name: "Company ID", Expr: "company_id"},
			{Name: "Fiscal Quarter", Expr: "fiscal_quarter"},
			{Name: "Status", Expr: "status"},
		},
		Measures: []Field{
			{Name: "Total Revenue", Expr: "SUM(amount)"},
			{Name: "Invoice Count", Expr: "COUNT(DISTINCT invoice_id)"},
		},
	}
}

// Executor runs SQL statements. *genie.Client implements it.
type Executor interface {
	Execute(ctx context.Context, req *genie.ExecuteStatementRequest) (*genie.StatementResponse, error)
}

// Create runs the DDL for the metric view. Workspaces without the metric
// views feature fail with genie.ErrStatementFailed.
func Create(ctx context.Context, exec Executor, name string, def *Definition) (*genie.StatementResponse, error) {
	ddl, err := def.DDL(name)
	if err != nil {
		return nil, err
	}

	resp, err := exec.Execute(ctx, &genie.ExecuteStatementRequest{Statement: ddl})
	if err != nil {
		return nil, err
	}
	return resp, resp.Err()
}

// Attach adds the metric view to the data sources of a space. Attaching a
// view that is already present leaves the document unchanged.
func Attach(ctx context.Context, syncer *spacesync.Synchronizer, spaceID, name string) (*serialized.Document, error) {
	if !serialized.ValidIdentifier(name) {
		return nil, genie.NewError("attach metric view", genie.ErrConstraint,
			"%q is not a catalog.schema.view name", name)
	}
	return syncer.Sync(ctx, spaceID, serialized.MetricViews, serialized.Upsert(serialized.NewMetricView(name)))
}
