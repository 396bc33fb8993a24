// Package demo walks through every space operation against a live
// workspace, creating two spaces that are left in place for inspection.
package demo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/geniectl/pkg/genie"
	"github.com/hashicorp-forge/geniectl/pkg/metricview"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
	"github.com/hashicorp-forge/geniectl/pkg/spacesync"
)

// MetricViewName is the metric view created in the example schema.
const MetricViewName = "mv_invoice"

// Result identifies the spaces the demo created.
type Result struct {
	InlineSpaceID     string
	MetricViewSpaceID string

	// MetricView reports whether the metric view DDL succeeded.
	MetricView bool
}

// Runner runs the demo.
type Runner struct {
	Client  *genie.Client
	Syncer  *spacesync.Synchronizer
	UI      cli.Ui
	Log     hclog.Logger
	Catalog string
	Schema  string

	step int
}

func (r *Runner) fqn(name string) string {
	return fmt.Sprintf("%s.%s.%s", r.Catalog, r.Schema, name)
}

func (r *Runner) printStep(title string) {
	r.step++
	r.UI.Output("")
	r.UI.Output(strings.Repeat("=", 60))
	r.UI.Output(fmt.Sprintf("  Step %d: %s", r.step, title))
	r.UI.Output(strings.Repeat("=", 60))
}

func (r *Runner) printResult(label string, value interface{}) {
	r.UI.Output(fmt.Sprintf("  %s: %v", label, value))
}

// Run executes every step in order and stops at the first error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.Log == nil {
		r.Log = hclog.NewNullLogger()
	}
	r.step = 0
	res := &Result{}

	r.UI.Output("Genie API Demo")
	r.UI.Output(fmt.Sprintf("Workspace: %s", r.Client.Host()))
	r.UI.Output(fmt.Sprintf("Schema: %s.%s", r.Catalog, r.Schema))

	r.printStep("Create Space A with inline measures and context")
	spaceA, err := r.createInlineSpace(ctx)
	if err != nil {
		return res, err
	}
	res.InlineSpaceID = spaceA
	r.printResult("Space A ID", spaceA)
	r.printResult("Space A URL", r.Client.SpaceURL(spaceA))

	r.printStep("Export and verify Space A")
	if err := r.reportSections(ctx, spaceA); err != nil {
		return res, err
	}

	r.printStep("Add an inline measure")
	doc, err := r.Syncer.Sync(ctx, spaceA, serialized.Measures, serialized.Insert(
		serialized.NewMeasure("revenue_per_invoice", "SUM(amount) / NULLIF(COUNT(DISTINCT invoice_id), 0)"),
	))
	if err != nil {
		return res, err
	}
	measures, err := doc.Items(serialized.Measures)
	if err != nil {
		return res, err
	}
	r.printResult("Measures after update", fmt.Sprintf("%d (added revenue_per_invoice)", len(measures)))

	r.printStep("Remove and re-add a data source")
	payments := r.fqn("payments")
	if doc, err = r.Syncer.Sync(ctx, spaceA, serialized.Tables, serialized.Remove(payments)); err != nil {
		return res, err
	}
	r.printResult("After removing payments", tableNames(doc))
	if doc, err = r.Syncer.Sync(ctx, spaceA, serialized.Tables, serialized.Insert(serialized.NewTable(payments))); err != nil {
		return res, err
	}
	r.printResult("After re-adding payments", tableNames(doc))

	r.printStep("Manage permissions")
	if err := r.updatePermissions(ctx, spaceA); err != nil {
		return res, err
	}

	r.printStep("Append a text instruction line")
	doc, err = r.Syncer.Sync(ctx, spaceA, serialized.TextInstructions,
		serialized.AppendContent("\nOverdue invoices are those with status = 'OVERDUE'."))
	if err != nil {
		return res, err
	}
	r.printResult("Text instruction lines", fmt.Sprintf("%d (appended overdue definition)", contentLines(doc)))

	r.printStep("Create Space B with metric views")
	res.MetricView, err = r.createMetricView(ctx)
	if err != nil {
		return res, err
	}
	spaceB, err := r.createMetricViewSpace(ctx, res.MetricView)
	if err != nil {
		return res, err
	}
	res.MetricViewSpaceID = spaceB
	r.printResult("Space B ID", spaceB)
	r.printResult("Space B URL", r.Client.SpaceURL(spaceB))

	docB, err := r.Syncer.Export(ctx, spaceB)
	if err != nil {
		return res, err
	}
	r.printResult("Tables", tableNames(docB))
	if views := keys(docB, serialized.MetricViews); len(views) > 0 {
		r.printResult("Metric views", views)
	} else {
		r.printResult("Metric views", "none (DDL not available)")
	}

	r.UI.Output("")
	r.UI.Output(strings.Repeat("=", 60))
	r.UI.Output("  Demo complete, both spaces are live")
	r.UI.Output(strings.Repeat("=", 60))
	r.printResult("Space A (inline)", r.Client.SpaceURL(spaceA))
	r.printResult("Space B (metric views)", r.Client.SpaceURL(spaceB))
	r.UI.Output("")
	r.UI.Output("  To clean up: geniectl cleanup")

	return res, nil
}

func (r *Runner) createInlineSpace(ctx context.Context) (string, error) {
	doc, err := InlineSpace(r.Catalog, r.Schema)
	if err != nil {
		return "", err
	}
	space, err := r.Client.CreateSpace(ctx, &genie.CreateSpaceRequest{
		Title:           "Genie API Demo: Inline Measures",
		Description:     "Demo space showing inline measures, context, sample questions, and permissions via the Genie API.",
		SerializedSpace: doc.String(),
	})
	if err != nil {
		return "", err
	}
	return space.SpaceID, nil
}

func (r *Runner) reportSections(ctx context.Context, spaceID string) error {
	doc, err := r.Syncer.Export(ctx, spaceID)
	if err != nil {
		return err
	}

	for _, s := range []serialized.Section{
		serialized.TextInstructions,
		serialized.ExampleQuestionSQLs,
		serialized.Measures,
		serialized.Filters,
		serialized.Expressions,
		serialized.SampleQuestions,
	} {
		items, err := doc.Items(s)
		if err != nil {
			return err
		}
		r.printResult(strings.Join(s.Path(), "."), len(items))
	}

	tables, err := doc.Items(serialized.Tables)
	if err != nil {
		return err
	}
	for _, it := range tables {
		if it.Key(serialized.Tables) != r.fqn("invoices") {
			continue
		}
		var tbl serialized.Table
		if err := it.Decode(&tbl); err != nil {
			return err
		}
		r.printResult("column_configs (invoices)", fmt.Sprintf("%d columns", len(tbl.ColumnConfigs)))
	}
	return nil
}

func (r *Runner) updatePermissions(ctx context.Context, spaceID string) error {
	perms, err := r.Client.GetPermissions(ctx, spaceID)
	if err != nil {
		return err
	}
	r.UI.Output("  Current permissions:")
	r.printACL(perms)

	perms, err = r.Client.UpdatePermissions(ctx, spaceID,
		genie.GrantGroup("users", genie.CanRun),
		genie.GrantGroup("admins", genie.CanEdit),
	)
	if err != nil {
		return err
	}
	r.UI.Output("  Updated permissions:")
	r.printACL(perms)
	return nil
}

func (r *Runner) printACL(perms *genie.ObjectPermissions) {
	for _, entry := range perms.AccessControlList {
		levels := make([]string, 0, len(entry.AllPermissions))
		for _, l := range entry.Levels() {
			levels = append(levels, string(l))
		}
		r.UI.Output(fmt.Sprintf("    %s: %s", entry.Principal(), strings.Join(levels, ", ")))
	}
}

// createMetricView reports false without an error when the workspace
// rejects the DDL.
func (r *Runner) createMetricView(ctx context.Context) (bool, error) {
	name := r.fqn(MetricViewName)
	r.UI.Output("  Attempting metric view DDL...")

	_, err := metricview.Create(ctx, r.Client, name, metricview.Invoices(r.Catalog, r.Schema))
	switch {
	case err == nil:
		r.printResult("Metric view", "created "+name)
		r.queryMetricView(ctx, name)
		return true, nil
	case errors.Is(err, genie.ErrStatementFailed):
		r.Log.Warn("metric view DDL failed", "error", err)
		r.printResult("Metric view", fmt.Sprintf("skipped, DDL not supported on this workspace (%v)", err))
		return false, nil
	default:
		return false, err
	}
}

// invoiceMetrics is one row of the invoice metric view grouped by status.
type invoiceMetrics struct {
	Status       string  `json:"status"`
	TotalRevenue float64 `json:"total_revenue"`
	InvoiceCount int     `json:"invoice_count"`
}

// queryMetricView prints the measures of the new view by status. A failed
// query is only logged; the view exists either way.
func (r *Runner) queryMetricView(ctx context.Context, name string) {
	resp, err := r.Client.ExecuteSQL(ctx, fmt.Sprintf(
		"SELECT `Status` AS status, MEASURE(`Total Revenue`) AS total_revenue, "+
			"MEASURE(`Invoice Count`) AS invoice_count FROM %s GROUP BY ALL ORDER BY status", name))
	if err == nil {
		err = resp.Err()
	}
	var rows []invoiceMetrics
	if err == nil {
		err = resp.DecodeRows(&rows)
	}
	if err != nil {
		r.Log.Warn("metric view query failed", "view", name, "error", err)
		r.printResult("Metric view query", "skipped")
		return
	}

	r.printResult("Metric view rows", len(rows))
	for _, row := range rows {
		r.UI.Output(fmt.Sprintf("    %s: revenue %.2f, invoices %d", row.Status, row.TotalRevenue, row.InvoiceCount))
	}
}

func (r *Runner) createMetricViewSpace(ctx context.Context, withView bool) (string, error) {
	doc, err := MetricViewSpace(r.Catalog, r.Schema, withView)
	if err != nil {
		return "", err
	}

	title := "Genie API Demo: Data Sources"
	desc := "Demo space showing data source management via the Genie API (metric view DDL not available on this workspace)."
	if withView {
		title = "Genie API Demo: Metric Views"
		desc = "Demo space showing metric views attached via the Genie API."
	}

	space, err := r.Client.CreateSpace(ctx, &genie.CreateSpaceRequest{
		Title:           title,
		Description:     desc,
		SerializedSpace: doc.String(),
	})
	if err != nil {
		return "", err
	}
	return space.SpaceID, nil
}

func keys(doc *serialized.Document, s serialized.Section) []string {
	items, err := doc.Items(s)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Key(s))
	}
	return out
}

func tableNames(doc *serialized.Document) []string {
	return keys(doc, serialized.Tables)
}

func contentLines(doc *serialized.Document) int {
	items, err := doc.Items(serialized.TextInstructions)
	if err != nil || len(items) == 0 {
		return 0
	}
	var ti serialized.TextInstruction
	if err := items[0].Decode(&ti); err != nil {
		return 0
	}
	return len(ti.Content)
}
