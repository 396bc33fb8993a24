package demo

import (
	"fmt"

	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

// build applies one ReplaceAll per section to an empty document.
func build(sections map[serialized.Section][]serialized.Item) (*serialized.Document, error) {
	doc := serialized.New()
	for _, s := range serialized.Sections() {
		items, ok := sections[s]
		if !ok {
			continue
		}
		next, err := doc.Apply(s, serialized.ReplaceAll(items...))
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", s, err)
		}
		doc = next
	}
	return doc, nil
}

// InlineSpace is Space A: inline measures, filters, expressions, example
// SQL, text instructions and sample questions over the three finance
// tables.
func InlineSpace(catalog, schema string) (*serialized.Document, error) {
	fqn := func(name string) string { return fmt.Sprintf("%s.%s.%s", catalog, schema, name) }

	return build(map[serialized.Section][]serialized.Item{
		serialized.SampleQuestions: {
			serialized.NewSampleQuestion("What is our total revenue this quarter?"),
			serialized.NewSampleQuestion("Which companies have the most overdue invoices?"),
			serialized.NewSampleQuestion("Show me payment trends over the last 6 months."),
			serialized.NewSampleQuestion("What is the average invoice amount by company?"),
		},
		serialized.Tables: {
			serialized.NewTable(fqn("accounts")),
			serialized.NewTable(fqn("invoices"),
				serialized.ColumnConfig{ColumnName: "amount", EnableFormatAssistance: true},
				serialized.ColumnConfig{ColumnName: "company_id", EnableEntityMatching: true, EnableFormatAssistance: true},
				serialized.ColumnConfig{ColumnName: "status", EnableEntityMatching: true, EnableFormatAssistance: true},
			),
			serialized.NewTable(fqn("payments")),
		},
		serialized.TextInstructions: {
			serialized.NewTextInstruction(
				"This space answers questions about financial invoices and payments. ",
				"All monetary values are in USD unless stated otherwise. ",
				"Fiscal quarters: Q1=Jan-Mar, Q2=Apr-Jun, Q3=Jul-Sep, Q4=Oct-Dec.\n",
				"\n",
				"Key joins:\n",
				"- invoices.company_id = accounts.account_id\n",
				"- invoices.invoice_id = payments.invoice_id\n",
			),
		},
		serialized.ExampleQuestionSQLs: {
			serialized.NewExampleSQL("Total revenue by quarter",
				"SELECT fiscal_quarter, SUM(amount) AS total_revenue ",
				fmt.Sprintf("FROM %s ", fqn("invoices")),
				"GROUP BY fiscal_quarter ORDER BY fiscal_quarter",
			),
			serialized.NewExampleSQL("Overdue invoices by company",
				"SELECT a.company_name, COUNT(*) AS overdue_count, SUM(i.amount) AS overdue_total ",
				fmt.Sprintf("FROM %s i ", fqn("invoices")),
				fmt.Sprintf("JOIN %s a ON i.company_id = a.account_id ", fqn("accounts")),
				"WHERE i.status = 'OVERDUE' ",
				"GROUP BY a.company_name ORDER BY overdue_total DESC",
			),
		},
		serialized.Filters: {
			serialized.NewFilter("Paid invoices only", "invoices.status = 'PAID'"),
			serialized.NewFilter("Last 90 days", "invoices.invoice_date >= DATE_ADD(CURRENT_DATE(), -90)"),
		},
		serialized.Expressions: {
			serialized.NewExpression("invoice_size",
				"CASE WHEN amount > 10000 THEN 'Large' WHEN amount > 1000 THEN 'Medium' ELSE 'Small' END"),
		},
		serialized.Measures: {
			serialized.NewMeasure("total_revenue", "SUM(amount)"),
			serialized.NewMeasure("invoice_count", "COUNT(DISTINCT invoice_id)"),
			serialized.NewMeasure("avg_invoice_amount", "AVG(amount)"),
			serialized.NewMeasure("overdue_amount", "SUM(CASE WHEN status = 'OVERDUE' THEN amount ELSE 0 END)"),
		},
	})
}

// MetricViewSpace is Space B: the finance tables plus, when withView is
// set, the invoice metric view.
func MetricViewSpace(catalog, schema string, withView bool) (*serialized.Document, error) {
	fqn := func(name string) string { return fmt.Sprintf("%s.%s.%s", catalog, schema, name) }

	sections := map[serialized.Section][]serialized.Item{
		serialized.Tables: {
			serialized.NewTable(fqn("accounts")),
			serialized.NewTable(fqn("invoices")),
			serialized.NewTable(fqn("payments")),
		},
		serialized.TextInstructions: {
			serialized.NewTextInstruction("This space uses metric views for governed, reusable financial metrics."),
		},
	}
	if withView {
		sections[serialized.MetricViews] = []serialized.Item{serialized.NewMetricView(fqn(MetricViewName))}
	}
	return build(sections)
}
