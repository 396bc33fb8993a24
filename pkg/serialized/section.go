package serialized

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

// Section identifies one ordered list inside the document.
type Section int

const (
	Tables Section = iota
	MetricViews
	TextInstructions
	ExampleQuestionSQLs
	Measures
	Filters
	Expressions
	SampleQuestions
)

// MaxDataSources is the number of tables, views and metric views a space
// may reference.
const MaxDataSources = 30

// MaxTextInstructions is the number of text_instructions entries a space
// may have. Additional text goes into the entry's content lines.
const MaxTextInstructions = 1

type sectionSpec struct {
	name     string
	path     []string
	key      string
	validate func(items []Item) error
}

var sectionSpecs = map[Section]sectionSpec{
	Tables: {
		name: "tables",
		path: []string{"data_sources", "tables"},
		key:  "identifier",
	},
	MetricViews: {
		name: "metric_views",
		path: []string{"data_sources", "metric_views"},
		key:  "identifier",
	},
	TextInstructions: {
		name:     "text_instructions",
		path:     []string{"instructions", "text_instructions"},
		key:      "id",
		validate: validateTextInstructions,
	},
	ExampleQuestionSQLs: {
		name: "example_question_sqls",
		path: []string{"instructions", "example_question_sqls"},
		key:  "id",
	},
	Measures: {
		name: "measures",
		path: []string{"instructions", "sql_snippets", "measures"},
		key:  "id",
	},
	Filters: {
		name: "filters",
		path: []string{"instructions", "sql_snippets", "filters"},
		key:  "id",
	},
	Expressions: {
		name: "expressions",
		path: []string{"instructions", "sql_snippets", "expressions"},
		key:  "id",
	},
	SampleQuestions: {
		name: "sample_questions",
		path: []string{"config", "sample_questions"},
		key:  "id",
	},
}

// Sections returns every known section in document order.
func Sections() []Section {
	return []Section{
		Tables, MetricViews, TextInstructions, ExampleQuestionSQLs,
		Measures, Filters, Expressions, SampleQuestions,
	}
}

func (s Section) spec() sectionSpec {
	spec, ok := sectionSpecs[s]
	if !ok {
		panic(fmt.Sprintf("serialized: unknown section %d", int(s)))
	}
	return spec
}

// String returns the JSON field name of the section, e.g. "measures".
func (s Section) String() string {
	if spec, ok := sectionSpecs[s]; ok {
		return spec.name
	}
	return fmt.Sprintf("Section(%d)", int(s))
}

// Path returns the field names leading to the section.
func (s Section) Path() []string {
	return append([]string(nil), s.spec().path...)
}

// KeyField returns the field the section is ordered by: "id" or
// "identifier".
func (s Section) KeyField() string {
	return s.spec().key
}

// IsDataSource reports whether the section counts toward MaxDataSources.
func (s Section) IsDataSource() bool {
	return s == Tables || s == MetricViews
}

// ParseSection accepts a section name in any common casing ("measures",
// "sample-questions", "SampleQuestions") or its dotted path
// ("instructions.sql_snippets.measures").
func ParseSection(name string) (Section, error) {
	want := strcase.ToSnake(strings.TrimSpace(name))
	for _, s := range Sections() {
		spec := s.spec()
		if want == spec.name || name == strings.Join(spec.path, ".") {
			return s, nil
		}
	}
	return 0, genie.NewError("parse section", genie.ErrNotFound, "unknown section %q", name)
}

func validateTextInstructions(items []Item) error {
	if len(items) > MaxTextInstructions {
		return genie.NewError("validate text_instructions", genie.ErrConstraint,
			"%d entries, at most %d allowed; append to content instead",
			len(items), MaxTextInstructions)
	}
	for _, it := range items {
		var ti TextInstruction
		if err := it.Decode(&ti); err != nil {
			return genie.NewError("validate text_instructions", genie.ErrConstraint,
				"content must be a list of strings: %v", err)
		}
	}
	return nil
}
