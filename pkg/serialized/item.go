package serialized

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a 32-character hex id for document items.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Item is one element of a section. Fields this package does not model are
// kept as they were received.
type Item struct {
	obj *object
}

// NewItem builds an item from any JSON-encodable value.
func NewItem(v interface{}) (Item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Item{}, err
	}
	var it Item
	if err := it.UnmarshalJSON(data); err != nil {
		return Item{}, err
	}
	return it, nil
}

// MustItem is like NewItem but panics on error. Only use it with values of
// the typed views below or literals.
func MustItem(v interface{}) Item {
	it, err := NewItem(v)
	if err != nil {
		panic(fmt.Sprintf("serialized: %v", err))
	}
	return it
}

func (it Item) fields() *object {
	if it.obj == nil {
		return newObject()
	}
	return it.obj
}

// Str returns a string field, or "" when it is absent or not a string.
func (it Item) Str(field string) string {
	raw, ok := it.fields().get(field)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Key returns the ordering key of the item within section s.
func (it Item) Key(s Section) string {
	return it.Str(s.KeyField())
}

// Decode unmarshals the item into v.
func (it Item) Decode(v interface{}) error {
	data, err := it.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// With returns a copy of the item with field set to v.
func (it Item) With(field string, v interface{}) (Item, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Item{}, err
	}
	obj := it.fields().clone()
	obj.set(field, raw)
	return Item{obj: obj}, nil
}

func (it Item) clone() Item {
	return Item{obj: it.fields().clone()}
}

func (it Item) MarshalJSON() ([]byte, error) {
	return it.fields().MarshalJSON()
}

func (it *Item) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}
	it.obj = obj
	return nil
}

// Snippet is a measure, filter or expression.
type Snippet struct {
	ID          string   `json:"id"`
	SQL         []string `json:"sql"`
	DisplayName string   `json:"display_name,omitempty"`
}

// SampleQuestion is a question shown in the space UI.
type SampleQuestion struct {
	ID       string   `json:"id"`
	Question []string `json:"question"`
}

// ExampleSQL pairs a question with the SQL that answers it.
type ExampleSQL struct {
	ID       string   `json:"id"`
	Question []string `json:"question"`
	SQL      []string `json:"sql"`
}

// TextInstruction is free-text domain knowledge. Content lines are
// concatenated by the service.
type TextInstruction struct {
	ID      string   `json:"id"`
	Content []string `json:"content"`
}

// ColumnConfig tunes how the space treats one column of a table.
type ColumnConfig struct {
	ColumnName             string   `json:"column_name"`
	Synonyms               []string `json:"synonyms,omitempty"`
	EnableFormatAssistance bool     `json:"enable_format_assistance,omitempty"`
	EnableEntityMatching   bool     `json:"enable_entity_matching,omitempty"`
}

// NewColumnConfig returns a column config with entity matching and format
// assistance enabled, which is what the sample spaces use.
func NewColumnConfig(column string, synonyms ...string) ColumnConfig {
	return ColumnConfig{
		ColumnName:             column,
		Synonyms:               synonyms,
		EnableFormatAssistance: true,
		EnableEntityMatching:   true,
	}
}

// Table is a table or view data source.
type Table struct {
	Identifier    string         `json:"identifier"`
	ColumnConfigs []ColumnConfig `json:"column_configs,omitempty"`
}

// MetricView is a Unity Catalog metric view data source.
type MetricView struct {
	Identifier string `json:"identifier"`
}

// NewMeasure, NewFilter and NewExpression build snippets with fresh ids.
func NewMeasure(displayName string, sql ...string) Item {
	return MustItem(Snippet{ID: NewID(), SQL: sql, DisplayName: displayName})
}

func NewFilter(displayName string, sql ...string) Item {
	return MustItem(Snippet{ID: NewID(), SQL: sql, DisplayName: displayName})
}

func NewExpression(displayName string, sql ...string) Item {
	return MustItem(Snippet{ID: NewID(), SQL: sql, DisplayName: displayName})
}

// NewSampleQuestion builds a sample question with a fresh id.
func NewSampleQuestion(question string) Item {
	return MustItem(SampleQuestion{ID: NewID(), Question: []string{question}})
}

// NewExampleSQL builds an example question/SQL pair with a fresh id.
func NewExampleSQL(question string, sql ...string) Item {
	return MustItem(ExampleSQL{ID: NewID(), Question: []string{question}, SQL: sql})
}

// NewTextInstruction builds the text instruction entry with a fresh id.
func NewTextInstruction(content ...string) Item {
	if content == nil {
		content = []string{}
	}
	return MustItem(TextInstruction{ID: NewID(), Content: content})
}

// NewTable builds a table data source.
func NewTable(identifier string, columns ...ColumnConfig) Item {
	return MustItem(Table{Identifier: identifier, ColumnConfigs: columns})
}

// NewMetricView builds a metric view data source.
func NewMetricView(identifier string) Item {
	return MustItem(MetricView{Identifier: identifier})
}

// ValidIdentifier reports whether id is a three-level catalog.schema.object
// name.
func ValidIdentifier(id string) bool {
	parts := strings.Split(id, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
