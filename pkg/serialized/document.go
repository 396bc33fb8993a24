package serialized

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

// Version is the serialized space schema version this package writes.
const Version = 2

// Document is a serialized space configuration. Sections the caller does
// not touch are carried through as the exact bytes that were parsed.
type Document struct {
	root *object
}

// New returns an empty version 2 document.
func New() *Document {
	root := newObject()
	root.set("version", json.RawMessage(fmt.Sprint(Version)))
	return &Document{root: root}
}

// Parse decodes a serialized_space string.
func Parse(data []byte) (*Document, error) {
	root, err := parseObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse serialized space: %w", err)
	}
	return &Document{root: root}, nil
}

// Marshal encodes the document for the serialized_space field.
func (d *Document) Marshal() ([]byte, error) {
	return d.root.MarshalJSON()
}

// String returns the encoded document, for use as a serialized_space value.
func (d *Document) String() string {
	data, err := d.Marshal()
	if err != nil {
		return ""
	}
	return string(data)
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.clone()}
}

// Version returns the document's version field, or 0 when absent.
func (d *Document) Version() int {
	raw, ok := d.root.get("version")
	if !ok {
		return 0
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	return v
}

// Raw returns the encoded bytes at a dotted field path, e.g. "config" or
// "instructions.sql_snippets". It is meant for comparing sections.
func (d *Document) Raw(path ...string) (json.RawMessage, bool) {
	obj := d.root
	for i, field := range path {
		raw, ok := obj.get(field)
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return raw, true
		}
		child, err := parseObject(raw)
		if err != nil {
			return nil, false
		}
		obj = child
	}
	data, err := obj.MarshalJSON()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Section returns the items of s. found is false when the path does not
// exist in the document.
func (d *Document) Section(s Section) (items []Item, found bool, err error) {
	raw, ok := d.Raw(s.Path()...)
	if !ok {
		return nil, false, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, true, fmt.Errorf("section %s: %w", s, err)
	}
	return items, true, nil
}

// Items is like Section but treats a missing section as empty.
func (d *Document) Items(s Section) ([]Item, error) {
	items, _, err := d.Section(s)
	return items, err
}

// SetSection replaces the items of s, creating the enclosing objects when
// they are missing. Sibling fields at every level are left untouched.
func (d *Document) SetSection(s Section, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	value, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("section %s: %w", s, err)
	}
	return d.setPath(s.Path(), value)
}

func (d *Document) setPath(path []string, value json.RawMessage) error {
	// Walk down, keeping every object on the way so each level can be
	// re-encoded after its child changes.
	chain := []*object{d.root}
	for _, field := range path[:len(path)-1] {
		parent := chain[len(chain)-1]
		child := newObject()
		if raw, ok := parent.get(field); ok {
			var err error
			if child, err = parseObject(raw); err != nil {
				return fmt.Errorf("field %s: %w", field, err)
			}
		}
		chain = append(chain, child)
	}

	chain[len(chain)-1].set(path[len(path)-1], value)
	for i := len(chain) - 1; i > 0; i-- {
		data, err := chain[i].MarshalJSON()
		if err != nil {
			return err
		}
		chain[i-1].set(path[i-1], data)
	}
	return nil
}

// Sorted reports whether items are in ascending key order for s.
func Sorted(s Section, items []Item) bool {
	return sort.SliceIsSorted(items, func(i, j int) bool {
		return items[i].Key(s) < items[j].Key(s)
	})
}

// SortItems stably sorts items by their key for s.
func SortItems(s Section, items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Key(s) < items[j].Key(s)
	})
}

// Normalize sorts every section that violates its ordering invariant and
// returns the sections it rewrote. Sections that are already sorted are
// not re-encoded.
func (d *Document) Normalize() ([]Section, error) {
	var changed []Section
	for _, s := range Sections() {
		items, found, err := d.Section(s)
		if err != nil {
			return changed, err
		}
		if !found || Sorted(s, items) {
			continue
		}
		SortItems(s, items)
		if err := d.SetSection(s, items); err != nil {
			return changed, err
		}
		changed = append(changed, s)
	}
	return changed, nil
}

// CheckOrder returns an ErrConstraint error naming every section that is
// not sorted by its key.
func (d *Document) CheckOrder() error {
	var result *multierror.Error
	for _, s := range Sections() {
		items, found, err := d.Section(s)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if found && !Sorted(s, items) {
			result = multierror.Append(result, genie.NewError("check order", genie.ErrConstraint,
				"%s must be sorted by %s", s, s.KeyField()))
		}
	}
	return result.ErrorOrNil()
}

// Validate checks the documented limits: version, at most one text
// instruction, at most MaxDataSources data sources, and a present, unique
// key on every item. All violations are reported together.
func (d *Document) Validate() error {
	var result *multierror.Error

	if v := d.Version(); v != 0 && v != Version {
		result = multierror.Append(result, genie.NewError("validate", genie.ErrConstraint,
			"unsupported version %d, want %d", v, Version))
	}

	dataSources := 0
	for _, s := range Sections() {
		items, found, err := d.Section(s)
		if err != nil {
			result = multierror.Append(result, genie.NewError("validate", genie.ErrConstraint, "%v", err))
			continue
		}
		if !found {
			continue
		}
		if s.IsDataSource() {
			dataSources += len(items)
		}
		if v := s.spec().validate; v != nil {
			if err := v(items); err != nil {
				result = multierror.Append(result, err)
			}
		}

		seen := make(map[string]bool, len(items))
		for i, it := range items {
			key := it.Key(s)
			if key == "" {
				result = multierror.Append(result, genie.NewError("validate", genie.ErrConstraint,
					"%s[%d] has no %s", s, i, s.KeyField()))
				continue
			}
			if seen[key] {
				result = multierror.Append(result, genie.NewError("validate", genie.ErrConstraint,
					"%s has duplicate %s %q", s, s.KeyField(), key))
			}
			seen[key] = true
			if s.IsDataSource() && !ValidIdentifier(key) {
				result = multierror.Append(result, genie.NewError("validate", genie.ErrConstraint,
					"%s %q is not a catalog.schema.object identifier", s, key))
			}
		}
	}

	if dataSources > MaxDataSources {
		result = multierror.Append(result, genie.NewError("validate", genie.ErrConstraint,
			"%d data sources, at most %d allowed", dataSources, MaxDataSources))
	}

	return result.ErrorOrNil()
}

// Apply runs m against section s and returns the resulting document. The
// receiver is not modified. The mutated section is re-sorted, sections that
// were already sorted keep their exact bytes, and the result is validated.
func (d *Document) Apply(s Section, m Mutation) (*Document, error) {
	items, found, err := d.Section(s)
	if err != nil {
		return nil, err
	}
	if !found && !m.Creates {
		return nil, genie.NewError(m.Name, genie.ErrNotFound,
			"section %s does not exist", joinPath(s))
	}

	working := make([]Item, len(items))
	for i, it := range items {
		working[i] = it.clone()
	}

	out, err := m.Apply(working)
	if err != nil {
		return nil, err
	}
	SortItems(s, out)

	next := d.Clone()
	if err := next.SetSection(s, out); err != nil {
		return nil, err
	}
	if _, err := next.Normalize(); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

func joinPath(s Section) string {
	return strings.Join(s.Path(), ".")
}
