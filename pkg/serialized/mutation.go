package serialized

import (
	"github.com/hashicorp-forge/geniectl/pkg/genie"
)

// Mutation is a change to the items of one section.
type Mutation struct {
	// Name is used as the operation in errors.
	Name string

	// Creates allows the mutation to run against a section that does not
	// exist yet. Mutations that need existing items leave it false and fail
	// with ErrNotFound instead.
	Creates bool

	// Apply receives a private copy of the section's items and returns the
	// new items. Ordering is restored afterwards.
	Apply func(items []Item) ([]Item, error)
}

// keyOf returns the key field shared by every section the item may belong
// to: items carry either an id or an identifier.
func keyOf(it Item) string {
	if id := it.Str("id"); id != "" {
		return id
	}
	return it.Str("identifier")
}

func indexOf(items []Item, key string) int {
	for i, it := range items {
		if keyOf(it) == key {
			return i
		}
	}
	return -1
}

// Insert adds items. Adding an item whose key is already present fails with
// ErrConstraint.
func Insert(add ...Item) Mutation {
	return Mutation{
		Name:    "insert",
		Creates: true,
		Apply: func(items []Item) ([]Item, error) {
			for _, it := range add {
				key := keyOf(it)
				if key != "" && indexOf(items, key) >= 0 {
					return nil, genie.NewError("insert", genie.ErrConstraint, "%q already exists", key)
				}
				items = append(items, it)
			}
			return items, nil
		},
	}
}

// Upsert replaces items with matching keys and adds the rest.
func Upsert(put ...Item) Mutation {
	return Mutation{
		Name:    "upsert",
		Creates: true,
		Apply: func(items []Item) ([]Item, error) {
			for _, it := range put {
				if i := indexOf(items, keyOf(it)); i >= 0 {
					items[i] = it
					continue
				}
				items = append(items, it)
			}
			return items, nil
		},
	}
}

// Remove deletes the items with the given keys. A key that matches nothing
// fails with ErrNotFound.
func Remove(keys ...string) Mutation {
	return Mutation{
		Name: "remove",
		Apply: func(items []Item) ([]Item, error) {
			for _, key := range keys {
				i := indexOf(items, key)
				if i < 0 {
					return nil, genie.NewError("remove", genie.ErrNotFound, "no item %q", key)
				}
				items = append(items[:i], items[i+1:]...)
			}
			return items, nil
		},
	}
}

// ReplaceAll discards the current items.
func ReplaceAll(items ...Item) Mutation {
	return Mutation{
		Name:    "replace",
		Creates: true,
		Apply: func([]Item) ([]Item, error) {
			return append([]Item{}, items...), nil
		},
	}
}

// Edit rewrites the item with the given key.
func Edit(key string, fn func(Item) (Item, error)) Mutation {
	return Mutation{
		Name: "edit",
		Apply: func(items []Item) ([]Item, error) {
			i := indexOf(items, key)
			if i < 0 {
				return nil, genie.NewError("edit", genie.ErrNotFound, "no item %q", key)
			}
			it, err := fn(items[i])
			if err != nil {
				return nil, err
			}
			items[i] = it
			return items, nil
		},
	}
}

// AppendContent appends lines to the single text instruction entry,
// creating the entry when the space has none. It is meant for the
// TextInstructions section.
func AppendContent(lines ...string) Mutation {
	return Mutation{
		Name:    "append content",
		Creates: true,
		Apply: func(items []Item) ([]Item, error) {
			switch len(items) {
			case 0:
				return []Item{NewTextInstruction(lines...)}, nil
			case 1:
			default:
				return nil, genie.NewError("append content", genie.ErrConstraint,
					"%d text instructions, at most %d allowed", len(items), MaxTextInstructions)
			}

			var ti TextInstruction
			if err := items[0].Decode(&ti); err != nil {
				return nil, genie.NewError("append content", genie.ErrConstraint,
					"content must be a list of strings: %v", err)
			}
			content := append(append([]string{}, ti.Content...), lines...)
			it, err := items[0].With("content", content)
			if err != nil {
				return nil, err
			}
			return []Item{it}, nil
		},
	}
}
