// Package uitree holds the in-memory UI tree and data model that streamed
// patches and the normalizer operate on, plus the pointer-path helpers used
// to address both.
package uitree

import "sort"

// Element is a single node of the UI tree.
type Element struct {
	Key      string         `json:"key"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props"`
	Children []string       `json:"children"`
	Visible  *bool          `json:"visible,omitempty"`
}

// IsVisible reports whether the element should be rendered. Absent means true.
func (e *Element) IsVisible() bool {
	return e.Visible == nil || *e.Visible
}

// Tree is the flat UI structure: a root key plus an element map.
// Root is empty until the first "/root" assignment arrives.
type Tree struct {
	Root     string              `json:"root"`
	Elements map[string]*Element `json:"elements"`
}

// Data is the bound data model. Props such as valuePath, dataPath and
// rowsPath resolve against it with pointer lookups.
type Data = map[string]any

// NewTree returns the canonical empty tree.
func NewTree() *Tree {
	return &Tree{Elements: make(map[string]*Element)}
}

// NewData returns the canonical empty data model.
func NewData() Data {
	return make(Data)
}

// Keys returns element keys in sorted order.
func (t *Tree) Keys() []string {
	keys := make([]string, 0, len(t.Elements))
	for k := range t.Elements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Parents returns a map from child key to the keys of every element listing it.
func (t *Tree) Parents() map[string][]string {
	parents := make(map[string][]string)
	for _, key := range t.Keys() {
		for _, child := range t.Elements[key].Children {
			parents[child] = append(parents[child], key)
		}
	}
	return parents
}

// Dangling lists "parent -> child" references to keys missing from Elements.
// Streaming tolerates these transiently; a validated tree has none.
func (t *Tree) Dangling() []string {
	var out []string
	for _, key := range t.Keys() {
		for _, child := range t.Elements[key].Children {
			if _, ok := t.Elements[child]; !ok {
				out = append(out, key+" -> "+child)
			}
		}
	}
	return out
}
