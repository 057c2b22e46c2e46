package uitree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTreeClone_IsDeep(t *testing.T) {
	tree := NewTree()
	tree.Root = "a"
	tree.Elements["a"] = &Element{
		Key:      "a",
		Type:     "Card",
		Props:    map[string]any{"title": "T", "nested": map[string]any{"x": 1.0}},
		Children: []string{"b"},
	}

	clone := tree.Clone()
	if diff := cmp.Diff(tree, clone); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	clone.Elements["a"].Props["nested"].(map[string]any)["x"] = 2.0
	clone.Elements["a"].Children[0] = "z"
	assert.Equal(t, 1.0, tree.Elements["a"].Props["nested"].(map[string]any)["x"])
	assert.Equal(t, "b", tree.Elements["a"].Children[0])
}

func TestElementMapRoundTrip(t *testing.T) {
	hidden := false
	el := &Element{Key: "k", Type: "Text", Props: map[string]any{"text": "hi"}, Children: []string{}, Visible: &hidden}
	back := ElementFromMap(ElementToMap(el))
	if diff := cmp.Diff(el, back); diff != "" {
		t.Fatalf("round trip differs (-want +got):\n%s", diff)
	}
}

func TestElementFromMap_Lenient(t *testing.T) {
	el := ElementFromMap(map[string]any{
		"type":     "Stack",
		"props":    "not-an-object",
		"children": []any{"a", 3.0, "b"},
		"visible":  "yes",
	})
	assert.Equal(t, "Stack", el.Type)
	assert.Empty(t, el.Props)
	assert.Equal(t, []string{"a", "b"}, el.Children)
	assert.Nil(t, el.Visible)
	assert.True(t, el.IsVisible())
}

func TestDangling(t *testing.T) {
	tree := NewTree()
	tree.Elements["p"] = &Element{Key: "p", Type: "Stack", Children: []string{"c", "gone"}}
	tree.Elements["c"] = &Element{Key: "c", Type: "Text"}
	assert.Equal(t, []string{"p -> gone"}, tree.Dangling())
	assert.Equal(t, []string{"p"}, tree.Parents()["c"])
}
