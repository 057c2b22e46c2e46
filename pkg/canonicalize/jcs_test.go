package canonicalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/uitree"
)

func TestJCS_Sorting(t *testing.T) {
	b, err := JCS(map[string]any{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(b))
}

func TestJCS_NoHTMLEscaping(t *testing.T) {
	b, err := JCS(map[string]string{"html": "<b>bold</b> & more"})
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<b>bold</b> & more"}`, string(b))
}

func TestJCS_Numbers(t *testing.T) {
	b, err := JCS(map[string]any{"i": 4.0, "f": 0.5, "big": 1e21})
	require.NoError(t, err)
	assert.Equal(t, `{"big":1e+21,"f":0.5,"i":4}`, string(b))
}

func TestJCS_Tree(t *testing.T) {
	tree := uitree.NewTree()
	tree.Root = "r"
	tree.Elements["r"] = &uitree.Element{Key: "r", Type: "Text", Props: map[string]any{"text": "hi"}, Children: []string{}}

	b, err := JCS(tree)
	require.NoError(t, err)
	assert.Equal(t, `{"elements":{"r":{"children":[],"key":"r","props":{"text":"hi"},"type":"Text"}},"root":"r"}`, string(b))

	n, err := Size(tree)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
}

func TestCanonicalHash_Stability(t *testing.T) {
	type S struct {
		B int `json:"b"`
		A int `json:"a"`
	}
	h1, err := CanonicalHash(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	h2, err := CanonicalHash(S{A: 1, B: 2})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}
