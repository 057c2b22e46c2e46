package uitree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	segs, ok := ParsePointer("/elements/a~1b/props/x~0y")
	require.True(t, ok)
	assert.Equal(t, []string{"elements", "a/b", "props", "x~y"}, segs)

	_, ok = ParsePointer("elements/a")
	assert.False(t, ok)

	segs, ok = ParsePointer("/")
	require.True(t, ok)
	assert.Equal(t, []string{""}, segs)
}

func TestJoinPointer_RoundTrip(t *testing.T) {
	p := JoinPointer("data", "a/b", "c~d")
	assert.Equal(t, "/data/a~1b/c~0d", p)
	segs, ok := ParsePointer(p)
	require.True(t, ok)
	assert.Equal(t, []string{"data", "a/b", "c~d"}, segs)
}

func TestSet_CreatesIntermediates(t *testing.T) {
	d := NewData()
	out := Set(d, []string{"filters", "status"}, "active")
	m := out.(map[string]any)
	assert.Equal(t, map[string]any{"status": "active"}, m["filters"])
}

func TestSet_OverwritesScalarIntermediate(t *testing.T) {
	d := map[string]any{"a": 5.0}
	out := Set(d, []string{"a", "b"}, true).(map[string]any)
	assert.Equal(t, map[string]any{"b": true}, out["a"])
}

func TestSet_Arrays(t *testing.T) {
	d := map[string]any{"rows": []any{"x"}}
	Set(d, []string{"rows", "-"}, "y")
	Set(d, []string{"rows", "2"}, "z")
	Set(d, []string{"rows", "0"}, "w")
	Set(d, []string{"rows", "9"}, "ignored")
	assert.Equal(t, []any{"w", "y", "z"}, d["rows"])
}

func TestRemove(t *testing.T) {
	d := map[string]any{
		"filters": map[string]any{"status": "active"},
		"rows":    []any{"a", "b", "c"},
		"leaf":    1.0,
	}

	_, ok := Remove(d, []string{"filters", "status"})
	assert.True(t, ok)
	assert.Equal(t, map[string]any{}, d["filters"])

	_, ok = Remove(d, []string{"rows", "1"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "c"}, d["rows"])

	_, ok = Remove(d, []string{"leaf", "deeper"})
	assert.False(t, ok, "scalar intermediate is not a container")

	_, ok = Remove(d, []string{"missing", "x"})
	assert.False(t, ok)
}

func TestGet(t *testing.T) {
	d := map[string]any{"a": []any{map[string]any{"b": "c"}}}
	v, ok := Get(d, []string{"a", "0", "b"})
	require.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = Get(d, []string{"a", "01"})
	assert.False(t, ok, "leading zeros are not array indexes")

	v, ok = GetPointer(d, "/a/0/b")
	require.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestSettable(t *testing.T) {
	d := map[string]any{
		"name":  "bob",
		"flags": []any{},
		"list":  []any{map[string]any{"a": 1.0}, nil},
		"none":  nil,
	}
	cases := map[string]bool{
		"/new/deep/path": true,
		"/name":          true,
		"/name/len":      false,
		"/flags/0":       true,
		"/flags/3":       false,
		"/flags/-":       false,
		"/list/0/b":      true,
		"/list/1/b":      true,
		"/none/x":        true,
	}
	for p, want := range cases {
		segs, ok := ParsePointer(p)
		require.True(t, ok)
		assert.Equal(t, want, Settable(d, segs), p)
	}
	assert.False(t, Settable(d, nil))
}
