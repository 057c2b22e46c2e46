package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PartialObject(t *testing.T) {
	partial := `{"op":"set","path":"/root","valu`

	patches, rest := Extract(partial)
	assert.Empty(t, patches)
	assert.Equal(t, partial, rest)

	patches, rest = Extract(partial + `e":"main"}`)
	require.Len(t, patches, 1)
	assert.Equal(t, Patch{Op: OpSet, Path: "/root", Value: "main"}, patches[0])
	assert.Empty(t, rest)
}

func TestExtract_StringBoundary(t *testing.T) {
	buf := `{"op":"set","path":"/data/x","value":"a \" b } c"}`

	patches, rest := Extract(buf)
	require.Len(t, patches, 1)
	assert.Equal(t, `a " b } c`, patches[0].Value)
	assert.Empty(t, rest)
}

func TestExtract_MultipleObjectsNoDelimiter(t *testing.T) {
	buf := `{"op":"set","path":"/root","value":"a"}{"op":"add","path":"/data/n","value":1}` + "\n" +
		`  {"op":"remove","path":"/elements/x"}`

	patches, rest := Extract(buf)
	require.Len(t, patches, 3)
	assert.Equal(t, OpSet, patches[0].Op)
	assert.Equal(t, OpAdd, patches[1].Op)
	assert.Equal(t, 1.0, patches[1].Value)
	assert.Equal(t, OpRemove, patches[2].Op)
	assert.Nil(t, patches[2].Value)
	assert.Empty(t, rest)
}

func TestExtract_DiscardsProseBeforeObject(t *testing.T) {
	buf := "Sure, here is your UI:\n" + `{"op":"set","path":"/root","value":"r"}` + "  trailing  "

	patches, rest := Extract(buf)
	require.Len(t, patches, 1)
	assert.Equal(t, "trailing", rest)
}

func TestExtract_NoObjectsKeepsText(t *testing.T) {
	patches, rest := Extract("  thinking...  ")
	assert.Empty(t, patches)
	assert.Equal(t, "thinking...", rest)
}

func TestExtract_ObjectInsideStringLiteral(t *testing.T) {
	buf := `"{\"op\":\"set\",\"path\":\"/root\",\"value\":\"fake\"}" {"op":"set","path":"/root","value":"real"}`

	patches, _ := Extract(buf)
	require.Len(t, patches, 1)
	assert.Equal(t, "real", patches[0].Value)
}

func TestScan_DropsMalformedAndCountsIgnored(t *testing.T) {
	buf := `{"op":"set","path":"/root" "value":"x"}` + // missing comma
		`{"note":"no op here"}` +
		`{"op":"set","path":"/data/ok","value":true}`

	res := Scan(buf)
	require.Len(t, res.Patches, 1)
	assert.Equal(t, "/data/ok", res.Patches[0].Path)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 1, res.Ignored)
}

func TestExtract_NestedBraces(t *testing.T) {
	buf := `{"op":"add","path":"/elements/k","value":{"key":"k","type":"Card","props":{"title":"{x}"},"children":[]}}`

	patches, rest := Extract(buf)
	require.Len(t, patches, 1)
	el, ok := patches[0].Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Card", el["type"])
	assert.Empty(t, rest)
}

func TestExtract_StrayClosingBrace(t *testing.T) {
	buf := `} {"op":"set","path":"/root","value":"a"}`
	patches, _ := Extract(buf)
	require.Len(t, patches, 1)
}

func TestExtract_IdempotentAcrossGrowth(t *testing.T) {
	full := `{"op":"set","path":"/root","value":"a"}{"op":"set","path":"/data/x","value":"}"}{"op":"remove","path":"/data/x"}`

	var buf string
	var last []Patch
	for i := 0; i < len(full); i++ {
		buf += full[i : i+1]
		last, _ = Extract(buf)
	}
	once, _ := Extract(full)
	assert.Equal(t, once, last)
	assert.Len(t, once, 3)
}
