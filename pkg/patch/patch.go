// Package patch turns a growing LLM text stream into UI tree updates.
//
// Extract scans accumulated text for complete JSON patch objects, Apply
// routes a single patch onto a (tree, data) pair, and Replay rebuilds state
// from the empty starting point. None of these ever fail: malformed
// fragments are dropped and unroutable patches are no-ops, so a consumer can
// keep rebuilding as much of the tree as the generator got right.
package patch

// Op is a patch operation.
type Op string

const (
	OpSet     Op = "set"
	OpAdd     Op = "add"
	OpReplace Op = "replace"
	OpRemove  Op = "remove"
)

// IsAssign reports whether op assigns a value. set, add and replace are
// treated identically.
func (o Op) IsAssign() bool {
	return o == OpSet || o == OpAdd || o == OpReplace
}

// Patch is one streamed instruction.
type Patch struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}
