package normalize

import (
	"errors"
	"fmt"
)

// Deterministic error codes for trees rejected at the renderer boundary.
const (
	CodeSchema   = "ERR_TREE_SCHEMA"
	CodeTooLarge = "ERR_TREE_TOO_LARGE"
)

var (
	// ErrSchema matches any catalog validation failure.
	ErrSchema = errors.New("tree does not fit the catalog")
	// ErrTooLarge matches any size bound failure.
	ErrTooLarge = errors.New("tree exceeds the size bound")
)

// TreeError is a fatal normalization failure. Path is a pointer into the
// final tree ("/elements/<key>/props/label"), empty for whole-tree failures.
type TreeError struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (e *TreeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap maps the code onto ErrSchema or ErrTooLarge.
func (e *TreeError) Unwrap() error {
	switch e.Code {
	case CodeSchema:
		return ErrSchema
	case CodeTooLarge:
		return ErrTooLarge
	}
	return nil
}

func schemaErr(path, format string, args ...any) *TreeError {
	return &TreeError{Code: CodeSchema, Path: path, Message: fmt.Sprintf(format, args...)}
}
