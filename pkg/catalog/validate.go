package catalog

import (
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PropError reports why a props object does not fit its component.
// Path is a pointer relative to the props object ("" for the object itself).
type PropError struct {
	Path    string
	Message string
}

func (e *PropError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateProps checks props against the component's schema and rules.
// It returns a *PropError on the first violation.
func (c *Catalog) ValidateProps(typeName string, props map[string]any) error {
	comp, ok := c.components[typeName]
	if !ok {
		return &PropError{Message: fmt.Sprintf("unknown component type %q", typeName)}
	}
	if props == nil {
		props = map[string]any{}
	}
	if err := comp.schema.Validate(props); err != nil {
		return schemaError(err)
	}
	if msg, ok := comp.checkRules(props); !ok {
		return &PropError{Message: msg}
	}
	return nil
}

// schemaError flattens a jsonschema failure to its first leaf cause, which
// carries the most specific instance location.
func schemaError(err error) *PropError {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &PropError{Message: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &PropError{Path: leaf.InstanceLocation, Message: leaf.Message}
}
