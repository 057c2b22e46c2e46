package catalog

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Describe writes a Markdown reference of the catalog. The same text is
// suitable for operator docs and for a generator's system prompt.
func (c *Catalog) Describe(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Component catalog v%s\n\n", c.version)
	fmt.Fprintf(&b, "Allowed actions: %s\n\n", strings.Join(c.def.Actions.Allowed, ", "))

	for _, comp := range c.def.Components {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", comp.Name, comp.Description)
		if comp.Children {
			b.WriteString("Accepts children.\n\n")
		} else {
			b.WriteString("Does not accept children.\n\n")
		}

		required := toSet(comp.Required())
		props := comp.DeclaredProps()
		if len(props) > 0 {
			b.WriteString("| prop | type | required |\n|---|---|---|\n")
			for _, name := range props {
				req := ""
				if required[name] {
					req = "yes"
				}
				fmt.Fprintf(&b, "| %s | %s | %s |\n", name, comp.describeProp(name), req)
			}
			b.WriteString("\n")
		}
		bound := make([]string, 0, len(comp.Bindings))
		for prop := range comp.Bindings {
			bound = append(bound, prop)
		}
		sort.Strings(bound)
		for _, prop := range bound {
			fmt.Fprintf(&b, "`%s` is a data-model pointer bound to a %s value.\n\n", prop, comp.Bindings[prop])
		}
		for _, rule := range comp.Rules {
			fmt.Fprintf(&b, "Constraint: %s.\n\n", rule.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (c *Component) describeProp(name string) string {
	if enum := c.Enum(name); enum != nil {
		return strings.Join(enum, " \\| ")
	}
	def, _ := c.properties()[name].(map[string]any)
	if _, ok := def["$ref"]; ok {
		return "action"
	}
	switch t := def["type"].(type) {
	case string:
		if r, ok := c.Ranges[name]; ok {
			return fmt.Sprintf("%s %g..%g", t, r.Min, r.Max)
		}
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, " \\| ")
	}
	return "any"
}
