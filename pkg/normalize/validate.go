package normalize

import (
	"errors"
	"strconv"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/catalog"
)

// validate checks the repaired tree against the catalog. Elements are
// visited depth-first from the root, then any remaining keys in order, so
// the reported path is deterministic.
func (r *run) validate() error {
	t := r.tree
	if t.Root == "" {
		return schemaErr("/root", "root is empty")
	}
	if _, ok := t.Elements[t.Root]; !ok {
		return schemaErr("/root", "root %q is not an element", t.Root)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(t.Elements))

	var visit func(key string) error
	visit = func(key string) error {
		state[key] = visiting
		el := t.Elements[key]
		if err := r.checkElement(key); err != nil {
			return err
		}
		for i, c := range el.Children {
			childPath := elementPath(key, "children", strconv.Itoa(i))
			if _, ok := t.Elements[c]; !ok {
				return schemaErr(childPath, "child %q does not exist", c)
			}
			switch state[c] {
			case visiting:
				return schemaErr(childPath, "child %q forms a cycle", c)
			case unvisited:
				if err := visit(c); err != nil {
					return err
				}
			}
		}
		state[key] = done
		return nil
	}

	if err := visit(t.Root); err != nil {
		return err
	}
	for _, key := range t.Keys() {
		if state[key] == unvisited {
			if err := visit(key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) checkElement(key string) error {
	el := r.tree.Elements[key]
	comp, ok := r.nz.cat.Component(el.Type)
	if !ok {
		return schemaErr(elementPath(key, "type"), "unknown component type %q", el.Type)
	}
	if err := r.nz.cat.ValidateProps(el.Type, el.Props); err != nil {
		var pe *catalog.PropError
		if errors.As(err, &pe) {
			return schemaErr(elementPath(key, "props")+pe.Path, "%s", pe.Message)
		}
		return schemaErr(elementPath(key, "props"), "%v", err)
	}
	if !comp.Children && len(el.Children) > 0 {
		return schemaErr(elementPath(key, "children"), "%s does not accept children", el.Type)
	}
	return nil
}
