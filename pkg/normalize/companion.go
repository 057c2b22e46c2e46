package normalize

import (
	"fmt"
	"strings"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/catalog"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/uitree"
)

const placeholderRows = 3

// synthesizeData gives every bound prop a well-typed value in the data
// model so the renderer never resolves an unbound pointer. A placeholder
// never replaces a value another binding relies on; such a prop is rebound
// to a fresh pointer instead.
func (r *run) synthesizeData() {
	for _, key := range r.tree.Keys() {
		el := r.tree.Elements[key]
		comp, ok := r.nz.cat.Component(el.Type)
		if !ok {
			continue
		}
		for _, prop := range sortedKeys(comp.Bindings) {
			kind := comp.Bindings[prop]
			path, _ := el.Props[prop].(string)
			segs, ok := uitree.ParsePointer(path)
			if !ok {
				continue
			}
			current, found := uitree.Get(r.data, segs)
			if found && boundValueOK(kind, current, el) {
				continue
			}
			value := placeholder(kind, el)
			occupied := found && current != nil && r.sharedBinding(segs, key, prop)
			if !occupied && r.place(segs, value) {
				r.repair(KindData, path, fmt.Sprintf("placeholder %s for %s", kind, key))
				continue
			}

			fresh := r.freshBinding(key, prop)
			if !r.place(fresh, value) {
				continue
			}
			el.Props[prop] = uitree.JoinPointer(fresh...)
			r.repair(KindData, el.Props[prop].(string),
				fmt.Sprintf("placeholder %s for %s, rebound from %s", kind, key, path))
		}
	}
}

// place writes value at segs and reports whether it now resolves there.
func (r *run) place(segs []string, value any) bool {
	if !uitree.Settable(r.data, segs) {
		return false
	}
	if updated, ok := uitree.Set(r.data, segs, value).(map[string]any); ok {
		r.data = updated
	}
	_, ok := uitree.Get(r.data, segs)
	return ok
}

// sharedBinding reports whether any other binding prop points at segs, inside
// it, or at one of its ancestors.
func (r *run) sharedBinding(segs []string, key, prop string) bool {
	for _, other := range r.tree.Keys() {
		el := r.tree.Elements[other]
		comp, ok := r.nz.cat.Component(el.Type)
		if !ok {
			continue
		}
		for name := range comp.Bindings {
			if other == key && name == prop {
				continue
			}
			path, _ := el.Props[name].(string)
			theirs, ok := uitree.ParsePointer(path)
			if ok && (hasPrefix(theirs, segs) || hasPrefix(segs, theirs)) {
				return true
			}
		}
	}
	return false
}

// freshBinding returns an unused pointer for an element's bound prop:
// /<key>/<name>, then /<key>-2/<name> and so on.
func (r *run) freshBinding(key, prop string) []string {
	name := strings.TrimSuffix(prop, "Path")
	if name == "" {
		name = prop
	}
	for n := 1; ; n++ {
		head := key
		if n > 1 {
			head = fmt.Sprintf("%s-%d", key, n)
		}
		segs := []string{head, name}
		if _, found := uitree.Get(r.data, segs); found || !uitree.Settable(r.data, segs) {
			continue
		}
		if !r.sharedBinding(segs, key, prop) {
			return segs
		}
	}
}

func hasPrefix(segs, prefix []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i := range prefix {
		if segs[i] != prefix[i] {
			return false
		}
	}
	return true
}

func boundValueOK(kind catalog.BindingKind, v any, el *uitree.Element) bool {
	switch kind {
	case catalog.BindRows:
		rows, ok := v.([]any)
		if !ok || len(rows) == 0 {
			return false
		}
		for _, row := range rows {
			if _, ok := row.(map[string]any); !ok {
				return false
			}
		}
		return true
	case catalog.BindSeries:
		series, ok := v.([]any)
		return ok && len(series) > 0
	case catalog.BindSelect:
		switch v.(type) {
		case string, float64:
		default:
			return false
		}
		if v == "" {
			return false
		}
		for _, opt := range objects(el.Props["options"]) {
			if opt["value"] == v {
				return true
			}
		}
		return false
	case catalog.BindSlider, catalog.BindNumber:
		_, ok := v.(float64)
		return ok
	case catalog.BindBoolean:
		_, ok := v.(bool)
		return ok
	case catalog.BindString:
		_, ok := v.(string)
		return ok
	}
	return v != nil
}

func placeholder(kind catalog.BindingKind, el *uitree.Element) any {
	switch kind {
	case catalog.BindRows:
		columns := objects(el.Props["columns"])
		rows := make([]any, placeholderRows)
		for i := range rows {
			row := make(map[string]any, len(columns))
			for _, col := range columns {
				key, _ := col["key"].(string)
				if key == "" {
					continue
				}
				label, _ := col["label"].(string)
				if label == "" {
					label = key
				}
				row[key] = fmt.Sprintf("%s %d", label, i+1)
			}
			rows[i] = row
		}
		return rows
	case catalog.BindSeries:
		xKey, _ := el.Props["xKey"].(string)
		yKey, _ := el.Props["yKey"].(string)
		points := make([]any, placeholderRows)
		for i := range points {
			points[i] = map[string]any{
				xKey: fmt.Sprintf("Item %d", i+1),
				yKey: 0.0,
			}
		}
		return points
	case catalog.BindSelect:
		if opts := objects(el.Props["options"]); len(opts) > 0 {
			if v, ok := opts[0]["value"]; ok {
				return v
			}
		}
		return ""
	case catalog.BindSlider:
		if lo, ok := el.Props["min"].(float64); ok {
			return lo
		}
		return 0.0
	case catalog.BindNumber:
		return 0.0
	case catalog.BindBoolean:
		return false
	}
	return ""
}

func objects(v any) []map[string]any {
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
