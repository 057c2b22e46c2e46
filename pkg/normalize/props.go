package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/catalog"
	"github.com/dishant0406/dishant-portfolio-sub000/pkg/uitree"
)

// objectLists names list props whose items may arrive as bare strings and
// the two object members a string item expands into.
var objectLists = map[string]map[string][2]string{
	"Tabs":   {"items": {"value", "label"}},
	"Select": {"options": {"value", "label"}},
	"Table":  {"columns": {"key", "label"}},
}

func (r *run) coerceProps() {
	for _, key := range r.tree.Keys() {
		el := r.tree.Elements[key]
		comp := r.resolveType(el)
		if comp == nil {
			continue
		}
		r.coerceElement(el, comp)
	}
}

// resolveType returns the catalog entry for el, fixing the case of a type
// name that only differs from a catalog name by case.
func (r *run) resolveType(el *uitree.Element) *catalog.Component {
	if comp, ok := r.nz.cat.Component(el.Type); ok {
		return comp
	}
	for _, name := range r.nz.cat.Names() {
		if strings.EqualFold(name, el.Type) {
			r.repair(KindType, elementPath(el.Key, "type"), fmt.Sprintf("%q -> %q", el.Type, name))
			el.Type = name
			comp, _ := r.nz.cat.Component(name)
			return comp
		}
	}
	return nil
}

func (r *run) coerceElement(el *uitree.Element, comp *catalog.Component) {
	props := el.Props
	if comp.Name == "Button" {
		r.coerceButtonAction(el)
	}

	for _, alias := range sortedKeys(comp.Aliases) {
		v, ok := props[alias]
		if !ok {
			continue
		}
		canonical := comp.Aliases[alias]
		delete(props, alias)
		if _, exists := props[canonical]; !exists {
			props[canonical] = v
			r.repair(KindAlias, elementPath(el.Key, "props", canonical), "from "+alias)
		}
	}

	for _, name := range sortedKeys(props) {
		if !strings.Contains(name, "_") {
			continue
		}
		camel := toCamel(name)
		if camel == name || !comp.Declares(camel) {
			continue
		}
		v := props[name]
		delete(props, name)
		if _, exists := props[camel]; !exists {
			props[camel] = v
			r.repair(KindAlias, elementPath(el.Key, "props", camel), "from "+name)
		}
	}

	if lists, ok := objectLists[comp.Name]; ok {
		for prop, members := range lists {
			r.expandStringItems(el, prop, members)
		}
	}

	required := make(map[string]bool)
	for _, p := range comp.Required() {
		required[p] = true
	}
	for _, prop := range comp.DeclaredProps() {
		enum := comp.Enum(prop)
		v, ok := props[prop]
		if enum == nil || !ok {
			continue
		}
		fixed, ok := coerceEnum(enum, comp.Synonyms[prop], v)
		switch {
		case ok && fixed != v:
			props[prop] = fixed
			r.repair(KindEnum, elementPath(el.Key, "props", prop), fmt.Sprintf("%v -> %s", v, fixed))
		case !ok && !required[prop]:
			delete(props, prop)
			r.repair(KindStrip, elementPath(el.Key, "props", prop), fmt.Sprintf("dropped unknown value %v", v))
		}
	}

	for _, prop := range sortedKeys(comp.Ranges) {
		rg := comp.Ranges[prop]
		v, present := props[prop]
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				v = f
			}
		}
		clamped := rg.Clamp(v)
		if !present || v != any(clamped) {
			r.repair(KindRange, elementPath(el.Key, "props", prop), fmt.Sprintf("%v -> %g", props[prop], clamped))
		}
		props[prop] = clamped
	}

	for name, v := range props {
		if s, ok := v.(string); ok {
			props[name] = norm.NFC.String(s)
		}
	}

	for _, name := range sortedKeys(props) {
		if !comp.Declares(name) {
			delete(props, name)
			r.repair(KindStrip, elementPath(el.Key, "props", name), "undeclared prop")
		}
	}

	for _, prop := range sortedKeys(comp.Bindings) {
		s, _ := props[prop].(string)
		switch {
		case s == "":
			props[prop] = uitree.JoinPointer(el.Key, strings.TrimSuffix(prop, "Path"))
			r.repair(KindBinding, elementPath(el.Key, "props", prop), "generated "+props[prop].(string))
		case !strings.HasPrefix(s, "/"):
			props[prop] = "/" + strings.ReplaceAll(s, ".", "/")
			r.repair(KindBinding, elementPath(el.Key, "props", prop), s+" -> "+props[prop].(string))
		}
	}
}

// coerceButtonAction rewrites the shorthand forms of a button's action:
// a bare action name, a url/href link and a value/message to send.
func (r *run) coerceButtonAction(el *uitree.Element) {
	props := el.Props
	path := elementPath(el.Key, "props", "action")
	switch a := props["action"].(type) {
	case string:
		props["action"] = map[string]any{"name": a}
		r.repair(KindAction, path, "named action "+a)
		return
	case map[string]any:
		return
	}

	for _, field := range []string{"url", "href"} {
		if u, ok := props[field].(string); ok && u != "" {
			props["action"] = map[string]any{"name": "open_url", "params": map[string]any{"url": u}}
			delete(props, field)
			r.repair(KindAction, path, "open_url from "+field)
			return
		}
	}
	for _, field := range []string{"value", "message"} {
		if m, ok := props[field].(string); ok && m != "" {
			props["action"] = map[string]any{"name": "send_message", "params": map[string]any{"message": m}}
			delete(props, field)
			r.repair(KindAction, path, "send_message from "+field)
			return
		}
	}
}

// expandStringItems turns ["A", "B"] into [{value:"A", label:"A"}, ...].
func (r *run) expandStringItems(el *uitree.Element, prop string, members [2]string) {
	items, ok := el.Props[prop].([]any)
	if !ok {
		return
	}
	changed := false
	for i, item := range items {
		if s, ok := item.(string); ok {
			items[i] = map[string]any{members[0]: s, members[1]: s}
			changed = true
		}
	}
	if changed {
		r.repair(KindShape, elementPath(el.Key, "props", prop), "string items expanded to objects")
	}
}

// coerceEnum maps v onto one of enum. Strings go through the synonym table
// and a case-insensitive match; numbers go through the synonym table and
// then count as a 1-based index into enum, clamped.
func coerceEnum(enum []string, synonyms map[string]string, v any) (string, bool) {
	if len(enum) == 0 {
		return "", false
	}
	switch t := v.(type) {
	case string:
		for _, e := range enum {
			if e == t {
				return e, true
			}
		}
		if s, ok := synonyms[t]; ok {
			return s, true
		}
		folded := strings.ToLower(strings.TrimSpace(t))
		for _, e := range enum {
			if strings.ToLower(e) == folded {
				return e, true
			}
		}
		if s, ok := synonyms[folded]; ok {
			return s, true
		}
		if f, err := strconv.ParseFloat(folded, 64); err == nil {
			return coerceEnum(enum, synonyms, f)
		}
	case float64:
		if s, ok := synonyms[strconv.FormatFloat(t, 'f', -1, 64)]; ok {
			return s, true
		}
		idx := int(t)
		if idx < 1 {
			idx = 1
		}
		if idx > len(enum) {
			idx = len(enum)
		}
		return enum[idx-1], true
	}
	return "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
