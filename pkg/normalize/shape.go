package normalize

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/uitree"
)

// Node members that are not lifted into props.
var reservedNodeFields = map[string]bool{
	"key":      true,
	"id":       true,
	"type":     true,
	"props":    true,
	"children": true,
	"visible":  true,
}

// coerceShape fills r.tree from a canonical {root, elements} object, a
// legacy nested node, or a top-level list of legacy nodes.
func (r *run) coerceShape(candidate any) {
	switch c := candidate.(type) {
	case map[string]any:
		if _, ok := c["elements"]; ok {
			r.readCanonical(c)
			return
		}
		if _, ok := c["type"]; ok {
			if key, ok := r.addNode(c, 1); ok {
				r.tree.Root = key
			}
			return
		}
	case []any:
		key := r.freshKey("Stack")
		stack := &uitree.Element{
			Key:      key,
			Type:     "Stack",
			Props:    map[string]any{"direction": "vertical"},
			Children: []string{},
		}
		r.tree.Elements[key] = stack
		stack.Children = r.readChildren(c, 2)
		r.tree.Root = key
		r.repair(KindWrap, elementPath(key), "top-level list wrapped in a vertical Stack")
		return
	}
	r.nz.logger.DebugContext(r.ctx, "candidate is neither a canonical tree nor a legacy node")
}

func (r *run) readCanonical(c map[string]any) {
	root, _ := c["root"].(string)

	// Canonical keys are registered before any inline child so generated
	// keys never shadow them.
	pending := make(map[string]map[string]any)
	var order []string
	switch elems := c["elements"].(type) {
	case map[string]any:
		keys := make([]string, 0, len(elems))
		for k := range elems {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m, ok := elems[k].(map[string]any)
			if !ok {
				r.repair(KindDrop, elementPath(k), "element is not an object")
				continue
			}
			if k == "" {
				r.repair(KindDrop, elementPath(k), "element has an empty key")
				continue
			}
			pending[k] = m
			order = append(order, k)
		}
	case []any:
		var anonymous []map[string]any
		for _, item := range elems {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			k := nodeKey(m)
			if k == "" || pending[k] != nil {
				anonymous = append(anonymous, m)
				continue
			}
			pending[k] = m
			order = append(order, k)
		}
		for _, m := range anonymous {
			typeName, _ := m["type"].(string)
			k := r.freshKeyAvoiding(typeName, pending)
			pending[k] = m
			order = append(order, k)
		}
	}

	for _, k := range order {
		r.tree.Elements[k] = r.newElement(k, pending[k])
	}
	for _, k := range order {
		r.tree.Elements[k].Children = r.readChildren(pending[k]["children"], 2)
	}

	if root == "" {
		root = r.guessRoot()
		if root != "" {
			r.repair(KindRoot, "/root", "root inferred as "+root)
		}
	}
	r.tree.Root = root
}

// guessRoot picks the first element, in key order, that no other element
// lists as a child.
func (r *run) guessRoot() string {
	parents := r.tree.Parents()
	for _, k := range r.tree.Keys() {
		if len(parents[k]) == 0 {
			return k
		}
	}
	return ""
}

func (r *run) freshKeyAvoiding(typeName string, pending map[string]map[string]any) string {
	return r.uniqueKey(typeName, func(k string) bool {
		_, clash := pending[k]
		return clash || r.taken(k)
	})
}

// addNode flattens a nested node and its descendants into r.tree and
// returns the node's key. Nodes deeper than the ceiling are dropped.
func (r *run) addNode(m map[string]any, depth int) (string, bool) {
	typeName, _ := m["type"].(string)
	if depth > r.nz.maxDepth {
		r.repair(KindDepth, "", "dropped "+typeName+" node nested beyond the depth limit")
		return "", false
	}
	key := nodeKey(m)
	if key == "" || r.taken(key) {
		key = r.freshKey(typeName)
	}
	el := r.newElement(key, m)
	r.tree.Elements[key] = el
	el.Children = r.readChildren(m["children"], depth+1)
	return key, true
}

// readChildren accepts key strings and inline nodes.
func (r *run) readChildren(raw any, depth int) []string {
	items, _ := raw.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch c := item.(type) {
		case string:
			if c != "" {
				out = append(out, c)
			}
		case map[string]any:
			if key, ok := r.addNode(c, depth); ok {
				out = append(out, key)
			}
		}
	}
	return out
}

func (r *run) newElement(key string, m map[string]any) *uitree.Element {
	typeName, _ := m["type"].(string)
	props, _ := m["props"].(map[string]any)
	if props == nil {
		props = make(map[string]any)
	}
	for k, v := range m {
		if reservedNodeFields[k] {
			continue
		}
		if _, ok := props[k]; !ok {
			props[k] = v
		}
	}
	el := &uitree.Element{Key: key, Type: typeName, Props: props, Children: []string{}}
	if v, ok := m["visible"].(bool); ok {
		el.Visible = &v
	}
	return el
}

func nodeKey(m map[string]any) string {
	if s, ok := m["key"].(string); ok && s != "" {
		return s
	}
	if s, ok := m["id"].(string); ok {
		return s
	}
	return ""
}

// toGeneric converts v to the decoded-JSON value space: maps, []any,
// strings, bools, float64 and nil. Other values go through encoding/json.
func toGeneric(v any) any {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = toGeneric(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = toGeneric(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func toCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
