package uitree

// CloneValue deep-copies a JSON-like value. Maps and slices are copied,
// scalars are shared.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = CloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = CloneValue(val)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// CloneData deep-copies a data model. A nil model clones to an empty one.
func CloneData(d Data) Data {
	if d == nil {
		return NewData()
	}
	return CloneValue(d).(map[string]any)
}

// Clone deep-copies an element.
func (e *Element) Clone() *Element {
	out := &Element{
		Key:      e.Key,
		Type:     e.Type,
		Children: append([]string{}, e.Children...),
	}
	if e.Props != nil {
		out.Props = CloneValue(e.Props).(map[string]any)
	} else {
		out.Props = make(map[string]any)
	}
	if e.Visible != nil {
		v := *e.Visible
		out.Visible = &v
	}
	return out
}

// Clone deep-copies a tree.
func (t *Tree) Clone() *Tree {
	out := &Tree{Root: t.Root, Elements: make(map[string]*Element, len(t.Elements))}
	for k, el := range t.Elements {
		if el != nil {
			out.Elements[k] = el.Clone()
		}
	}
	return out
}

// ElementToMap converts an element to its generic object form so a pointer
// can be resolved inside it.
func ElementToMap(e *Element) map[string]any {
	children := make([]any, len(e.Children))
	for i, c := range e.Children {
		children[i] = c
	}
	props := e.Props
	if props == nil {
		props = make(map[string]any)
	}
	m := map[string]any{
		"key":      e.Key,
		"type":     e.Type,
		"props":    props,
		"children": children,
	}
	if e.Visible != nil {
		m["visible"] = *e.Visible
	}
	return m
}

// ElementFromMap reads an element out of its generic object form. It is
// lenient: non-string children are skipped, a non-object props becomes
// empty, and a non-bool visible is dropped.
func ElementFromMap(m map[string]any) *Element {
	e := &Element{Props: make(map[string]any), Children: []string{}}
	if s, ok := m["key"].(string); ok {
		e.Key = s
	}
	if s, ok := m["type"].(string); ok {
		e.Type = s
	}
	if p, ok := m["props"].(map[string]any); ok {
		e.Props = p
	}
	switch c := m["children"].(type) {
	case []any:
		for _, item := range c {
			if s, ok := item.(string); ok {
				e.Children = append(e.Children, s)
			}
		}
	case []string:
		e.Children = append(e.Children, c...)
	}
	if v, ok := m["visible"].(bool); ok {
		e.Visible = &v
	}
	return e
}
