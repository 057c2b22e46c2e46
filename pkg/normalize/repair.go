package normalize

import (
	"fmt"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/uitree"
)

// Repair kinds.
const (
	KindWrap          = "wrap"
	KindRoot          = "root"
	KindDrop          = "drop"
	KindDepth         = "depth"
	KindType          = "type"
	KindAlias         = "alias"
	KindShape         = "shape"
	KindEnum          = "enum"
	KindRange         = "range"
	KindAction        = "action"
	KindStrip         = "strip"
	KindBinding       = "binding"
	KindRemovedAction = "removed_action"
	KindGallery       = "gallery"
	KindButtonGroup   = "button_group"
	KindSingleColumn  = "single_column"
	KindTabPanel      = "tab_panel"
	KindPrune         = "prune"
	KindData          = "data"
)

// Repair records one best-effort fix applied to a candidate tree.
type Repair struct {
	Kind   string `json:"kind"`
	Path   string `json:"path,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (r *run) repair(kind, path, detail string) {
	r.repairs = append(r.repairs, Repair{Kind: kind, Path: path, Detail: detail})
	r.nz.logger.DebugContext(r.ctx, "repair", "kind", kind, "path", path, "detail", detail)
	r.nz.metrics.RecordRepair(r.ctx, kind)
}

func (r *run) repairStructure() {
	r.dropRemovedActions()
	r.groupImages()
	r.groupButtons()
	r.stackChartCards()
	r.linkTabPanels()
	r.pruneUnreachable()
}

// dropRemovedActions deletes elements whose action is no longer permitted
// and unlinks them from every children list.
func (r *run) dropRemovedActions() {
	removed := make(map[string]bool)
	for _, key := range r.tree.Keys() {
		name := actionName(r.tree.Elements[key].Props["action"])
		if name != "" && r.nz.cat.ActionRemoved(name) {
			removed[key] = true
			delete(r.tree.Elements, key)
			r.repair(KindRemovedAction, elementPath(key), "removed action "+name)
		}
	}
	if len(removed) == 0 {
		return
	}
	for _, el := range r.tree.Elements {
		kept := el.Children[:0]
		for _, c := range el.Children {
			if !removed[c] {
				kept = append(kept, c)
			}
		}
		el.Children = kept
	}
	if removed[r.tree.Root] {
		r.tree.Root = ""
	}
}

func actionName(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case map[string]any:
		s, _ := a["name"].(string)
		return s
	}
	return ""
}

// runs calls fn for every maximal run of two or more consecutive children
// of parent matching pred. fn returns the key replacing the run, or "" to
// keep it.
func (r *run) runs(parent *uitree.Element, pred func(*uitree.Element) bool, fn func(run []string) string) {
	out := make([]string, 0, len(parent.Children))
	for i := 0; i < len(parent.Children); {
		j := i
		for j < len(parent.Children) {
			child, ok := r.tree.Elements[parent.Children[j]]
			if !ok || !pred(child) {
				break
			}
			j++
		}
		if j-i >= 2 {
			run := append([]string(nil), parent.Children[i:j]...)
			if key := fn(run); key != "" {
				out = append(out, key)
				i = j
				continue
			}
		}
		if j == i {
			j = i + 1
		}
		out = append(out, parent.Children[i:j]...)
		i = j
	}
	parent.Children = out
}

func isType(name string) func(*uitree.Element) bool {
	return func(el *uitree.Element) bool { return el.Type == name }
}

// groupImages replaces runs of sibling images with one Gallery.
func (r *run) groupImages() {
	for _, key := range r.tree.Keys() {
		parent := r.tree.Elements[key]
		r.runs(parent, isType("Image"), func(run []string) string {
			images := make([]any, 0, len(run))
			for _, k := range run {
				item := map[string]any{}
				for _, field := range []string{"src", "alt", "caption"} {
					if v, ok := r.tree.Elements[k].Props[field].(string); ok {
						item[field] = v
					}
				}
				images = append(images, item)
			}
			gallery := r.freshKey("Gallery")
			r.tree.Elements[gallery] = &uitree.Element{
				Key:      gallery,
				Type:     "Gallery",
				Props:    map[string]any{"images": images},
				Children: []string{},
			}
			r.repair(KindGallery, elementPath(gallery), fmt.Sprintf("%d images under %s", len(run), key))
			return gallery
		})
	}
}

// groupButtons wraps runs of sibling buttons in a horizontal Stack unless
// the parent already is one holding only buttons.
func (r *run) groupButtons() {
	isButton := isType("Button")
	for _, key := range r.tree.Keys() {
		parent := r.tree.Elements[key]
		if parent.Type == "Stack" && parent.Props["direction"] == "horizontal" && r.allChildren(parent, isButton) {
			continue
		}
		r.runs(parent, isButton, func(run []string) string {
			group := r.freshKey("Stack")
			r.tree.Elements[group] = &uitree.Element{
				Key:      group,
				Type:     "Stack",
				Props:    map[string]any{"direction": "horizontal", "gap": "sm"},
				Children: run,
			}
			r.repair(KindButtonGroup, elementPath(group), fmt.Sprintf("%d buttons under %s", len(run), key))
			return group
		})
	}
}

func (r *run) allChildren(parent *uitree.Element, pred func(*uitree.Element) bool) bool {
	if len(parent.Children) == 0 {
		return false
	}
	for _, c := range parent.Children {
		child, ok := r.tree.Elements[c]
		if !ok || !pred(child) {
			return false
		}
	}
	return true
}

// stackChartCards forces a Grid or Stack whose children are all cards
// holding a chart into a single column.
func (r *run) stackChartCards() {
	chartCard := func(el *uitree.Element) bool {
		if el.Type != "Card" {
			return false
		}
		for _, c := range el.Children {
			if child, ok := r.tree.Elements[c]; ok && child.Type == "Chart" {
				return true
			}
		}
		return false
	}
	for _, key := range r.tree.Keys() {
		el := r.tree.Elements[key]
		if !r.allChildren(el, chartCard) {
			continue
		}
		switch el.Type {
		case "Grid":
			if el.Props["columns"] != 1.0 {
				el.Props["columns"] = 1.0
				r.repair(KindSingleColumn, elementPath(key, "props", "columns"), "chart cards")
			}
		case "Stack":
			if el.Props["direction"] != "vertical" {
				el.Props["direction"] = "vertical"
				r.repair(KindSingleColumn, elementPath(key, "props", "direction"), "chart cards")
			}
		}
	}
}

// linkTabPanels gives every declared tab item a TabPanel child. Orphan
// panels with a matching value are linked; otherwise a placeholder panel is
// synthesized.
func (r *run) linkTabPanels() {
	parents := r.tree.Parents()
	linked := make(map[string]bool)
	for _, key := range r.tree.Keys() {
		tabs := r.tree.Elements[key]
		if tabs == nil || tabs.Type != "Tabs" {
			continue
		}
		have := make(map[string]bool)
		for _, c := range tabs.Children {
			if v, ok := r.panelValue(c); ok {
				have[v] = true
			}
		}
		items, _ := tabs.Props["items"].([]any)
		for _, item := range items {
			m, _ := item.(map[string]any)
			value, _ := m["value"].(string)
			if value == "" || have[value] {
				continue
			}
			have[value] = true

			if orphan := r.orphanPanel(value, parents, linked); orphan != "" {
				linked[orphan] = true
				tabs.Children = append(tabs.Children, orphan)
				r.repair(KindTabPanel, elementPath(key, "children"), "linked "+orphan+" for "+value)
				continue
			}

			text := r.freshKey("Text")
			r.tree.Elements[text] = &uitree.Element{
				Key:      text,
				Type:     "Text",
				Props:    map[string]any{"text": "No content available.", "variant": "muted"},
				Children: []string{},
			}
			panel := r.freshKey("TabPanel")
			r.tree.Elements[panel] = &uitree.Element{
				Key:      panel,
				Type:     "TabPanel",
				Props:    map[string]any{"value": value},
				Children: []string{text},
			}
			tabs.Children = append(tabs.Children, panel)
			r.repair(KindTabPanel, elementPath(panel), "placeholder for "+value)
		}
	}
}

func (r *run) panelValue(key string) (string, bool) {
	el, ok := r.tree.Elements[key]
	if !ok || el.Type != "TabPanel" {
		return "", false
	}
	v, ok := el.Props["value"].(string)
	return v, ok
}

func (r *run) orphanPanel(value string, parents map[string][]string, linked map[string]bool) string {
	for _, k := range r.tree.Keys() {
		if linked[k] || len(parents[k]) > 0 || k == r.tree.Root {
			continue
		}
		if v, ok := r.panelValue(k); ok && v == value {
			return k
		}
	}
	return ""
}

// pruneUnreachable deletes elements the root cannot reach. Trees without a
// resolvable root are left for validation to reject.
func (r *run) pruneUnreachable() {
	if _, ok := r.tree.Elements[r.tree.Root]; !ok {
		return
	}
	seen := map[string]bool{r.tree.Root: true}
	queue := []string{r.tree.Root}
	for len(queue) > 0 {
		el := r.tree.Elements[queue[0]]
		queue = queue[1:]
		for _, c := range el.Children {
			if _, ok := r.tree.Elements[c]; ok && !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	for _, k := range r.tree.Keys() {
		if !seen[k] {
			delete(r.tree.Elements, k)
			r.repair(KindPrune, elementPath(k), "unreachable from root")
		}
	}
}
