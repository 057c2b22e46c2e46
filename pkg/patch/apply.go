package patch

import (
	"strings"

	"github.com/dishant0406/dishant-portfolio-sub000/pkg/uitree"
)

// State is the mutable accumulator patches are applied to during replay.
type State struct {
	Tree *uitree.Tree
	Data uitree.Data
}

// NewState returns the canonical empty state.
func NewState() *State {
	return &State{Tree: uitree.NewTree(), Data: uitree.NewData()}
}

// ReplayStats counts how a replay went.
type ReplayStats struct {
	Applied int
	Ignored int
}

// Apply returns the (tree, data) pair that results from applying p. The
// inputs are never mutated.
func Apply(tree *uitree.Tree, data uitree.Data, p Patch) (*uitree.Tree, uitree.Data) {
	if tree == nil {
		tree = uitree.NewTree()
	}
	s := &State{Tree: tree.Clone(), Data: uitree.CloneData(data)}
	s.Apply(p)
	return s.Tree, s.Data
}

// Replay applies patches in order to the empty state.
func Replay(patches []Patch) (*uitree.Tree, uitree.Data, ReplayStats) {
	s := NewState()
	var stats ReplayStats
	for _, p := range patches {
		if s.Apply(p) {
			stats.Applied++
		} else {
			stats.Ignored++
		}
	}
	return s.Tree, s.Data, stats
}

// Apply mutates s in place and reports whether p was routed somewhere.
// Patch values are copied before they are stored.
func (s *State) Apply(p Patch) bool {
	if !p.Op.IsAssign() && p.Op != OpRemove {
		return false
	}
	switch {
	case p.Path == "/root":
		return s.applyRoot(p)
	case strings.HasPrefix(p.Path, "/elements/"):
		return s.applyElement(p)
	case p.Path == "/data" || strings.HasPrefix(p.Path, "/data/"):
		return s.applyData(p)
	default:
		return false
	}
}

func (s *State) applyRoot(p Patch) bool {
	if p.Op == OpRemove {
		s.Tree.Root = ""
		return true
	}
	key, ok := p.Value.(string)
	if !ok {
		return false
	}
	s.Tree.Root = key
	return true
}

func (s *State) applyElement(p Patch) bool {
	segs, _ := uitree.ParsePointer(p.Path)
	// segs[0] == "elements"
	key := segs[1]
	if key == "" {
		return false
	}
	rest := segs[2:]

	if len(rest) == 0 {
		if p.Op == OpRemove {
			// References from other elements' children are left dangling.
			_, ok := s.Tree.Elements[key]
			delete(s.Tree.Elements, key)
			return ok
		}
		obj, ok := p.Value.(map[string]any)
		if !ok {
			return false
		}
		s.put(key, uitree.ElementFromMap(uitree.CloneValue(obj).(map[string]any)))
		return true
	}

	el, ok := s.Tree.Elements[key]
	if !ok {
		return false
	}
	m := uitree.ElementToMap(el)
	if p.Op == OpRemove {
		if _, ok := uitree.Remove(m, rest); !ok {
			return false
		}
	} else {
		uitree.Set(m, rest, uitree.CloneValue(p.Value))
	}
	s.put(key, uitree.ElementFromMap(m))
	return true
}

// put stores el under key. The path key always wins over el.Key, and child
// entries that would close a cycle through el are dropped.
func (s *State) put(key string, el *uitree.Element) {
	el.Key = key
	s.Tree.Elements[key] = el
	if len(el.Children) == 0 {
		return
	}
	kept := el.Children[:0]
	for _, child := range el.Children {
		if s.reaches(child, key) {
			continue
		}
		kept = append(kept, child)
	}
	el.Children = kept
}

// reaches reports whether target is from or one of its descendants.
func (s *State) reaches(from, target string) bool {
	seen := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if k == target {
			return true
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		if el, ok := s.Tree.Elements[k]; ok {
			stack = append(stack, el.Children...)
		}
	}
	return false
}

func (s *State) applyData(p Patch) bool {
	segs, _ := uitree.ParsePointer(p.Path)
	rest := segs[1:]
	whole := len(rest) == 0 || (len(rest) == 1 && rest[0] == "")

	if p.Op == OpRemove {
		if whole {
			s.Data = uitree.NewData()
			return true
		}
		_, ok := uitree.Remove(s.Data, rest)
		return ok
	}

	if whole {
		if obj, ok := p.Value.(map[string]any); ok {
			s.Data = uitree.CloneValue(obj).(map[string]any)
		} else {
			s.Data = uitree.NewData()
		}
		return true
	}
	s.Data = uitree.Set(s.Data, rest, uitree.CloneValue(p.Value)).(map[string]any)
	return true
}
