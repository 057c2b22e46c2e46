package uitree

import (
	"strconv"
	"strings"
)

// ParsePointer splits an absolute pointer ("/a/b~1c") into unescaped
// segments. It returns false for relative paths. "/" yields one empty segment.
func ParsePointer(p string) ([]string, bool) {
	if !strings.HasPrefix(p, "/") {
		return nil, false
	}
	raw := strings.Split(p[1:], "/")
	segs := make([]string, len(raw))
	for i, s := range raw {
		segs[i] = UnescapeSegment(s)
	}
	return segs, true
}

// EscapeSegment escapes "~" and "/" per RFC 6901.
func EscapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// UnescapeSegment reverses EscapeSegment.
func UnescapeSegment(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// JoinPointer builds an absolute pointer from raw segments.
func JoinPointer(segs ...string) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(EscapeSegment(s))
	}
	return b.String()
}

// Get resolves segs inside v.
func Get(v any, segs []string) (any, bool) {
	cur := v
	for _, seg := range segs {
		switch c := cur.(type) {
		case map[string]any:
			next, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, ok := arrayIndex(seg, len(c))
			if !ok || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// GetPointer is Get for a pointer string.
func GetPointer(v any, p string) (any, bool) {
	segs, ok := ParsePointer(p)
	if !ok {
		return nil, false
	}
	return Get(v, segs)
}

// Set assigns value at segs inside v and returns the updated container.
// Missing or scalar intermediates become objects. For arrays, "-" or an
// index equal to the length appends; other out-of-range indexes are a no-op.
func Set(v any, segs []string, value any) any {
	if len(segs) == 0 {
		return value
	}
	seg, rest := segs[0], segs[1:]
	switch c := v.(type) {
	case map[string]any:
		c[seg] = Set(c[seg], rest, value)
		return c
	case []any:
		if seg == "-" {
			return append(c, Set(nil, rest, value))
		}
		idx, ok := arrayIndex(seg, len(c))
		if !ok {
			return c
		}
		if idx == len(c) {
			return append(c, Set(nil, rest, value))
		}
		c[idx] = Set(c[idx], rest, value)
		return c
	default:
		return map[string]any{seg: Set(nil, rest, value)}
	}
}

// Settable reports whether Set(v, segs, x) would leave segs resolving to x
// without replacing a non-null scalar on the way. The leaf itself may be
// overwritten.
func Settable(v any, segs []string) bool {
	if len(segs) == 0 {
		return false
	}
	cur := v
	for i, seg := range segs {
		last := i == len(segs)-1
		switch c := cur.(type) {
		case map[string]any:
			next, ok := c[seg]
			if last || !ok || next == nil {
				return true
			}
			cur = next
		case []any:
			idx, ok := arrayIndex(seg, len(c))
			if !ok {
				return false
			}
			if last || idx == len(c) || c[idx] == nil {
				return true
			}
			cur = c[idx]
		default:
			return false
		}
	}
	return false
}

// Remove deletes the leaf at segs and returns the updated container. The
// bool is false when any intermediate does not resolve to a container.
func Remove(v any, segs []string) (any, bool) {
	if len(segs) == 0 {
		return v, false
	}
	seg, rest := segs[0], segs[1:]
	switch c := v.(type) {
	case map[string]any:
		if len(rest) == 0 {
			_, ok := c[seg]
			delete(c, seg)
			return c, ok
		}
		child, ok := c[seg]
		if !ok {
			return c, false
		}
		updated, ok := Remove(child, rest)
		if ok {
			c[seg] = updated
		}
		return c, ok
	case []any:
		idx, ok := arrayIndex(seg, len(c))
		if !ok || idx >= len(c) {
			return c, false
		}
		if len(rest) == 0 {
			return append(c[:idx:idx], c[idx+1:]...), true
		}
		updated, ok := Remove(c[idx], rest)
		if ok {
			c[idx] = updated
		}
		return c, ok
	default:
		return v, false
	}
}

func arrayIndex(seg string, n int) (int, bool) {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return 0, false
	}
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 || idx > n {
		return 0, false
	}
	return idx, true
}
