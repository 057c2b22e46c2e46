package patch

import (
	"encoding/json"
	"strings"
)

// ScanResult is the instrumented output of Scan.
type ScanResult struct {
	Patches   []Patch
	Remainder string
	// Dropped counts complete-looking {...} spans that failed to parse.
	Dropped int
	// Ignored counts parsed objects that carry no "op" member.
	Ignored int
}

// Extract returns every complete patch object in buffer, in order, plus the
// unconsumed remainder. It depends only on the buffer contents, so calling
// it on each growth of the buffer or once at the end yields the same patches.
func Extract(buffer string) ([]Patch, string) {
	res := Scan(buffer)
	return res.Patches, res.Remainder
}

// Scan is Extract with drop counters.
func Scan(buffer string) ScanResult {
	var res ScanResult

	depth := 0
	start := -1
	lastEnd := 0
	inString := false
	escaped := false

	for i := 0; i < len(buffer); i++ {
		ch := buffer[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				res.consume(buffer[start : i+1])
				start = -1
				lastEnd = i + 1
			}
		}
	}

	if start >= 0 {
		res.Remainder = buffer[start:]
	} else {
		res.Remainder = strings.TrimSpace(buffer[lastEnd:])
	}
	return res
}

func (r *ScanResult) consume(candidate string) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		r.Dropped++
		return
	}
	rawOp, ok := obj["op"]
	if !ok {
		r.Ignored++
		return
	}
	op, _ := rawOp.(string)
	path, _ := obj["path"].(string)
	r.Patches = append(r.Patches, Patch{Op: Op(op), Path: path, Value: obj["value"]})
}
