package executor

import (
	"strconv"
	"strings"
)

// Path locates a value in the response: field names are strings, list
// indices are ints.
type Path []PathElement

type PathElement any

// String renders p as authors[0].name.
func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// with returns a copy of p extended by elem.
func (p Path) with(elem PathElement) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, elem)
}

// depth counts the field names in p; list indices do not add depth.
func (p Path) depth() int {
	n := 0
	for _, elem := range p {
		if _, ok := elem.(string); ok {
			n++
		}
	}
	return n
}

// root returns the path of the top-level field p lies under.
func (p Path) root() Path {
	for _, elem := range p {
		if name, ok := elem.(string); ok {
			return Path{name}
		}
	}
	return Path{}
}

// assign writes v into the response tree at p. Missing objects on the way
// are created; a nulled ancestor or a short list stops the write.
func (p Path) assign(tree map[string]any, v any) {
	if len(p) == 0 {
		return
	}
	var cur any = tree
	for _, elem := range p[:len(p)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return
			}
			next, ok := m[e]
			if !ok {
				next = map[string]any{}
				m[e] = next
			}
			cur = next
		case int:
			list, ok := cur.([]any)
			if !ok || e >= len(list) {
				return
			}
			cur = list[e]
		}
	}
	switch last := p[len(p)-1].(type) {
	case string:
		if m, ok := cur.(map[string]any); ok {
			m[last] = v
		}
	case int:
		if list, ok := cur.([]any); ok && last < len(list) {
			list[last] = v
		}
	}
}

// tombstones records response paths that were nulled, so pending work
// under them is dropped.
type tombstones map[string]struct{}

func (t tombstones) mark(p Path) {
	if key := p.String(); key != "" {
		t[key] = struct{}{}
	}
}

// covers reports whether p or one of its prefixes was marked.
func (t tombstones) covers(p Path) bool {
	if len(t) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if _, ok := t[p[:i].String()]; ok {
			return true
		}
	}
	return false
}
