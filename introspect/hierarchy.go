package introspect

import (
	"iter"
	"reflect"
)

// Level is one type in an embedding chain, starting from the type being inspected.
type Level struct {
	Type  reflect.Type
	Depth int

	via  *Member
	base *Member
}

// IsBase reports whether m is the embedded field leading to the next level.
func (l Level) IsBase(m Member) bool {
	return l.base != nil && m.Embedded && !m.Static && m.Name == l.base.Name
}

// Promote rewrites a member of this level so it can be read from the top level value.
func (l Level) Promote(p Provider, m Member) Member {
	if l.via == nil {
		return m
	}

	return p.Promote(*l.via, m)
}

// Hierarchy yields t followed by its base types, visiting at most limit levels.
// Self embedding through pointers is cut off by the limit.
func Hierarchy(p Provider, t reflect.Type, limit int) iter.Seq[Level] {
	return func(yield func(Level) bool) {
		t = Deref(t)

		var via *Member

		for depth := 0; t != nil && depth < limit; depth++ {
			level := Level{Type: t, Depth: depth, via: via}

			base, ok := p.Base(t)
			if ok {
				level.base = &base
			}

			if !yield(level) || !ok {
				return
			}

			next := base
			if via != nil {
				next = p.Promote(*via, base)
			}

			via = &next
			t = base.Type
		}
	}
}
