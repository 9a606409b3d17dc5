package introspect

import (
	"fmt"
	"reflect"
	"strings"
)

// MemberKind classifies a member descriptor.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberProperty
	MemberMethod
)

func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberProperty:
		return "property"
	case MemberMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Member describes a field, property or method of a type.
//
// Properties are exported methods with no parameters and a single non-error result.
// A SetX method without a matching getter describes a property that is not readable.
type Member struct {
	Name   string
	Kind   MemberKind
	Static bool
	Public bool

	// Readable is only meaningful for properties.
	Readable bool

	// NumParams and ReturnsValue are only meaningful for methods.
	NumParams    int
	ReturnsValue bool

	// Embedded marks an anonymous struct field.
	Embedded bool

	Owner reflect.Type
	Type  reflect.Type

	index  []int
	mapKey *string
	static *staticEntry
}

// IsMapKey reports whether the member is a key of a string-keyed map.
func (m Member) IsMapKey() bool {
	return m.mapKey != nil
}

// String names the member as Owner.Name, with parentheses for methods.
func (m Member) String() string {
	name := m.Name
	if m.Owner != nil && m.Owner.Name() != "" {
		name = m.Owner.Name() + "." + name
	}

	if m.Kind == MemberMethod {
		name += "()"
	}

	return name
}

// Scope selects which members take part in an enumeration.
type Scope uint8

const (
	ScopeInstance Scope = 1 << iota
	ScopeStatic
	ScopePublic
	ScopeNonPublic
	ScopeDeclaredOnly
)

const (
	// DefaultInstanceScope selects public instance members declared on the type itself.
	DefaultInstanceScope = ScopePublic | ScopeInstance | ScopeDeclaredOnly
	// DefaultStaticScope selects public static members declared on the type itself.
	DefaultStaticScope = ScopePublic | ScopeStatic | ScopeDeclaredOnly
)

// ScopeFor builds a declared-only instance scope from the two common switches.
func ScopeFor(includePrivate, includeStatic bool) Scope {
	scope := DefaultInstanceScope
	if includePrivate {
		scope |= ScopeNonPublic
	}

	if includeStatic {
		scope |= ScopeStatic
	}

	return scope
}

// Has reports whether every flag in flags is set.
func (s Scope) Has(flags Scope) bool {
	return s&flags == flags
}

// Admits reports whether a member with the given visibility passes the scope.
func (s Scope) Admits(static, public bool) bool {
	if static && !s.Has(ScopeStatic) {
		return false
	}

	if !static && !s.Has(ScopeInstance) {
		return false
	}

	if public {
		return s.Has(ScopePublic)
	}

	return s.Has(ScopeNonPublic)
}

var scopeNames = []struct {
	flag Scope
	name string
}{
	{ScopeInstance, "instance"},
	{ScopeStatic, "static"},
	{ScopePublic, "public"},
	{ScopeNonPublic, "nonpublic"},
	{ScopeDeclaredOnly, "declared"},
}

func (s Scope) String() string {
	var parts []string

	for _, n := range scopeNames {
		if s.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}

// ParseScope converts flag names ("instance", "static", "public", "nonpublic", "declared")
// into a Scope. Unknown names are reported with ErrUnknownScope.
func ParseScope(names []string) (Scope, error) {
	var scope Scope

outer:
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		for _, n := range scopeNames {
			if n.name == name {
				scope |= n.flag
				continue outer
			}
		}

		return 0, fmt.Errorf("%w: %q", ErrUnknownScope, raw)
	}

	return scope, nil
}
