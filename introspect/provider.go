// Package introspect exposes the members of Go types (fields, getter properties,
// methods and registered statics) together with accessors for their current values.
package introspect

import (
	"errors"
	"reflect"
)

var (
	// ErrNilOwner is returned when an instance member is read from a nil or missing owner.
	ErrNilOwner = errors.New("owner value is nil")
	// ErrNotReadable is returned when a property without getter is read.
	ErrNotReadable = errors.New("property has no getter")
	// ErrNotInvocable is returned when a method cannot be called without arguments.
	ErrNotInvocable = errors.New("method cannot be invoked without arguments")
	// ErrMemberPanicked wraps a panic raised by a getter or method.
	ErrMemberPanicked = errors.New("member access panicked")
	// ErrKindMismatch is returned when an accessor is used with the wrong member kind or owner.
	ErrKindMismatch = errors.New("member kind mismatch")
	// ErrInvalidStatic indicates an unusable static registration.
	ErrInvalidStatic = errors.New("invalid static member")
	// ErrUnknownScope indicates an unknown scope flag name.
	ErrUnknownScope = errors.New("unknown scope flag")
)

// Provider enumerates members of a type and reads their values.
type Provider interface {
	// Fields returns the fields declared on t (struct fields and registered static variables).
	Fields(t reflect.Type, scope Scope) []Member
	// Properties returns the getter properties declared on t, including non-readable ones.
	Properties(t reflect.Type, scope Scope) []Member
	// Methods returns every exported method declared on t.
	Methods(t reflect.Type) []Member
	// Keys returns the dynamic fields of a string-keyed map, sorted by key.
	Keys(owner reflect.Value) []Member
	// Lookup finds a data member (field or property) by name, falling back to methods.
	Lookup(t reflect.Type, name string) (Member, bool)
	// LookupMethod finds a method by name, including getters.
	LookupMethod(t reflect.Type, name string) (Member, bool)
	// Base returns the embedded struct field acting as base type of t.
	Base(t reflect.Type) (Member, bool)
	// Promote rewrites m, declared on the type of the embedded field via, so that it
	// is read from via's owner.
	Promote(via, m Member) Member

	GetField(m Member, owner reflect.Value) (reflect.Value, error)
	GetProperty(m Member, owner reflect.Value) (reflect.Value, error)
	Invoke(m Member, receiver reflect.Value) (reflect.Value, error)
}

// BaseType returns the base type of t, or nil at the root of the hierarchy.
func BaseType(p Provider, t reflect.Type) reflect.Type {
	base, ok := p.Base(t)
	if !ok {
		return nil
	}

	return base.Type
}

// Deref strips pointer indirections from a type.
func Deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// Indirect strips interfaces and pointers from a value. A nil pointer or interface
// yields the zero reflect.Value.
func Indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}
