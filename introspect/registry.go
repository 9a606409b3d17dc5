package introspect

import (
	"fmt"
	"go/token"
	"reflect"
	"sync"
)

// Registry holds package level variables and functions attached to types as static members.
type Registry struct {
	mu      sync.RWMutex
	statics map[reflect.Type][]*staticEntry
}

type staticEntry struct {
	name     string
	kind     MemberKind
	typ      reflect.Type
	readable bool
	read     func() (reflect.Value, error)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{statics: make(map[reflect.Type][]*staticEntry)}
}

// RegisterVar attaches the variable behind ptr to owner as a static field.
// Names starting with a lower case letter are non-public.
func (r *Registry) RegisterVar(owner reflect.Type, name string, ptr any) error {
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		return fmt.Errorf("%w: %s.%s: want a non-nil pointer, got %T", ErrInvalidStatic, typeName(owner), name, ptr)
	}

	elem := pv.Elem()

	return r.add(owner, &staticEntry{
		name:     name,
		kind:     MemberField,
		typ:      elem.Type(),
		readable: true,
		read: func() (reflect.Value, error) {
			return elem, nil
		},
	})
}

// RegisterFunc attaches fn to owner as a static property. A function without parameters
// and with at least one result is a readable getter; a function with one parameter and no
// result registers a property that can't be read.
func (r *Registry) RegisterFunc(owner reflect.Type, name string, fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return fmt.Errorf("%w: %s.%s: want a func, got %T", ErrInvalidStatic, typeName(owner), name, fn)
	}

	ft := fv.Type()

	switch {
	case ft.NumIn() == 0 && ft.NumOut() >= 1:
		return r.add(owner, &staticEntry{
			name:     name,
			kind:     MemberProperty,
			typ:      ft.Out(0),
			readable: true,
			read: func() (reflect.Value, error) {
				return callFunc(name, fv)
			},
		})
	case ft.NumIn() == 1 && ft.NumOut() == 0:
		return r.add(owner, &staticEntry{name: name, kind: MemberProperty, typ: ft.In(0)})
	default:
		return fmt.Errorf("%w: %s.%s: unsupported signature %s", ErrInvalidStatic, typeName(owner), name, ft)
	}
}

// RegisterStatic attaches the variable p to type O.
//
//	introspect.RegisterStatic[Server](registry, "Instances", &instances)
func RegisterStatic[O, T any](r *Registry, name string, p *T) error {
	return r.RegisterVar(reflect.TypeFor[O](), name, p)
}

func (r *Registry) add(owner reflect.Type, e *staticEntry) error {
	owner = Deref(owner)
	if owner == nil || e.name == "" {
		return fmt.Errorf("%w: owner type and name are required", ErrInvalidStatic)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.statics[owner] {
		if existing.name == e.name {
			r.statics[owner][i] = e
			return nil
		}
	}

	r.statics[owner] = append(r.statics[owner], e)

	return nil
}

func (r *Registry) members(owner reflect.Type, kind MemberKind, scope Scope) []Member {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []Member

	for _, e := range r.statics[owner] {
		m := e.member(owner)
		if e.kind == kind && scope.Admits(true, m.Public) {
			members = append(members, m)
		}
	}

	return members
}

func (r *Registry) lookup(owner reflect.Type, name string) (Member, bool) {
	if r == nil {
		return Member{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.statics[owner] {
		if e.name == name {
			return e.member(owner), true
		}
	}

	return Member{}, false
}

func (e *staticEntry) member(owner reflect.Type) Member {
	return Member{
		Name:     e.name,
		Kind:     e.kind,
		Static:   true,
		Public:   token.IsExported(e.name),
		Readable: e.readable,
		Owner:    owner,
		Type:     e.typ,
		static:   e,
	}
}
