package introspect

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeFor[error]()

// renderHooks are methods that shape the textual form of a value rather than expose state.
var renderHooks = map[string]bool{
	"String":   true,
	"GoString": true,
	"Error":    true,
}

// DefaultMutators are method names that conventionally change their receiver. A method
// with one of these names is never read as a property, whatever its signature.
var DefaultMutators = []string{
	"Clear", "Clone", "Close", "Flush", "Init", "Next", "Pop", "Prev",
	"Read", "Reset", "Scan", "Shift", "Stop", "Take",
}

// Reflect is the Provider backed by package reflect and a static member Registry.
type Reflect struct {
	registry *Registry
	mutators map[string]bool
}

var _ Provider = (*Reflect)(nil)

// NewReflect creates a reflect based provider. A nil registry means no static members.
// mutators extends DefaultMutators.
func NewReflect(registry *Registry, mutators ...string) *Reflect {
	if registry == nil {
		registry = NewRegistry()
	}

	names := make(map[string]bool, len(DefaultMutators)+len(mutators))
	for _, name := range DefaultMutators {
		names[name] = true
	}

	for _, name := range mutators {
		names[name] = true
	}

	return &Reflect{registry: registry, mutators: names}
}

// Registry returns the static member registry consulted by the provider.
func (r *Reflect) Registry() *Registry {
	return r.registry
}

func (r *Reflect) Fields(t reflect.Type, scope Scope) []Member {
	t = Deref(t)
	if t == nil {
		return nil
	}

	var members []Member

	if t.Kind() == reflect.Struct && scope.Has(ScopeInstance) {
		// Unexported fields backing a visible getter are represented by the getter alone.
		var backed map[string]bool
		if scope.Has(ScopePublic) {
			backed = r.getterNames(t)
		}

		for i := range t.NumField() {
			f := t.Field(i)
			if f.Name == "_" {
				continue
			}

			public := f.IsExported()
			if !scope.Admits(false, public) {
				continue
			}

			if !public && backed[exportedName(f.Name)] {
				continue
			}

			members = append(members, fieldMember(t, f))
		}
	}

	return append(members, r.registry.members(t, MemberField, scope)...)
}

func (r *Reflect) Properties(t reflect.Type, scope Scope) []Member {
	t = Deref(t)
	if t == nil {
		return nil
	}

	var members []Member

	if scope.Admits(false, true) {
		methods := declaredMethods(t)
		getters := make(map[string]bool)

		for _, m := range methods {
			if r.isGetter(m) {
				getters[m.Name] = true

				members = append(members, Member{
					Name:     m.Name,
					Kind:     MemberProperty,
					Public:   true,
					Readable: true,
					Owner:    t,
					Type:     m.Type.Out(0),
				})
			}
		}

		for _, m := range methods {
			name, ok := setterName(m)
			if !ok || getters[name] {
				continue
			}

			members = append(members, Member{
				Name:   name,
				Kind:   MemberProperty,
				Public: true,
				Owner:  t,
				Type:   m.Type.In(1),
			})
		}
	}

	return append(members, r.registry.members(t, MemberProperty, scope)...)
}

func (r *Reflect) Methods(t reflect.Type) []Member {
	t = Deref(t)
	if t == nil {
		return nil
	}

	methods := declaredMethods(t)
	members := make([]Member, 0, len(methods))

	for _, m := range methods {
		members = append(members, methodMember(t, m))
	}

	return members
}

func (r *Reflect) Keys(owner reflect.Value) []Member {
	v := Indirect(owner)
	if !v.IsValid() || v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil
	}

	names := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		names = append(names, k.String())
	}

	slices.Sort(names)

	members := make([]Member, 0, len(names))
	for _, name := range names {
		members = append(members, keyMember(v.Type(), name))
	}

	return members
}

func (r *Reflect) Lookup(t reflect.Type, name string) (Member, bool) {
	t = Deref(t)
	if t == nil || name == "" {
		return Member{}, false
	}

	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(name); ok {
			return fieldMember(t, f), true
		}
	}

	if m, ok := method(t, name); ok {
		if r.isGetter(m) {
			return Member{Name: name, Kind: MemberProperty, Public: true, Readable: true, Owner: t, Type: m.Type.Out(0)}, true
		}

		return methodMember(t, m), true
	}

	if m, ok := method(t, "Set"+name); ok {
		if _, isSetter := setterName(m); isSetter {
			return Member{Name: name, Kind: MemberProperty, Public: true, Owner: t, Type: m.Type.In(1)}, true
		}
	}

	if m, ok := r.registry.lookup(t, name); ok {
		return m, true
	}

	if t.Kind() == reflect.Map && t.Key().Kind() == reflect.String {
		return keyMember(t, name), true
	}

	return Member{}, false
}

func (r *Reflect) LookupMethod(t reflect.Type, name string) (Member, bool) {
	t = Deref(t)
	if t == nil || name == "" {
		return Member{}, false
	}

	if m, ok := method(t, name); ok {
		return methodMember(t, m), true
	}

	if m, ok := r.registry.lookup(t, name); ok && m.Kind == MemberProperty {
		m.Kind = MemberMethod
		m.ReturnsValue = m.Readable

		if !m.Readable {
			m.NumParams = 1
		}

		return m, true
	}

	return Member{}, false
}

func (r *Reflect) Base(t reflect.Type) (Member, bool) {
	t = Deref(t)
	if t == nil || t.Kind() != reflect.Struct {
		return Member{}, false
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && Deref(f.Type).Kind() == reflect.Struct {
			m := fieldMember(t, f)
			m.Type = Deref(f.Type)

			return m, true
		}
	}

	return Member{}, false
}

func (r *Reflect) Promote(via, m Member) Member {
	if m.static != nil || m.mapKey != nil {
		return m
	}

	m.Owner = via.Owner
	if m.Kind == MemberField {
		m.index = append(slices.Clone(via.index), m.index...)
	}

	return m
}

func (r *Reflect) GetField(m Member, owner reflect.Value) (reflect.Value, error) {
	if m.Kind != MemberField {
		return reflect.Value{}, fmt.Errorf("%w: %s is a %s, not a field", ErrKindMismatch, m.Name, m.Kind)
	}

	if m.static != nil {
		return m.static.read()
	}

	v := Indirect(owner)
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: reading field %s", ErrNilOwner, m.Name)
	}

	if m.mapKey != nil {
		if v.Kind() != reflect.Map {
			return reflect.Value{}, fmt.Errorf("%w: %s is not a map", ErrKindMismatch, v.Type())
		}

		return v.MapIndex(reflect.ValueOf(*m.mapKey).Convert(v.Type().Key())), nil
	}

	if v.Kind() != reflect.Struct || (m.Owner != nil && v.Type() != m.Owner) {
		return reflect.Value{}, fmt.Errorf("%w: field %s belongs to %s, got %s", ErrKindMismatch, m.Name, typeName(m.Owner), v.Type())
	}

	fv, err := v.FieldByIndexErr(m.index)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: field %s: %w", ErrNilOwner, m.Name, err)
	}

	return fv, nil
}

func (r *Reflect) GetProperty(m Member, owner reflect.Value) (reflect.Value, error) {
	if m.Kind != MemberProperty {
		return reflect.Value{}, fmt.Errorf("%w: %s is a %s, not a property", ErrKindMismatch, m.Name, m.Kind)
	}

	if !m.Readable {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotReadable, m.Name)
	}

	if m.static != nil {
		return m.static.read()
	}

	return call(owner, m.Name)
}

func (r *Reflect) Invoke(m Member, receiver reflect.Value) (reflect.Value, error) {
	if m.Kind == MemberField {
		return reflect.Value{}, fmt.Errorf("%w: %s is a field", ErrKindMismatch, m.Name)
	}

	if m.NumParams > 0 || (m.Kind == MemberProperty && !m.Readable) {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotInvocable, m.Name)
	}

	if m.static != nil {
		return m.static.read()
	}

	return call(receiver, m.Name)
}

func (r *Reflect) getterNames(t reflect.Type) map[string]bool {
	names := make(map[string]bool)

	for _, m := range declaredMethods(t) {
		if r.isGetter(m) {
			names[m.Name] = true
		}
	}

	for _, m := range r.registry.members(t, MemberProperty, ScopeStatic|ScopePublic) {
		if m.Readable {
			names[m.Name] = true
		}
	}

	return names
}

func fieldMember(owner reflect.Type, f reflect.StructField) Member {
	return Member{
		Name:     f.Name,
		Kind:     MemberField,
		Public:   f.IsExported(),
		Embedded: f.Anonymous,
		Owner:    owner,
		Type:     f.Type,
		index:    f.Index,
	}
}

func keyMember(owner reflect.Type, key string) Member {
	return Member{
		Name:   key,
		Kind:   MemberField,
		Public: true,
		Owner:  owner,
		Type:   owner.Elem(),
		mapKey: &key,
	}
}

func methodMember(owner reflect.Type, m reflect.Method) Member {
	member := Member{
		Name:         m.Name,
		Kind:         MemberMethod,
		Public:       true,
		NumParams:    m.Type.NumIn() - 1,
		ReturnsValue: m.Type.NumOut() > 0,
		Owner:        owner,
	}

	if member.ReturnsValue {
		member.Type = m.Type.Out(0)
	}

	return member
}

// method looks a method up on the pointer method set, which includes value receivers
// and promoted methods.
func method(t reflect.Type, name string) (reflect.Method, bool) {
	if t.Kind() == reflect.Interface {
		return reflect.Method{}, false
	}

	return reflect.PointerTo(t).MethodByName(name)
}

// declaredMethods lists the methods of t that are not promoted from embedded fields.
func declaredMethods(t reflect.Type) []reflect.Method {
	if t.Kind() == reflect.Interface {
		return nil
	}

	pt := reflect.PointerTo(t)
	methods := make([]reflect.Method, 0, pt.NumMethod())

	for i := range pt.NumMethod() {
		m := pt.Method(i)
		if promoted(t, m.Name) {
			continue
		}

		methods = append(methods, m)
	}

	return methods
}

func promoted(t reflect.Type, name string) bool {
	if t.Kind() != reflect.Struct {
		return false
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		ft := f.Type
		if ft.Kind() != reflect.Pointer && ft.Kind() != reflect.Interface {
			ft = reflect.PointerTo(ft)
		}

		if _, ok := ft.MethodByName(name); ok {
			return !shadows(t, name)
		}
	}

	return false
}

// shadows reports whether t (or *t) defines name itself. Promoted methods are
// compiler generated wrappers located in "<autogenerated>".
func shadows(t reflect.Type, name string) bool {
	for _, mt := range []reflect.Type{t, reflect.PointerTo(t)} {
		m, ok := mt.MethodByName(name)
		if !ok {
			continue
		}

		fn := runtime.FuncForPC(m.Func.Pointer())
		if fn == nil {
			continue
		}

		if file, _ := fn.FileLine(fn.Entry()); file != "<autogenerated>" {
			return true
		}
	}

	return false
}

// isGetter reports whether m can be read as a property. Methods returning their own
// receiver type (chaining, Init, Clone) and mutator names stay methods.
func (r *Reflect) isGetter(m reflect.Method) bool {
	ft := m.Type
	if ft.NumIn() != 1 || ft.NumOut() != 1 || ft.Out(0) == errorType {
		return false
	}

	if renderHooks[m.Name] || r.mutators[m.Name] {
		return false
	}

	return Deref(ft.Out(0)) != Deref(ft.In(0))
}

func setterName(m reflect.Method) (string, bool) {
	ft := m.Type
	if ft.NumIn() != 2 || ft.NumOut() != 0 || len(m.Name) <= 3 || !strings.HasPrefix(m.Name, "Set") {
		return "", false
	}

	return m.Name[3:], true
}

// boundMethod returns owner's method as a func value, copying non addressable
// struct values so pointer receivers can be reached.
func boundMethod(owner reflect.Value, name string) (reflect.Value, error) {
	v := owner
	for v.IsValid() && v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	for v.IsValid() && v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Pointer {
		v = v.Elem()
	}

	if !v.IsValid() || ((v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil()) {
		return reflect.Value{}, fmt.Errorf("%w: calling %s", ErrNilOwner, name)
	}

	if !v.CanInterface() {
		return reflect.Value{}, fmt.Errorf("%w: %s on a value reached through an unexported field", ErrNotInvocable, name)
	}

	if fn := v.MethodByName(name); fn.IsValid() {
		return fn, nil
	}

	if v.Kind() != reflect.Pointer {
		if v.CanAddr() {
			if fn := v.Addr().MethodByName(name); fn.IsValid() {
				return fn, nil
			}
		} else {
			p := reflect.New(v.Type())
			p.Elem().Set(v)

			if fn := p.MethodByName(name); fn.IsValid() {
				return fn, nil
			}
		}
	}

	return reflect.Value{}, fmt.Errorf("%w: %s has no method %s", ErrNotInvocable, v.Type(), name)
}

func call(owner reflect.Value, name string) (reflect.Value, error) {
	fn, err := boundMethod(owner, name)
	if err != nil {
		return reflect.Value{}, err
	}

	return callFunc(name, fn)
}

func callFunc(name string, fn reflect.Value) (result reflect.Value, err error) {
	if fn.Type().NumIn() != 0 {
		return reflect.Value{}, fmt.Errorf("%w: %s takes %d parameter(s)", ErrNotInvocable, name, fn.Type().NumIn())
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = reflect.Value{}
			err = fmt.Errorf("%w: %s: %v", ErrMemberPanicked, name, rec)
		}
	}()

	out := fn.Call(nil)
	if len(out) == 0 {
		return reflect.Value{}, nil
	}

	return out[0], nil
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}

	return string(unicode.ToUpper(r)) + name[size:]
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
