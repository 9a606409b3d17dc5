// Package state renders the members of a value or type as name=value rows.
package state

import (
	"reflect"
	"strings"

	"github.com/shibukawa/snapdump/introspect"
	"github.com/shibukawa/snapdump/render"
)

const (
	// DefaultMaxLineLength is the longest output still collapsed onto a single line.
	DefaultMaxLineLength = 175

	NameValueSeparator = "="
	NameStateSeparator = " state: "
	SingleRowSeparator = ", "
	MultiRowSeparator  = "\n"

	maxLevels = 16
)

// DefaultBoundaries lists packages whose types end a base type walk.
var DefaultBoundaries = []string{"sync", "time", "reflect", "context", "net/http"}

// Layout controls line splitting and base type walking.
type Layout struct {
	MaxLineLength int
	// Boundaries are package paths. A base type declared in one of them, or in a
	// sub package, is not walked.
	Boundaries []string
}

// Formatter renders state dumps. It is immutable and safe for concurrent use.
type Formatter struct {
	provider introspect.Provider
	renderer *render.Renderer
	layout   Layout
}

// New creates a formatter. Zero layout values fall back to the defaults.
func New(p introspect.Provider, r *render.Renderer, layout Layout) *Formatter {
	if p == nil {
		p = introspect.NewReflect(nil)
	}

	if r == nil {
		r = render.New(render.Style{})
	}

	if layout.MaxLineLength <= 0 {
		layout.MaxLineLength = DefaultMaxLineLength
	}

	if layout.Boundaries == nil {
		layout.Boundaries = DefaultBoundaries
	}

	return &Formatter{provider: p, renderer: r, layout: layout}
}

// Renderer returns the value renderer used for rows.
func (f *Formatter) Renderer() *render.Renderer {
	return f.renderer
}

// Format renders the state of instance, whose type is t. instance may be invalid when
// scope only selects static members. t may be nil when instance is valid.
func (f *Formatter) Format(t reflect.Type, instance reflect.Value, scope introspect.Scope) string {
	if scope.Has(introspect.ScopeInstance) && !introspect.Indirect(instance).IsValid() {
		return f.renderer.Null()
	}

	if t == nil {
		if !instance.IsValid() {
			return f.renderer.Null()
		}

		t = instance.Type()
	}

	return f.Join(TypeName(t)+NameStateSeparator, f.Rows(t, instance, scope))
}

// Rows returns one name=value row per member selected by scope, starting with the
// members declared on t and continuing with its base types unless scope is declared-only.
func (f *Formatter) Rows(t reflect.Type, instance reflect.Value, scope introspect.Scope) []string {
	var rows []string

	for level := range introspect.Hierarchy(f.provider, t, maxLevels) {
		if level.Depth > 0 && f.IsBoundary(level.Type) {
			break
		}

		for _, m := range f.provider.Fields(level.Type, scope) {
			if level.IsBase(m) {
				continue
			}

			v, err := f.provider.GetField(level.Promote(f.provider, m), instance)
			rows = append(rows, f.Row(m.Name, v, err))
		}

		for _, m := range f.provider.Properties(level.Type, scope) {
			if !m.Readable {
				continue
			}

			v, err := f.provider.GetProperty(level.Promote(f.provider, m), instance)
			rows = append(rows, f.Row(m.Name, v, err))
		}

		if level.Depth == 0 && scope.Admits(false, true) {
			for _, m := range f.provider.Keys(instance) {
				v, err := f.provider.GetField(m, instance)
				rows = append(rows, f.Row(m.Name, v, err))
			}
		}

		if scope.Has(introspect.ScopeDeclaredOnly) {
			break
		}
	}

	return rows
}

// Row renders a single name=value fragment. A non-nil err replaces the value.
func (f *Formatter) Row(name string, v reflect.Value, err error) string {
	var sb strings.Builder

	sb.WriteString(name)
	sb.WriteString(NameValueSeparator)

	if err != nil {
		sb.WriteString(f.renderer.Fault(err.Error()))
	} else {
		f.renderer.Append(&sb, v)
	}

	return sb.String()
}

// Join lays rows out after header. The rows share one line when the multi-line text
// would not exceed the maximum line length, otherwise each row gets its own line.
func (f *Formatter) Join(header string, rows []string) string {
	length := render.VisibleLen(header)
	for _, row := range rows {
		length += len(MultiRowSeparator) + render.VisibleLen(row)
	}

	if header == "" && len(rows) > 0 {
		length -= len(MultiRowSeparator)
	}

	var sb strings.Builder

	sb.WriteString(header)

	if length <= f.layout.MaxLineLength {
		sb.WriteString(strings.Join(rows, SingleRowSeparator))
		return sb.String()
	}

	for i, row := range rows {
		if i > 0 || header != "" {
			sb.WriteString(MultiRowSeparator)
		}

		sb.WriteString(row)
	}

	return sb.String()
}

// JoinRows lays out rows without header, as done for expression lists.
func (f *Formatter) JoinRows(rows []string) string {
	return f.Join("", rows)
}

// IsBoundary reports whether t is declared in one of the boundary packages.
func (f *Formatter) IsBoundary(t reflect.Type) bool {
	pkg := introspect.Deref(t).PkgPath()
	if pkg == "" {
		return false
	}

	for _, b := range f.layout.Boundaries {
		if pkg == b || strings.HasPrefix(pkg, b+"/") {
			return true
		}
	}

	return false
}

// TypeName is the unqualified name of t, or its literal form for unnamed types.
func TypeName(t reflect.Type) string {
	t = introspect.Deref(t)
	if t == nil {
		return "<nil>"
	}

	if name := t.Name(); name != "" {
		return name
	}

	return t.String()
}
