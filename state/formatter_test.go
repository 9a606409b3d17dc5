package state

import (
	"container/list"
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibukawa/snapdump/introspect"
	"github.com/shibukawa/snapdump/render"
	"github.com/shibukawa/snapdump/testhelper"
)

type Point struct {
	X, Y int
}

type thermostat struct {
	Mode   string
	target int
}

func (t *thermostat) Target() int { return t.target }

type record struct {
	time.Time
	Source string
}

type entry struct {
	record
	Message string
}

type sensor struct {
	Name string
}

func (sensor) Reading() int { panic("offline") }

type switchboard struct {
	On, Off bool
}

const walkScope = introspect.ScopeInstance | introspect.ScopePublic

func newFormatter(layout Layout) *Formatter {
	return New(nil, nil, layout)
}

func TestFormatter_Point(t *testing.T) {
	f := newFormatter(Layout{})
	p := Point{X: 3, Y: 4}

	assert.Equal(t, "Point state: X=3, Y=4", f.Format(reflect.TypeFor[Point](), reflect.ValueOf(p), introspect.DefaultInstanceScope))
	assert.Equal(t, "Point state: X=3, Y=4", f.Format(nil, reflect.ValueOf(&p), introspect.DefaultInstanceScope))
	assert.Equal(t, "Point state: X=3, Y=4", f.Format(nil, reflect.ValueOf(p), walkScope))
}

func TestFormatter_Threshold(t *testing.T) {
	p := reflect.ValueOf(Point{X: 3, Y: 4})

	// The multi-line form "Point state: \nX=3\nY=4" is 21 runes long.
	tests := []struct {
		limit int
		want  string
	}{
		{limit: 21, want: "Point state: X=3, Y=4"},
		{limit: 20, want: testhelper.Lines("Point state: ", "X=3", "Y=4")},
	}

	for _, tt := range tests {
		f := newFormatter(Layout{MaxLineLength: tt.limit})
		assert.Equal(t, tt.want, f.Format(nil, p, introspect.DefaultInstanceScope))
	}
}

func TestFormatter_MultiLineUsesNewlinesOnly(t *testing.T) {
	f := newFormatter(Layout{MaxLineLength: 10})
	got := f.Format(nil, reflect.ValueOf(Point{X: 1, Y: 2}), introspect.DefaultInstanceScope)

	assert.NotContains(t, got, SingleRowSeparator)
	assert.Equal(t, 2, strings.Count(got, MultiRowSeparator))
}

func TestFormatter_BackingField(t *testing.T) {
	f := newFormatter(Layout{})
	v := reflect.ValueOf(&thermostat{Mode: "heat", target: 21})

	for _, scope := range []introspect.Scope{introspect.DefaultInstanceScope, introspect.ScopeFor(true, false)} {
		got := f.Format(nil, v, scope)
		assert.Equal(t, "thermostat state: Mode=heat, Target=21", got, scope.String())
	}
}

func TestFormatter_BaseWalk(t *testing.T) {
	e := entry{record: record{Source: "api"}, Message: "hello"}
	v := reflect.ValueOf(e)

	t.Run("declared only", func(t *testing.T) {
		f := newFormatter(Layout{})
		assert.Equal(t, "entry state: Message=hello", f.Format(nil, v, introspect.DefaultInstanceScope))
	})

	t.Run("stops at boundary package", func(t *testing.T) {
		f := newFormatter(Layout{})
		assert.Equal(t, "entry state: Message=hello, Source=api", f.Format(nil, v, walkScope))
	})

	t.Run("walks into the boundary when it is not listed", func(t *testing.T) {
		f := newFormatter(Layout{Boundaries: []string{}})
		got := f.Format(nil, v, walkScope)

		assert.Contains(t, got, "Message=hello")
		assert.Contains(t, got, "Source=api")
		assert.Contains(t, got, "Year=1")
	})
}

func TestFormatter_NullInstance(t *testing.T) {
	f := newFormatter(Layout{})

	assert.Equal(t, render.DefaultNullToken, f.Format(reflect.TypeFor[Point](), reflect.ValueOf((*Point)(nil)), introspect.DefaultInstanceScope))
	assert.Equal(t, render.DefaultNullToken, f.Format(nil, reflect.Value{}, introspect.DefaultInstanceScope))
}

func TestFormatter_Statics(t *testing.T) {
	origin := Point{}
	reg := introspect.NewRegistry()
	require.NoError(t, introspect.RegisterStatic[Point](reg, "Origin", &origin))
	require.NoError(t, reg.RegisterFunc(reflect.TypeFor[Point](), "Dimensions", func() int { return 2 }))

	f := New(introspect.NewReflect(reg), nil, Layout{})

	assert.Equal(t, "Point state: Origin={0 0}, Dimensions=2",
		f.Format(reflect.TypeFor[Point](), reflect.Value{}, introspect.DefaultStaticScope))
	assert.Equal(t, "Point state: X=1, Y=2, Origin={0 0}, Dimensions=2",
		f.Format(nil, reflect.ValueOf(Point{X: 1, Y: 2}), introspect.ScopeFor(false, true)))
}

func TestFormatter_DoesNotMutate(t *testing.T) {
	f := newFormatter(Layout{})
	l := list.New()
	l.PushBack("a")
	l.PushBack("b")

	got := f.Format(nil, reflect.ValueOf(l), introspect.DefaultInstanceScope)

	assert.Equal(t, 2, l.Len())
	assert.True(t, strings.HasPrefix(got, "List state: "), got)
	assert.Contains(t, got, "Len=2")
	assert.NotContains(t, got, "Init=")
}

func TestFormatter_ReadErrors(t *testing.T) {
	f := newFormatter(Layout{})
	got := f.Format(nil, reflect.ValueOf(sensor{Name: "s1"}), introspect.DefaultInstanceScope)

	assert.True(t, strings.HasPrefix(got, "sensor state: Name=s1, Reading=<"), got)
	assert.Contains(t, got, "offline")
}

func TestFormatter_MapKeys(t *testing.T) {
	f := newFormatter(Layout{})
	got := f.Format(nil, reflect.ValueOf(map[string]int{"b": 2, "a": 1}), introspect.DefaultInstanceScope)

	assert.Equal(t, "map[string]int state: a=1, b=2", got)
}

func TestFormatter_ColorDoesNotCountTowardsLength(t *testing.T) {
	v := reflect.ValueOf(switchboard{On: true, Off: false})
	layout := Layout{MaxLineLength: len("switchboard state: \nOn=true\nOff=false")}

	plain := New(nil, render.New(render.Style{}), layout)
	colored := New(nil, render.New(render.Style{Colorize: true}), layout)

	assert.Equal(t, "switchboard state: On=true, Off=false", plain.Format(nil, v, introspect.DefaultInstanceScope))

	got := colored.Format(nil, v, introspect.DefaultInstanceScope)
	assert.NotContains(t, got, MultiRowSeparator)
	assert.Contains(t, got, "\x1b[")
}

func TestFormatter_JoinRows(t *testing.T) {
	f := newFormatter(Layout{MaxLineLength: 7})

	assert.Equal(t, "a=1, b=2", f.JoinRows([]string{"a=1", "b=2"}))
	assert.Equal(t, "a=1\nb=2\nc=3", f.JoinRows([]string{"a=1", "b=2", "c=3"}))
	assert.Equal(t, "", f.JoinRows(nil))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "Point", TypeName(reflect.TypeFor[*Point]()))
	assert.Equal(t, "[]int", TypeName(reflect.TypeFor[[]int]()))
	assert.Equal(t, "<nil>", TypeName(nil))
}

func TestFormatter_IsBoundary(t *testing.T) {
	f := newFormatter(Layout{Boundaries: []string{"net"}})

	assert.True(t, f.IsBoundary(reflect.TypeFor[*net.IPNet]()))
	assert.False(t, f.IsBoundary(reflect.TypeFor[Point]()))
	assert.False(t, f.IsBoundary(reflect.TypeFor[int]()))
}
