package render

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type panicky struct{}

func (panicky) String() string { panic("broken stringer") }

type pair struct {
	A int
	B string
}

func TestRenderer_RenderAny(t *testing.T) {
	r := New(Style{})
	five := 5
	price := decimal.New(15, -1)

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "null"},
		{"nil pointer", (*int)(nil), "null"},
		{"nil map", map[string]int(nil), "null"},
		{"nil func", (func())(nil), "null"},
		{"nil slice", []int(nil), "[]"},
		{"empty slice", []string{}, "[]"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"string", "hello", "hello"},
		{"slice", []int{1, 2}, "[1, 2]"},
		{"array", [2]bool{true, false}, "[true, false]"},
		{"nested", [][]string{{"a"}, {}}, "[[a], []]"},
		{"nil element", []any{nil, 1}, "[null, 1]"},
		{"pointer to scalar", &five, "5"},
		{"stringer", price, "1.5"},
		{"pointer stringer", &price, "1.5"},
		{"error", errors.New("boom"), "boom"},
		{"struct", pair{A: 1, B: "x"}, "{1 x}"},
		{"pointer to struct", &pair{A: 2, B: "y"}, "{2 y}"},
		{"map", map[string]int{"a": 1}, "map[a:1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.RenderAny(tt.input))
		})
	}
}

func TestRenderer_SequenceComposition(t *testing.T) {
	r := New(Style{})
	a, b := "x", []int{3}

	assert.Equal(t, "["+r.RenderAny(a)+ItemSeparator+r.RenderAny(b)+"]", r.RenderAny([]any{a, b}))
}

func TestRenderer_NeverPanics(t *testing.T) {
	r := New(Style{})

	assert.Contains(t, r.RenderAny(panicky{}), "PANIC")
	assert.Contains(t, r.RenderAny([]any{1, panicky{}}), "PANIC")

	cyclic := []any{nil}
	cyclic[0] = cyclic
	assert.Contains(t, r.RenderAny(cyclic), "...")
}

func TestRenderer_UnexportedValues(t *testing.T) {
	r := New(Style{})
	v := reflect.ValueOf(struct {
		n    int
		tags []string
		p    *pair
	}{n: 7, tags: []string{"a", "b"}})

	assert.Equal(t, "7", r.Render(v.Field(0)))
	assert.Equal(t, "[a, b]", r.Render(v.Field(1)))
	assert.Equal(t, "null", r.Render(v.Field(2)))
	assert.Equal(t, "7", r.RenderAny(v.Field(0)))
}

func TestRenderer_Style(t *testing.T) {
	plain := New(Style{NullToken: "<nil>"})
	assert.Equal(t, "<nil>", plain.Null())
	assert.Equal(t, "<nil>", plain.RenderAny(nil))

	colored := New(Style{Colorize: true})
	assert.True(t, strings.HasPrefix(colored.Null(), "\x1b["))
	assert.Equal(t, 4, VisibleLen(colored.Null()))
	assert.Equal(t, 4, VisibleLen(colored.RenderAny(true)))
	assert.Equal(t, 5, VisibleLen(colored.RenderAny(false)))
	assert.NotEqual(t, colored.RenderAny(true), plain.RenderAny(true))
	assert.Equal(t, 4, VisibleLen("日本語x"))
}

func TestRenderer_Fault(t *testing.T) {
	assert.Equal(t, "<boom>", New(Style{}).Fault("boom"))

	colored := New(Style{Colorize: true}).Fault("boom")
	assert.NotEqual(t, "<boom>", colored)
	assert.Equal(t, 6, VisibleLen(colored))
}
