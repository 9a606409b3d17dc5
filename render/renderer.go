// Package render turns arbitrary runtime values into short diagnostic text.
package render

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

const (
	// DefaultNullToken is printed for nil and missing values.
	DefaultNullToken = "null"
	// ItemSeparator joins the elements of a rendered sequence.
	ItemSeparator = ", "

	maxDepth = 32
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Style configures the tokens produced by a Renderer.
type Style struct {
	Colorize  bool
	NullToken string
}

// Renderer formats values. It is immutable and safe for concurrent use.
type Renderer struct {
	null       string
	trueToken  string
	falseToken string
	fault      *color.Color
}

// New creates a renderer. Colors are switched per renderer, independent of the terminal
// detection done by fatih/color.
func New(style Style) *Renderer {
	token := style.NullToken
	if token == "" {
		token = DefaultNullToken
	}

	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	if style.Colorize {
		red.EnableColor()
		green.EnableColor()
	} else {
		red.DisableColor()
		green.DisableColor()
	}

	return &Renderer{
		null:       red.Sprint(token),
		trueToken:  green.Sprint("true"),
		falseToken: red.Sprint("false"),
		fault:      red,
	}
}

// Null returns the token used for nil values.
func (r *Renderer) Null() string {
	return r.null
}

// Fault formats a message standing in for a value that could not be read.
func (r *Renderer) Fault(msg string) string {
	return r.fault.Sprint("<" + msg + ">")
}

// Render formats v. It never fails: values without a dedicated form use their default
// textual representation.
func (r *Renderer) Render(v reflect.Value) string {
	var sb strings.Builder

	r.Append(&sb, v)

	return sb.String()
}

// RenderAny formats a plain Go value. A reflect.Value argument is rendered as the value it holds.
func (r *Renderer) RenderAny(v any) string {
	if rv, ok := v.(reflect.Value); ok {
		return r.Render(rv)
	}

	return r.Render(reflect.ValueOf(v))
}

// Append writes the rendering of v to sb.
func (r *Renderer) Append(sb *strings.Builder, v reflect.Value) {
	mark := sb.Len()

	defer func() {
		if rec := recover(); rec != nil {
			// Drop the partial output of the failed value.
			partial := sb.String()[:mark]
			sb.Reset()
			sb.WriteString(partial)
			fmt.Fprintf(sb, "%%!v(PANIC=%v)", rec)
		}
	}()

	r.appendValue(sb, v, 0)
}

func (r *Renderer) appendValue(sb *strings.Builder, v reflect.Value, depth int) {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			v = reflect.Value{}
			break
		}

		v = v.Elem()
	}

	if !v.IsValid() || isNil(v) {
		sb.WriteString(r.null)
		return
	}

	if depth > maxDepth {
		sb.WriteString("...")
		return
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			sb.WriteString(r.trueToken)
		} else {
			sb.WriteString(r.falseToken)
		}
	case reflect.Slice, reflect.Array:
		n := v.Len()
		if n == 0 {
			sb.WriteString("[]")
			return
		}

		sb.WriteByte('[')

		for i := range n {
			if i > 0 {
				sb.WriteString(ItemSeparator)
			}

			r.appendValue(sb, v.Index(i), depth+1)
		}

		sb.WriteByte(']')
	case reflect.Pointer:
		if hasTextMethod(v) {
			sb.WriteString(text(v))
			return
		}

		r.appendValue(sb, v.Elem(), depth+1)
	default:
		sb.WriteString(text(v))
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}

func hasTextMethod(v reflect.Value) bool {
	if !v.CanInterface() {
		return false
	}

	switch v.Interface().(type) {
	case fmt.Stringer, error:
		return true
	default:
		return false
	}
}

// text is the default representation. Values reached through unexported fields can't be
// converted to interfaces, fmt prints the value they hold instead.
func text(v reflect.Value) string {
	if v.CanInterface() {
		return fmt.Sprint(v.Interface())
	}

	return fmt.Sprint(v)
}

// VisibleLen counts the runes of s, ignoring ANSI color sequences.
func VisibleLen(s string) int {
	return utf8.RuneCountInString(ansiEscape.ReplaceAllString(s, ""))
}
