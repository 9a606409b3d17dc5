package introspect

import (
	"fmt"
	"reflect"
)

const maxSnapshotDepth = 8

// Snapshot copies the members of v visible in scope into plain maps, slices and scalars,
// the shape expected by expression engines that can't walk Go structs.
// Values implementing fmt.Stringer are reduced to their string form.
func Snapshot(p Provider, v reflect.Value, scope Scope) any {
	return snapshot(p, v, scope, maxSnapshotDepth)
}

func snapshot(p Provider, v reflect.Value, scope Scope, depth int) any {
	v = Indirect(v)
	if !v.IsValid() {
		return nil
	}

	if !v.CanInterface() || depth == 0 {
		return fmt.Sprint(v)
	}

	switch v.Kind() {
	case reflect.Struct:
		if s, ok := stringer(v); ok {
			return s
		}

		return snapshotStruct(p, v, scope, depth)
	case reflect.Map:
		out := make(map[string]any, v.Len())

		if v.Type().Key().Kind() == reflect.String {
			for _, m := range p.Keys(v) {
				value, err := p.GetField(m, v)
				if err == nil {
					out[m.Name] = snapshot(p, value, scope, depth-1)
				}
			}

			return out
		}

		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key())] = snapshot(p, iter.Value(), scope, depth-1)
		}

		return out
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Bytes()
		}

		out := make([]any, v.Len())
		for i := range out {
			out[i] = snapshot(p, v.Index(i), scope, depth-1)
		}

		return out
	default:
		return v.Interface()
	}
}

func snapshotStruct(p Provider, v reflect.Value, scope Scope, depth int) map[string]any {
	out := make(map[string]any)
	put := func(name string, value reflect.Value) {
		if _, exists := out[name]; !exists {
			out[name] = snapshot(p, value, scope, depth-1)
		}
	}

	// Base members are promoted and read through v, the way Go selectors reach them.
	for level := range Hierarchy(p, v.Type(), maxSnapshotDepth) {
		for _, m := range p.Fields(level.Type, scope) {
			if level.IsBase(m) {
				continue
			}

			if value, err := p.GetField(level.Promote(p, m), v); err == nil {
				put(m.Name, value)
			}
		}

		for _, m := range p.Properties(level.Type, scope) {
			if !m.Readable {
				continue
			}

			if value, err := p.GetProperty(level.Promote(p, m), v); err == nil {
				put(m.Name, value)
			}
		}
	}

	return out
}

func stringer(v reflect.Value) (s string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			s, ok = fmt.Sprintf("%%!v(PANIC=String method: %v)", rec), true
		}
	}()

	if str, isStringer := v.Interface().(fmt.Stringer); isStringer {
		return str.String(), true
	}

	if v.CanAddr() {
		if str, isStringer := v.Addr().Interface().(fmt.Stringer); isStringer {
			return str.String(), true
		}
	}

	return "", false
}
