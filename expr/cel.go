package expr

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/shibukawa/snapdump/introspect"
)

// CEL is a lambda whose body is a CEL expression. Variables are either *Node values,
// resolved on every invocation, or plain Go values. Structs are exposed to CEL as maps of
// their public members.
func CEL(src string, vars map[string]any) *Node {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}

	slices.Sort(names)

	return &Node{Kind: NodeLambda, body: &celBody{src: src, names: names, vars: vars}}
}

type celBody struct {
	src   string
	names []string
	vars  map[string]any

	once    sync.Once
	program cel.Program
	err     error
}

func (b *celBody) compile() (cel.Program, error) {
	b.once.Do(func() {
		opts := make([]cel.EnvOption, 0, len(b.names))
		for _, name := range b.names {
			opts = append(opts, cel.Variable(name, cel.DynType))
		}

		env, err := cel.NewEnv(opts...)
		if err != nil {
			b.err = err
			return
		}

		ast, issues := env.Compile(b.src)
		if issues != nil && issues.Err() != nil {
			b.err = issues.Err()
			return
		}

		b.program, b.err = env.Program(ast)
	})

	return b.program, b.err
}

func (b *celBody) invoke(r *Resolver, n *Node) (reflect.Value, error) {
	program, err := b.compile()
	if err != nil {
		return reflect.Value{}, fail(n, ErrUnsupportedExpressionShape, "compiling %q: %v", b.src, err)
	}

	activation := make(map[string]any, len(b.names))

	for _, name := range b.names {
		var v reflect.Value

		if node, ok := b.vars[name].(*Node); ok {
			v, err = r.Resolve(node)
			if err != nil {
				return reflect.Value{}, err
			}
		} else {
			v = reflect.ValueOf(b.vars[name])
		}

		activation[name] = introspect.Snapshot(r.provider, v, introspect.DefaultInstanceScope)
	}

	result, _, err := program.Eval(activation)
	if err != nil {
		return reflect.Value{}, fail(n, ErrInvocationFailed, "evaluating %q: %v", b.src, err)
	}

	return reflect.ValueOf(native(result)), nil
}

// native converts a CEL value into plain Go values.
func native(v ref.Val) any {
	if v == nil || v.Type() == types.NullType {
		return nil
	}

	switch val := v.(type) {
	case traits.Mapper:
		out := make(map[string]any)

		for it := val.Iterator(); it.HasNext() == types.True; {
			key := it.Next()
			out[fmt.Sprint(native(key))] = native(val.Get(key))
		}

		return out
	case traits.Lister:
		size, _ := val.Size().(types.Int)
		out := make([]any, 0, int(size))

		for i := range int(size) {
			out = append(out, native(val.Get(types.Int(i))))
		}

		return out
	default:
		return v.Value()
	}
}
