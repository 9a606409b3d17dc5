package expr

import (
	"fmt"
	"reflect"

	"github.com/shibukawa/snapdump/pathexpr"
)

// Parse builds a node chain from a path such as `order.Items[0].Total()`. The first
// identifier names an entry of roots. A root holding a reflect.Type starts a static access.
func Parse(path string, roots map[string]any) (*Node, error) {
	steps, err := pathexpr.ParseSteps(path)
	if err != nil {
		return nil, err
	}

	rootName := steps[0].Name

	root, ok := roots[rootName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown root %q in %q", ErrMissingArgument, rootName, path)
	}

	var (
		cur    *Node
		static reflect.Type
	)

	if t, isType := root.(reflect.Type); isType {
		static = t
	} else {
		cur = Named(rootName, Const(root))
	}

	for i := 1; i < len(steps); i++ {
		step := steps[i]

		switch step.Kind {
		case pathexpr.StepMember:
			called := i+1 < len(steps) && steps[i+1].Kind == pathexpr.StepCall

			switch {
			case static != nil && called:
				cur = StaticCall(static, step.Name)
			case static != nil:
				cur = Static(static, step.Name)
			case called:
				cur = Call(cur, step.Name)
			default:
				cur = Member(cur, step.Name)
			}

			if called {
				i++
			}

			cur.Safe = step.Safe
			static = nil
		case pathexpr.StepIndex:
			if static != nil {
				return nil, fmt.Errorf("%w: type %s can't be indexed in %q", ErrUnsupportedExpressionShape, static, path)
			}

			cur = Index(cur, step.Index)
			cur.Safe = step.Safe
		case pathexpr.StepCall:
			if static != nil {
				return nil, fmt.Errorf("%w: type %s can't be called in %q", ErrUnsupportedExpressionShape, static, path)
			}

			cur = Invoke(cur)
		}
	}

	if static != nil {
		return Named(rootName, Const(static)), nil
	}

	return cur, nil
}

// MustParse is like Parse but panics on error.
func MustParse(path string, roots map[string]any) *Node {
	n, err := Parse(path, roots)
	if err != nil {
		panic(err)
	}

	return n
}
