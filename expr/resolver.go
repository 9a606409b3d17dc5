package expr

import (
	"fmt"
	"reflect"

	"github.com/shibukawa/snapdump/introspect"
)

// Resolver evaluates nodes against live values. It holds no per call state.
type Resolver struct {
	provider introspect.Provider
}

// NewResolver creates a resolver reading members through p. A nil p uses a reflect
// provider without statics.
func NewResolver(p introspect.Provider) *Resolver {
	if p == nil {
		p = introspect.NewReflect(nil)
	}

	return &Resolver{provider: p}
}

// Provider returns the member provider used by the resolver.
func (r *Resolver) Provider() introspect.Provider {
	return r.provider
}

// Resolve evaluates n. On failure the error is a *ResolutionError and the returned value is
// the fallback to display: the zero reflect.Value (null), the partially resolved value, or
// the method descriptor for call errors.
func (r *Resolver) Resolve(n *Node) (reflect.Value, error) {
	if n == nil {
		return reflect.Value{}, fail(nil, ErrMissingArgument, "expression is nil")
	}

	switch n.Kind {
	case NodeConstant:
		if v, ok := n.Value.(reflect.Value); ok {
			return v, nil
		}

		return reflect.ValueOf(n.Value), nil
	case NodeMember:
		return r.member(n)
	case NodeCall:
		return r.call(n)
	case NodeConversion:
		return r.convert(n)
	case NodeLambda:
		if n.body == nil {
			return reflect.Value{}, fail(n, ErrMissingArgument, "lambda has no body")
		}

		return n.body.invoke(r, n)
	case NodeIndex:
		return r.index(n)
	default:
		return reflect.Value{}, fail(n, ErrUnsupportedExpressionShape, "node kind %d", int(n.Kind))
	}
}

// owner resolves the owner or receiver of n. A nil result with a nil error means a safe
// access stopped at a nil owner.
func (r *Resolver) owner(n *Node) (reflect.Value, reflect.Type, error) {
	if n.Static != nil {
		return reflect.Value{}, introspect.Deref(n.Static), nil
	}

	if n.Owner == nil {
		return reflect.Value{}, nil, fail(n, ErrMissingArgument, "%s has no owner", Label(n))
	}

	v, err := r.Resolve(n.Owner)
	if err != nil {
		return reflect.Value{}, nil, err
	}

	target := introspect.Indirect(v)
	if !target.IsValid() {
		if n.Safe {
			return reflect.Value{}, nil, nil
		}

		return reflect.Value{}, nil, fail(n, ErrMissingArgument, "owner of %s is nil", Label(n))
	}

	return v, target.Type(), nil
}

func (r *Resolver) member(n *Node) (reflect.Value, error) {
	owner, t, err := r.owner(n)
	if err != nil || t == nil {
		return reflect.Value{}, err
	}

	m, ok := r.provider.Lookup(t, n.Name)
	if !ok {
		return reflect.Value{}, fail(n, ErrUnsupportedMember, "%s has no member %s", t, n.Name)
	}

	if n.Static != nil && !m.Static {
		return reflect.Value{}, fail(n, ErrMissingArgument, "%s is an instance member", m)
	}

	switch {
	case n.Expect == ExpectField && m.Kind != introspect.MemberField,
		n.Expect == ExpectProperty && m.Kind != introspect.MemberProperty:
		return reflect.Value{}, fail(n, ErrUnsupportedMember, "%s is a %s", m, m.Kind)
	}

	var v reflect.Value

	switch m.Kind {
	case introspect.MemberField:
		v, err = r.provider.GetField(m, owner)
	case introspect.MemberProperty:
		if !m.Readable {
			return reflect.Value{}, fail(n, ErrPropertyNotReadable, "%s has no getter", m)
		}

		v, err = r.provider.GetProperty(m, owner)
	default:
		return reflect.Value{}, fail(n, ErrUnsupportedMember, "%s is a %s", m, m.Kind)
	}

	if err != nil {
		return reflect.Value{}, translate(n, err)
	}

	return v, nil
}

func (r *Resolver) call(n *Node) (reflect.Value, error) {
	if n.Callee != nil {
		return r.invoke(n)
	}

	receiver, t, err := r.owner(n)
	if err != nil || t == nil {
		return reflect.Value{}, err
	}

	m, ok := r.provider.LookupMethod(t, n.Name)
	if !ok {
		return reflect.Value{}, fail(n, ErrUnsupportedMember, "%s has no method %s", t, n.Name)
	}

	fallback := reflect.ValueOf(m)

	if len(n.Args) > 0 || m.NumParams > 0 {
		return fallback, fail(n, ErrMethodHasParameters, "%s takes %d parameter(s), %d argument(s) given", m, m.NumParams, len(n.Args))
	}

	if !m.ReturnsValue {
		return fallback, fail(n, ErrMethodReturnsNothing, "%s", m)
	}

	v, err := r.provider.Invoke(m, receiver)
	if err != nil {
		return fallback, translate(n, err)
	}

	return v, nil
}

// invoke calls a lambda callee, or the func value another node produces.
func (r *Resolver) invoke(n *Node) (reflect.Value, error) {
	if len(n.Args) > 0 {
		return reflect.Value{}, fail(n, ErrMethodHasParameters, "%d argument(s) given", len(n.Args))
	}

	if n.Callee.Kind == NodeLambda {
		return r.Resolve(n.Callee)
	}

	fn, err := r.Resolve(n.Callee)
	if err != nil {
		return reflect.Value{}, err
	}

	return callFunc(n, fn)
}

func (r *Resolver) convert(n *Node) (reflect.Value, error) {
	if n.Owner == nil {
		return reflect.Value{}, fail(n, ErrMissingArgument, "conversion has no operand")
	}

	v, err := r.Resolve(n.Owner)
	if err != nil || n.Target == nil || !v.IsValid() {
		return v, err
	}

	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	if v.Type() == n.Target {
		return v, nil
	}

	if !v.Type().ConvertibleTo(n.Target) {
		return v, fail(n, ErrUnsupportedExpressionShape, "%s can't be converted to %s", v.Type(), n.Target)
	}

	return convertValue(n, v)
}

func convertValue(n *Node, v reflect.Value) (out reflect.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = v
			err = fail(n, ErrUnsupportedExpressionShape, "converting %s to %s: %v", v.Type(), n.Target, rec)
		}
	}()

	return v.Convert(n.Target), nil
}

func (r *Resolver) index(n *Node) (reflect.Value, error) {
	owner, t, err := r.owner(n)
	if err != nil || t == nil {
		return reflect.Value{}, err
	}

	v := introspect.Indirect(owner)

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if n.Index < 0 || n.Index >= v.Len() {
			return reflect.Value{}, fail(n, ErrUnsupportedExpressionShape, "index %d out of range [0,%d)", n.Index, v.Len())
		}

		return v.Index(n.Index), nil
	case reflect.String:
		runes := []rune(v.String())
		if n.Index < 0 || n.Index >= len(runes) {
			return reflect.Value{}, fail(n, ErrUnsupportedExpressionShape, "index %d out of range [0,%d)", n.Index, len(runes))
		}

		return reflect.ValueOf(string(runes[n.Index])), nil
	default:
		return reflect.Value{}, fail(n, ErrUnsupportedExpressionShape, "%s is not indexable", t)
	}
}

// body is the compilable part of a lambda node.
type body interface {
	invoke(r *Resolver, n *Node) (reflect.Value, error)
}

type funcBody struct {
	fn reflect.Value
}

func (b funcBody) invoke(_ *Resolver, n *Node) (reflect.Value, error) {
	return callFunc(n, b.fn)
}

var errorType = reflect.TypeFor[error]()

func callFunc(n *Node, fn reflect.Value) (out reflect.Value, err error) {
	if fn.Kind() == reflect.Interface && !fn.IsNil() {
		fn = fn.Elem()
	}

	if !fn.IsValid() || (fn.Kind() == reflect.Func && fn.IsNil()) {
		return reflect.Value{}, fail(n, ErrMissingArgument, "function is nil")
	}

	if fn.Kind() != reflect.Func {
		return reflect.Value{}, fail(n, ErrUnsupportedExpressionShape, "%s is not a function", fn.Type())
	}

	ft := fn.Type()

	switch {
	case ft.NumIn() > 0:
		return reflect.Value{}, fail(n, ErrMethodHasParameters, "function takes %d parameter(s)", ft.NumIn())
	case ft.NumOut() == 0:
		return reflect.Value{}, fail(n, ErrMethodReturnsNothing, "function has no result")
	case ft.NumOut() > 2 || (ft.NumOut() == 2 && ft.Out(1) != errorType):
		return reflect.Value{}, fail(n, ErrUnsupportedExpressionShape, "function returns %d values", ft.NumOut())
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = reflect.Value{}
			err = fail(n, ErrInvocationFailed, "%v", rec)
		}
	}()

	results := fn.Call(nil)
	if len(results) == 2 && !results[1].IsNil() {
		callErr, _ := results[1].Interface().(error)
		return reflect.Value{}, &ResolutionError{Node: n, Err: fmt.Errorf("%w: %w", ErrInvocationFailed, callErr)}
	}

	return results[0], nil
}
