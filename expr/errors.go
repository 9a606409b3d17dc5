package expr

import (
	"errors"
	"fmt"

	"github.com/shibukawa/snapdump/introspect"
)

var (
	// ErrMissingArgument is returned for a nil node or a nil owner of an instance member.
	ErrMissingArgument = errors.New("missing argument")
	// ErrUnsupportedMember is returned when a member access reaches something other than a field or a readable property.
	ErrUnsupportedMember = errors.New("unsupported member")
	// ErrPropertyNotReadable is returned for properties without getter.
	ErrPropertyNotReadable = errors.New("property is not readable")
	// ErrMethodHasParameters is returned when a call supplies arguments or targets a method with parameters.
	ErrMethodHasParameters = errors.New("method has parameters")
	// ErrMethodReturnsNothing is returned when a call targets a method without result.
	ErrMethodReturnsNothing = errors.New("method returns nothing")
	// ErrUnsupportedExpressionShape is returned for nodes the resolver can't evaluate.
	ErrUnsupportedExpressionShape = errors.New("unsupported expression shape")
	// ErrInvocationFailed is returned when a getter, method or lambda panics or reports an error.
	ErrInvocationFailed = errors.New("invocation failed")
)

// ResolutionError reports the node whose resolution failed.
type ResolutionError struct {
	Node *Node
	Err  error
}

func (e *ResolutionError) Error() string {
	if e == nil || e.Err == nil {
		return "resolution failed"
	}

	return Label(e.Node) + ": " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func fail(n *Node, sentinel error, format string, args ...any) error {
	return &ResolutionError{Node: n, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

// translate maps provider errors onto the resolver taxonomy.
func translate(n *Node, err error) error {
	switch {
	case errors.Is(err, introspect.ErrNilOwner):
		return &ResolutionError{Node: n, Err: fmt.Errorf("%w: %w", ErrMissingArgument, err)}
	case errors.Is(err, introspect.ErrNotReadable):
		return &ResolutionError{Node: n, Err: fmt.Errorf("%w: %w", ErrPropertyNotReadable, err)}
	case errors.Is(err, introspect.ErrKindMismatch):
		return &ResolutionError{Node: n, Err: fmt.Errorf("%w: %w", ErrUnsupportedMember, err)}
	default:
		return &ResolutionError{Node: n, Err: fmt.Errorf("%w: %w", ErrInvocationFailed, err)}
	}
}
