package snapdump

import (
	"errors"
	"fmt"

	"github.com/shibukawa/snapdump/expr"
)

// Resolution errors reported to the error sink. They alias the expr sentinels so that
// callers can match them without importing expr.
var (
	// ErrMissingArgument is reported for a missing expression or a nil owner of an instance member.
	ErrMissingArgument = expr.ErrMissingArgument
	// ErrUnsupportedMember is reported when a member access reaches neither a field nor a property.
	ErrUnsupportedMember = expr.ErrUnsupportedMember
	// ErrPropertyNotReadable is reported for properties without getter.
	ErrPropertyNotReadable = expr.ErrPropertyNotReadable
	// ErrMethodHasParameters is reported for calls with arguments or of methods taking parameters.
	ErrMethodHasParameters = expr.ErrMethodHasParameters
	// ErrMethodReturnsNothing is reported for calls of methods without result.
	ErrMethodReturnsNothing = expr.ErrMethodReturnsNothing
	// ErrUnsupportedExpressionShape is reported for expressions the resolver can't evaluate.
	ErrUnsupportedExpressionShape = expr.ErrUnsupportedExpressionShape
	// ErrInvocationFailed is reported when a getter, method or lambda panics or fails.
	ErrInvocationFailed = expr.ErrInvocationFailed
)

// ErrSinkPanicked is reported to the error sink when the output sink panics.
var ErrSinkPanicked = errors.New("output sink panicked")

func panicError(rec any) error {
	return fmt.Errorf("%w: %v", ErrSinkPanicked, rec)
}
