package snapdump

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Entry is one finished dump.
type Entry struct {
	ID   uuid.UUID
	Text string
	// Context is the metadata passed by the caller, if any.
	Context any
	// Caller is the frame that requested the dump.
	Caller runtime.Frame
	Time   time.Time
}

// Sink receives dumps.
type Sink func(context.Context, Entry)

// Diagnostic reports an expression that could not be resolved. ID equals the ID of the
// Entry carrying the fallback value.
type Diagnostic struct {
	ID   uuid.UUID
	Err  error
	Node string
	Time time.Time
}

// ErrorSink receives diagnostics.
type ErrorSink func(context.Context, Diagnostic)

// WriterSink writes the text of every entry on its own line.
func WriterSink(w io.Writer) Sink {
	var mu sync.Mutex

	return func(_ context.Context, e Entry) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintln(w, e.Text)
	}
}

// ColorErrorSink writes diagnostics prefixed with a red marker.
func ColorErrorSink(w io.Writer, colorize bool) ErrorSink {
	prefix := color.New(color.FgRed, color.Bold)
	if colorize {
		prefix.EnableColor()
	} else {
		prefix.DisableColor()
	}

	var mu sync.Mutex

	return func(_ context.Context, d Diagnostic) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(w, "%s %v\n", prefix.Sprint("snapdump:"), d.Err)
	}
}

// DiscardSink drops entries.
func DiscardSink(context.Context, Entry) {}

// DiscardErrors drops diagnostics.
func DiscardErrors(context.Context, Diagnostic) {}

type sinkKey struct{}

// ContextWithSink stores a sink on ctx. Dumps requested with ctx go to it instead of the
// dumper's own sink.
func ContextWithSink(ctx context.Context, sink Sink) context.Context {
	return context.WithValue(ctx, sinkKey{}, sink)
}

func sinkFromContext(ctx context.Context) (Sink, bool) {
	if ctx == nil {
		return nil, false
	}

	sink, ok := ctx.Value(sinkKey{}).(Sink)

	return sink, ok && sink != nil
}

// callerFrame returns the frame skip levels above its caller.
func callerFrame(skip int) runtime.Frame {
	pcs := make([]uintptr, 1)
	if runtime.Callers(skip+2, pcs) == 0 {
		return runtime.Frame{}
	}

	frame, _ := runtime.CallersFrames(pcs).Next()

	return frame
}
