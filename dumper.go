// Package snapdump renders values, member expressions and object state as short
// diagnostic text and hands it to a sink.
//
// Expression dumps print name=value rows:
//
//	d := snapdump.New(nil)
//	d.Values(ctx, expr.Field(expr.Const(p), "X"), expr.Field(expr.Const(p), "Y"))
//	// X=3, Y=4
//
// State dumps enumerate the members of a value:
//
//	d.State(ctx, p, 0)
//	// Point state: X=3, Y=4
//
// Failures never reach the caller. They are reported to the error sink and the dump
// shows a fallback value instead.
package snapdump

import (
	"context"
	"errors"
	"os"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shibukawa/snapdump/expr"
	"github.com/shibukawa/snapdump/introspect"
	"github.com/shibukawa/snapdump/pathexpr"
	"github.com/shibukawa/snapdump/render"
	"github.com/shibukawa/snapdump/state"
)

// Dumper formats dumps and emits them. It is immutable after New and safe for concurrent use.
type Dumper struct {
	config    Config
	sink      Sink
	errSink   ErrorSink
	registry  *introspect.Registry
	provider  introspect.Provider
	resolver  *expr.Resolver
	formatter *state.Formatter
	now       func() time.Time
}

// Option configures a Dumper.
type Option func(*Dumper)

// WithSink sets the sink receiving dumps. The default writes to stdout.
func WithSink(sink Sink) Option {
	return func(d *Dumper) {
		d.sink = sink
	}
}

// WithErrorSink sets the sink receiving diagnostics. The default writes to stderr.
func WithErrorSink(sink ErrorSink) Option {
	return func(d *Dumper) {
		d.errSink = sink
	}
}

// WithRegistry sets the static members visible to the default provider.
func WithRegistry(registry *introspect.Registry) Option {
	return func(d *Dumper) {
		d.registry = registry
	}
}

// WithProvider replaces the reflect based member provider.
func WithProvider(p introspect.Provider) Option {
	return func(d *Dumper) {
		d.provider = p
	}
}

// WithClock sets the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(d *Dumper) {
		d.now = now
	}
}

// New creates a Dumper. A nil cfg uses the default configuration. An invalid cfg is
// reported to the error sink and replaced by the defaults.
func New(cfg *Config, opts ...Option) *Dumper {
	if cfg == nil {
		cfg = getDefaultConfig()
	}

	d := &Dumper{config: *cfg}

	configErr := validateConfig(&d.config)
	if configErr != nil {
		d.config = *getDefaultConfig()
		d.config.Colorize = cfg.Colorize
	}

	applyDefaults(&d.config)

	for _, opt := range opts {
		opt(d)
	}

	if d.sink == nil {
		d.sink = WriterSink(os.Stdout)
	}

	if d.errSink == nil {
		d.errSink = ColorErrorSink(os.Stderr, d.config.ColorEnabled())
	}

	if d.provider == nil {
		d.provider = introspect.NewReflect(d.registry, d.config.MutatorMethods...)
	}

	if d.now == nil {
		d.now = time.Now
	}

	d.resolver = expr.NewResolver(d.provider)
	d.formatter = state.New(d.provider, render.New(d.config.Style()), d.config.Layout())

	if configErr != nil {
		d.report(context.Background(), Diagnostic{ID: uuid.New(), Err: configErr, Node: "config", Time: d.now()})
	}

	return d
}

var defaultDumper = sync.OnceValue(func() *Dumper {
	cfg, err := LoadConfig(DefaultConfigFile)
	if err != nil {
		cfg = getDefaultConfig()
	}

	return New(cfg)
})

// Default returns a Dumper configured from snapdump.yaml in the working directory,
// writing to stdout and stderr.
func Default() *Dumper {
	return defaultDumper()
}

// Config returns a copy of the effective configuration.
func (d *Dumper) Config() Config {
	return d.config
}

// Value dumps name=value for n. meta is passed to the sink as Entry.Context.
func (d *Dumper) Value(ctx context.Context, n *expr.Node, meta any) {
	if !Enabled {
		return
	}

	text, err := d.FormatValue(n)
	d.emit(ctx, text, meta, err, callerFrame(1))
}

// Values dumps one row per node.
func (d *Dumper) Values(ctx context.Context, nodes ...*expr.Node) {
	if !Enabled {
		return
	}

	text, err := d.FormatValues(nodes...)
	d.emit(ctx, text, nil, err, callerFrame(1))
}

// Path dumps the member path of root, e.g. `order.Items[0].Total()`. The first
// identifier of path names root.
func (d *Dumper) Path(ctx context.Context, root any, path string) {
	if !Enabled {
		return
	}

	text, err := d.FormatPath(root, path)
	d.emit(ctx, text, nil, err, callerFrame(1))
}

// State dumps the members of target. A zero scope uses the configured default.
func (d *Dumper) State(ctx context.Context, target any, scope introspect.Scope) {
	if !Enabled {
		return
	}

	d.emit(ctx, d.FormatState(target, scope), nil, nil, callerFrame(1))
}

// StateOf dumps the declared public instance members of target, optionally including
// non-public and static members.
func (d *Dumper) StateOf(ctx context.Context, target any, includePrivate, includeStatic bool) {
	if !Enabled {
		return
	}

	d.emit(ctx, d.FormatState(target, introspect.ScopeFor(includePrivate, includeStatic)), nil, nil, callerFrame(1))
}

// TypeState dumps the static members registered for t. A zero scope uses public
// static members declared on t.
func (d *Dumper) TypeState(ctx context.Context, t reflect.Type, scope introspect.Scope) {
	if !Enabled {
		return
	}

	d.emit(ctx, d.FormatTypeState(t, scope), nil, nil, callerFrame(1))
}

// FormatValue renders name=value for n. The returned error joins resolution failures;
// the text is usable either way.
func (d *Dumper) FormatValue(n *expr.Node) (string, error) {
	v, err := d.resolver.Resolve(n)

	return d.formatter.Row(expr.Label(n), v, nil), err
}

// FormatValues renders one row per node, on a single line when short enough.
func (d *Dumper) FormatValues(nodes ...*expr.Node) (string, error) {
	rows := make([]string, 0, len(nodes))
	errs := make([]error, 0, len(nodes))

	for _, n := range nodes {
		row, err := d.FormatValue(n)
		rows = append(rows, row)
		errs = append(errs, err)
	}

	return d.formatter.JoinRows(rows), errors.Join(errs...)
}

// FormatPath renders name=value for a member path starting at root.
func (d *Dumper) FormatPath(root any, path string) (string, error) {
	steps, err := pathexpr.ParseSteps(path)
	if err != nil {
		return d.formatter.Row(path, reflect.Value{}, nil), err
	}

	n, err := expr.Parse(path, map[string]any{steps[0].Name: root})
	if err != nil {
		return d.formatter.Row(path, reflect.Value{}, nil), err
	}

	return d.FormatValue(n)
}

// FormatState renders the members of target.
func (d *Dumper) FormatState(target any, scope introspect.Scope) string {
	if scope == 0 {
		scope = d.config.InstanceScope()
	}

	v := reflect.ValueOf(target)
	if !v.IsValid() {
		return d.formatter.Renderer().Null()
	}

	return d.formatter.Format(v.Type(), v, scope)
}

// FormatTypeState renders the static members registered for t.
func (d *Dumper) FormatTypeState(t reflect.Type, scope introspect.Scope) string {
	if t == nil {
		return d.formatter.Renderer().Null()
	}

	if scope == 0 {
		scope = d.config.StaticScope()
	}

	return d.formatter.Format(t, reflect.Value{}, scope)
}

// emit reports failures to the error sink and delivers the entry. Panics raised by
// either sink are swallowed.
func (d *Dumper) emit(ctx context.Context, text string, meta any, err error, caller runtime.Frame) {
	if ctx == nil {
		ctx = context.Background()
	}

	id := uuid.New()
	now := d.now()

	for _, e := range flatten(err) {
		d.report(ctx, Diagnostic{ID: id, Err: e, Node: failedNode(e), Time: now})
	}

	sink := d.sink
	if s, ok := sinkFromContext(ctx); ok {
		sink = s
	}

	entry := Entry{ID: id, Text: text, Context: meta, Caller: caller, Time: now}

	defer func() {
		if rec := recover(); rec != nil {
			d.report(ctx, Diagnostic{ID: id, Err: panicError(rec), Node: "sink", Time: now})
		}
	}()

	sink(ctx, entry)
}

func (d *Dumper) report(ctx context.Context, diag Diagnostic) {
	defer func() {
		_ = recover()
	}()

	d.errSink(ctx, diag)
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}

		return out
	}

	return []error{err}
}

func failedNode(err error) string {
	var resErr *expr.ResolutionError
	if errors.As(err, &resErr) {
		return expr.Label(resErr.Node)
	}

	return ""
}
