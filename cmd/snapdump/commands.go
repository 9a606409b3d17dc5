package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/shibukawa/snapdump"
	"github.com/shibukawa/snapdump/expr"
	"github.com/shibukawa/snapdump/introspect"
)

// ValueCmd represents the value command
type ValueCmd struct {
	File  string   `short:"f" help:"YAML or JSON data file" type:"path" required:""`
	Paths []string `arg:"" help:"Member paths, starting with a top-level key (e.g. order.items[0].name)"`
}

// Run executes the value command
func (cmd *ValueCmd) Run(ctx *Context) error {
	d, err := newDumper(ctx)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cmd.File)
	if err != nil {
		return err
	}

	nodes := make([]*expr.Node, 0, len(cmd.Paths))

	for _, path := range cmd.Paths {
		n, err := expr.Parse(path, doc)
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		nodes = append(nodes, n)
	}

	d.Values(context.Background(), nodes...)

	return nil
}

// StateCmd represents the state command
type StateCmd struct {
	File    string `short:"f" help:"YAML or JSON data file" type:"path" required:""`
	Path    string `short:"p" help:"Member path of the value to inspect instead of the whole document"`
	Private bool   `help:"Include non-public members"`
}

// Run executes the state command
func (cmd *StateCmd) Run(ctx *Context) error {
	d, err := newDumper(ctx)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cmd.File)
	if err != nil {
		return err
	}

	var target any = doc

	if cmd.Path != "" {
		n, err := expr.Parse(cmd.Path, doc)
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		v, err := expr.NewResolver(introspect.NewReflect(nil)).Resolve(n)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", cmd.Path, err)
		}

		target = nil
		if v.IsValid() && v.CanInterface() {
			target = v.Interface()
		}
	}

	d.StateOf(context.Background(), target, cmd.Private, false)

	return nil
}

// EvalCmd represents the eval command
type EvalCmd struct {
	File       string `short:"f" help:"YAML or JSON data file" type:"path" required:""`
	Expression string `arg:"" help:"CEL expression; top-level keys are variables"`
}

// Run executes the eval command
func (cmd *EvalCmd) Run(ctx *Context) error {
	d, err := newDumper(ctx)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cmd.File)
	if err != nil {
		return err
	}

	d.Value(context.Background(), expr.Named(cmd.Expression, expr.CEL(cmd.Expression, doc)), nil)

	return nil
}

// newDumper loads the configuration and creates a dumper writing to the context streams
func newDumper(ctx *Context) (*snapdump.Dumper, error) {
	config, err := snapdump.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if ctx.NoColor {
		colorize := false
		config.Colorize = &colorize
	}

	return snapdump.New(config,
		snapdump.WithSink(snapdump.WriterSink(ctx.Stdout)),
		snapdump.WithErrorSink(snapdump.ColorErrorSink(ctx.Stderr, config.ColorEnabled())),
	), nil
}

// loadDocument decodes a YAML or JSON file whose root is a mapping
func loadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrInputFileNotExist, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw any

	err = yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if raw == nil {
		return map[string]any{}, nil
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrDocumentNotMapping, path, raw)
	}

	return doc, nil
}
