package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	NoColor bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// CLI represents the command-line interface
var CLI struct {
	Config  string     `help:"Configuration file path" default:"snapdump.yaml"`
	NoColor bool       `help:"Disable colored output"`
	Value   ValueCmd   `cmd:"" help:"Print name=value for member paths into a data file"`
	State   StateCmd   `cmd:"" help:"Print the state of a data file or of a value inside it"`
	Eval    EvalCmd    `cmd:"" help:"Evaluate a CEL expression against a data file"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "snapdump v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("snapdump"),
		kong.Description("Inspect values of YAML and JSON documents the way snapdump renders them."),
	)

	if CLI.NoColor {
		color.NoColor = true
	}

	// Create context with config path
	appCtx := &Context{
		Config:  CLI.Config,
		NoColor: CLI.NoColor,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
