package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/busjaeger/reactor/internal/cli"
	"github.com/busjaeger/reactor/internal/ctxlog"
	"github.com/busjaeger/reactor/internal/diagnostic"
	"github.com/busjaeger/reactor/internal/graphbuilder"
	"github.com/busjaeger/reactor/internal/jsonmodel"
	"github.com/busjaeger/reactor/internal/session"
)

// main is the entrypoint for the reactorctl command.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and
// error handling, following the teacher's run(outW, args) test seam.
func run(outW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := newLogger(opts.LogLevel, opts.LogFormat, os.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	baseDirectory := opts.BaseDirectory
	if baseDirectory == "" {
		baseDirectory = filepath.Dir(opts.PomFile)
	}

	sess := &session.Session{
		PomFile:            opts.PomFile,
		BaseDirectory:      baseDirectory,
		SelectedProjects:   opts.SelectedProjects,
		MakeBehavior:       opts.MakeBehavior,
		ActiveProfileIDs:   opts.ActiveProfileIDs,
		InactiveProfileIDs: opts.InactiveProfileIDs,
		ValidationLevel:    opts.ValidationLevel,

		Parser:     jsonmodel.NewParser(),
		Locator:    jsonmodel.NewLocator(),
		External:   jsonmodel.NewExternal(),
		SuperModel: jsonmodel.NewSuperModelProvider(),
	}

	result := session.Build(ctx, sess)
	printDiagnostics(outW, result.Problems())

	if result.HasErrors() {
		return &cli.ExitError{Code: 1, Message: "failed to build project graph"}
	}

	printGraph(outW, result.Get())
	return nil
}

func printDiagnostics(w io.Writer, diags []diagnostic.Diagnostic) {
	for _, d := range diags {
		if d.Source != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", d.Severity, d.Source, d.Message)
		} else {
			fmt.Fprintf(w, "[%s] %s\n", d.Severity, d.Message)
		}
	}
}

func printGraph(w io.Writer, graph *graphbuilder.ProjectGraph) {
	for _, n := range graph.GetSortedProjects() {
		variant := "source"
		if !n.IsSource {
			variant = "binary"
		}
		fmt.Fprintf(w, "%s (%s)\n", n.Coordinate, variant)
	}
}

func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}
