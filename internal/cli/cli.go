// Package cli parses cmd/reactorctl's command-line arguments into the
// options internal/session.Session needs, following the teacher's
// internal/cli split: a flag.FlagSet, a custom Usage function, an
// ExitError carrying a process exit code, and a Parse(args, output)
// test seam free of any os.Exit call.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/busjaeger/reactor/internal/policy"
	"github.com/busjaeger/reactor/internal/resolver"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options holds everything parsed off the command line that
// internal/session.Session needs, short of the collaborator
// implementations (wired separately in cmd/reactorctl/main.go) and the
// logger (configured from LogFormat/LogLevel by the caller).
type Options struct {
	PomFile          string
	BaseDirectory    string
	SelectedProjects []string
	MakeBehavior     policy.Mode

	ActiveProfileIDs   []string
	InactiveProfileIDs []string
	ValidationLevel    resolver.ValidationLevel

	LogFormat string
	LogLevel  string
}

// Parse processes command-line arguments. It returns populated Options, a
// boolean indicating if the program should exit cleanly (e.g. -help was
// requested), or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("reactorctl", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
reactorctl - builds and prints the reactor project graph for a workspace.

Usage:
  reactorctl -pom <path> [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	pomFlag := flagSet.String("pom", "", "Path to the root project descriptor.")
	baseDirFlag := flagSet.String("base-dir", "", "Directory project selectors resolve against (defaults to the pom's directory).")
	projectsFlag := flagSet.String("projects", "", "Comma-separated list of project selectors.")
	makeFlag := flagSet.String("make", "", "Build-behavior mode: 'upstream', 'downstream', 'both', or empty for the default.")
	activeProfilesFlag := flagSet.String("active-profiles", "", "Comma-separated list of profile ids to force-activate.")
	inactiveProfilesFlag := flagSet.String("inactive-profiles", "", "Comma-separated list of profile ids to force-deactivate.")
	validationFlag := flagSet.String("validation-level", "strict", "Validation level: 'minimal', 'v20', or 'strict'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level: 'debug', 'info', 'warn', or 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if *pomFlag == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	mode, err := parseMakeMode(*makeFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	level, err := parseValidationLevel(*validationFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &Options{
		PomFile:            *pomFlag,
		BaseDirectory:      *baseDirFlag,
		SelectedProjects:   splitList(*projectsFlag),
		MakeBehavior:       mode,
		ActiveProfileIDs:   splitList(*activeProfilesFlag),
		InactiveProfileIDs: splitList(*inactiveProfilesFlag),
		ValidationLevel:    level,
		LogFormat:          logFormat,
		LogLevel:           logLevel,
	}, false, nil
}

func parseMakeMode(raw string) (policy.Mode, error) {
	switch strings.ToLower(raw) {
	case "":
		return policy.ModeDefault, nil
	case "upstream", "also-make":
		return policy.ModeUpstream, nil
	case "downstream", "also-make-dependents":
		return policy.ModeDownstream, nil
	case "both":
		return policy.ModeBoth, nil
	default:
		return policy.ModeDefault, fmt.Errorf("invalid make mode %q: must be 'upstream', 'downstream', 'both', or empty", raw)
	}
}

func parseValidationLevel(raw string) (resolver.ValidationLevel, error) {
	switch strings.ToLower(raw) {
	case "minimal":
		return resolver.ValidationMinimal, nil
	case "v20":
		return resolver.ValidationV20, nil
	case "strict", "":
		return resolver.ValidationStrict, nil
	default:
		return resolver.ValidationStrict, fmt.Errorf("invalid validation-level %q: must be 'minimal', 'v20', or 'strict'", raw)
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
