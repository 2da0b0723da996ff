package diagnostic

import "fmt"

// Severity classifies how serious a Diagnostic is.
type Severity int

const (
	// Info is purely informational and never makes a Result an error.
	Info Severity = iota
	// Warning flags something worth a human's attention but not fatal.
	Warning
	// Error means the operation that produced it did not complete as
	// requested, but the pipeline may still continue with other siblings.
	Error
	// Fatal means the operation cannot continue at all.
	Fatal
)

// String renders the severity the way it would appear in a log line.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is a single classified problem report.
type Diagnostic struct {
	Severity Severity
	Message  string
	// Source is a human-readable location hint (e.g. a file path or a
	// coordinate string). Empty if there is none.
	Source string
	// Cause is the underlying error, if any. Optional.
	Cause error
}

// Error implements the error interface so a Diagnostic can be wrapped with
// fmt.Errorf("%w", ...) by collaborators that still need to return a bare
// Go error at a package boundary.
func (d Diagnostic) Error() string {
	if d.Source != "" {
		return fmt.Sprintf("%s: %s", d.Source, d.Message)
	}
	return d.Message
}

func isErrorSeverity(s Severity) bool {
	return s == Error || s == Fatal
}

func hasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if isErrorSeverity(d.Severity) {
			return true
		}
	}
	return false
}
