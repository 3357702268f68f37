// Package diag defines the diagnostic reporting contract shared by the
// lexer, macro engine and preprocessor core: a Diagnostic value plus a
// Reporter callback that decides whether processing continues.
package diag

import (
	"fmt"
	"log"
	"os"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	// Note is purely informational (e.g. "expanding macro FOO here").
	Note Severity = iota
	// Warning indicates a recoverable condition; processing continues.
	Warning
	// Error indicates the current operation could not be completed.
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Position locates a Diagnostic in a source file. Line and Column are
// 1-based; Line == 0 means "no specific line" (e.g. a command-line macro).
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Diagnostic is a single message produced while preprocessing a source
// file.
type Diagnostic struct {
	Severity Severity
	Pos      Position
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Reporter receives every Diagnostic the preprocessor produces. Report
// returns an error to abort the current operation; a nil return lets
// processing continue even for Error-severity diagnostics (the caller
// decides whether to treat accumulated errors as fatal).
type Reporter interface {
	Report(d Diagnostic) error
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(d Diagnostic) error

func (f ReporterFunc) Report(d Diagnostic) error { return f(d) }

// StderrReporter is the default Reporter: it prints every Diagnostic to
// os.Stderr via the standard log package and never aborts on Warning or
// Note, matching the teacher's own log.Printf/log.Fatalf split between
// recoverable and fatal conditions.
type StderrReporter struct {
	// FatalOnError stops processing (Report returns an error) once an
	// Error-severity diagnostic is seen. Defaults to false.
	FatalOnError bool

	logger *log.Logger
}

// NewStderrReporter returns a StderrReporter writing to os.Stderr.
func NewStderrReporter(fatalOnError bool) *StderrReporter {
	return &StderrReporter{
		FatalOnError: fatalOnError,
		logger:       log.New(os.Stderr, "", 0),
	}
}

func (r *StderrReporter) Report(d Diagnostic) error {
	r.logger.Println(d.String())
	if r.FatalOnError && d.Severity == Error {
		return fmt.Errorf("%s", d.String())
	}
	return nil
}

// CollectingReporter accumulates every Diagnostic it receives instead of
// printing them, for callers that want to inspect or join them with
// errors.Join once processing finishes.
type CollectingReporter struct {
	Diagnostics []Diagnostic
}

func (r *CollectingReporter) Report(d Diagnostic) error {
	r.Diagnostics = append(r.Diagnostics, d)
	return nil
}

// HasErrors reports whether any collected Diagnostic is Error severity.
func (r *CollectingReporter) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
