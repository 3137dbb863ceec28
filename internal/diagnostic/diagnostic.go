// Package diagnostic reports compilation errors. Unlike a typical
// multi-error diagnostic list, SL's diagnostics are sticky: only the
// first error surfaces, matching the source tokenizer/parser's "only
// the first error reported will be output" contract (spec.md §7)
// rather than the teacher's accumulate-everything diagnostic list.
package diagnostic

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Severity classifies a diagnostic. SL only ever emits Error before
// aborting, but Warning/Info are kept for parity with the logger
// interface and for future non-fatal notices.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Position locates a diagnostic in the original source.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      Position
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Logger is the fire-and-forget sink consumers report through,
// mirroring the source compiler's two-operation Logger trait
// (log_error / log_error_arglist): callers never receive a return
// status, they just call it and move on.
type Logger interface {
	LogError(format string, args ...any)
}

// LogrusLogger adapts a *logrus.Logger to the Logger interface, used
// by cmd/slc as the default logger wired into the parser.
type LogrusLogger struct {
	Entry *logrus.Logger
}

// NewLogrusLogger builds a LogrusLogger with sensible CLI defaults: a
// text formatter and Warn-level threshold so routine diagnostics
// (which the CLI prints itself) don't double up with logrus's own
// framing.
func NewLogrusLogger() *LogrusLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return &LogrusLogger{Entry: l}
}

// LogError implements Logger.
func (l *LogrusLogger) LogError(format string, args ...any) {
	l.Entry.Errorf(format, args...)
}

// List is a sticky single-error diagnostic sink: First captures the
// first Error-severity diagnostic reported (earlier warnings are
// forwarded but not captured) and every later call is ignored,
// like the source tokenizer/parser's sticky error flag.
type List struct {
	first *Diagnostic
	log   Logger
}

// NewList creates an empty List reporting through log. log may be nil,
// in which case diagnostics are recorded but never forwarded.
func NewList(log Logger) *List {
	return &List{log: log}
}

// Report records a diagnostic at pos with the given severity and
// printf-style message, but only if no error has been recorded yet at
// Error severity; subsequent calls after the first Error are no-ops,
// matching the "first error aborts" policy.
func (l *List) Report(sev Severity, pos Position, format string, args ...any) {
	if l.first != nil {
		return
	}
	d := Diagnostic{Severity: sev, Message: fmt.Sprintf(format, args...), Pos: pos}
	if sev == Error {
		l.first = &d
	}
	if l.log != nil {
		l.log.LogError("%s", d.Error())
	}
}

// HasError reports whether an error has been recorded.
func (l *List) HasError() bool {
	return l.first != nil
}

// First returns the first recorded error, or nil if none was reported.
func (l *List) First() *Diagnostic {
	return l.first
}
