package diag

import (
	"errors"
	"fmt"
	"strings"

	"mirc/internal/source"
)

// Error is a fatal lowering diagnostic.
type Error struct {
	Severity Severity
	Span     source.Span
	// Where lists backend positions from outermost to innermost,
	// e.g. ["fn crate::main", "bb3", "stmt 1"].
	Where []string
	// Subject is the offending type or path, rendered for humans.
	Subject string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(e.Severity.String())
	if e.Span.Known() {
		sb.WriteString(" ")
		sb.WriteString(e.Span.String())
	}
	if len(e.Where) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(e.Where, " "))
		sb.WriteString("]")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Subject != "" {
		sb.WriteString(" - ")
		sb.WriteString(e.Subject)
	}
	return sb.String()
}

// Bug reports an internal-consistency violation about subject.
func Bug(subject fmt.Stringer, format string, args ...any) *Error {
	return newError(SevBug, subject, format, args...)
}

// Todo reports a recognised construct that has no lowering yet.
func Todo(subject fmt.Stringer, format string, args ...any) *Error {
	return newError(SevTodo, subject, format, args...)
}

func newError(sev Severity, subject fmt.Stringer, format string, args ...any) *Error {
	e := &Error{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	}
	if subject != nil {
		e.Subject = subject.String()
	}
	return e
}

// At prefixes the location of err with where. Errors that are not *Error
// are returned wrapped with where as plain context.
func At(err error, where string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		de.Where = append([]string{where}, de.Where...)
		return err
	}
	return fmt.Errorf("%s: %w", where, err)
}

// WithSpan sets the source span on err when it has none yet.
func WithSpan(err error, span source.Span) error {
	var de *Error
	if errors.As(err, &de) && !de.Span.Known() {
		de.Span = span
	}
	return err
}

// IsBug reports whether err carries a SevBug diagnostic.
func IsBug(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Severity == SevBug
}

// IsTodo reports whether err carries a SevTodo diagnostic.
func IsTodo(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Severity == SevTodo
}
