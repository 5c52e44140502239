package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mirc/internal/diag"
)

var (
	bugColor  = color.New(color.FgRed, color.Bold)
	todoColor = color.New(color.FgYellow, color.Bold)
	errColor  = color.New(color.FgRed)
)

// printError writes err to out, one line per joined error, with the
// severity tag of lowering diagnostics coloured.
func printError(out io.Writer, err error) {
	for _, e := range flattenErrors(err) {
		fmt.Fprintln(out, renderError(e))
	}
}

func renderError(err error) string {
	msg := err.Error()
	var d *diag.Error
	if !errors.As(err, &d) {
		return errColor.Sprint("error: ") + msg
	}
	tag := d.Severity.String()
	paint := bugColor
	if d.Severity == diag.SevTodo {
		paint = todoColor
	}
	if i := strings.Index(msg, tag); i >= 0 {
		return msg[:i] + paint.Sprint(tag) + msg[i+len(tag):]
	}
	return paint.Sprint(tag) + " " + msg
}

func flattenErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flattenErrors(e)...)
		}
		return out
	}
	return []error{err}
}
