package cli

import (
	"fmt"
	"io"
)

// Writef writes formatted output, ignoring write errors.
//
// Example:
//
//	cli.Writef(stdout, "compiled %d modules\n", n)
func Writef(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// Writeln writes a line, ignoring write errors.
func Writeln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

// Write writes a string, ignoring write errors.
func Write(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
}
