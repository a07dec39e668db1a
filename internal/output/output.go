// Package output prints styled status lines for the wren CLI.
//
// Functions use lipgloss for styling but abstract away the details from
// callers. Reports themselves are written by the report package; this
// package only handles progress and diagnostics.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	mu          sync.Mutex
	out         io.Writer = os.Stderr
	verboseMode bool
)

// SetVerbose enables or disables verbose output.
// The CLI calls this when the --verbose flag is set.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// IsVerbose reports whether verbose output is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verboseMode
}

// SetOutput redirects status output and returns the previous writer.
// Status lines go to stderr by default so reports on stdout stay pipeable.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	if w == nil {
		w = os.Stderr
	}
	out = w
	return prev
}

func printStyled(style lipgloss.Style, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, style.Render(msg))
}

// Success prints a success message with 🐦 emoji and green color.
//
// Example:
//
//	output.Success("Resolved 12 npm packages")
func Success(msg string) {
	printStyled(successStyle, "🐦 "+msg)
}

// Error prints an error message with ❌ emoji and red color.
func Error(msg string) {
	printStyled(errorStyle, "❌ "+msg)
}

// Warn prints a warning with ⚠️ emoji in yellow.
// Use this for conflicts the resolver recovered from.
func Warn(msg string) {
	printStyled(warnStyle, "⚠️  "+msg)
}

// Info prints an informational message with ℹ️ emoji and cyan color.
func Info(msg string) {
	printStyled(infoStyle, "ℹ️  "+msg)
}

// Step prints an indented step message in gray.
//
// Example:
//
//	output.Step("wren resolve --format markdown")
func Step(msg string) {
	printStyled(stepStyle, "   "+msg)
}

// Verbose prints a debug message with 🔍 emoji only if verbose mode is enabled.
func Verbose(msg string) {
	if IsVerbose() {
		printStyled(stepStyle, "🔍 "+msg)
	}
}
