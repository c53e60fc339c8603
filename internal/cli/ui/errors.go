package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	✗ TYPE NOT FOUND: Sprit
//
//	   Did you mean: engine.Sprite?
//
//	   → List types: vellum inspect types
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var header, body *color.Color
	var symbol string
	switch opts.Level {
	case ErrorLevelWarning:
		header = newColor(opts.NoColor, color.FgYellow, color.Bold)
		body = newColor(opts.NoColor, color.FgYellow)
		symbol = "!"
	case ErrorLevelInfo:
		header = newColor(opts.NoColor, color.FgCyan, color.Bold)
		body = newColor(opts.NoColor, color.FgCyan)
		symbol = "i"
	default:
		header = newColor(opts.NoColor, color.FgRed, color.Bold)
		body = newColor(opts.NoColor, color.FgRed)
		symbol = "✗"
	}

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		newColor(opts.NoColor, color.FgYellow).
			Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := newColor(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return newColor(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// NotFoundError reports an unknown type, enum, attribute or module name.
// kind is singular ("type"); listCommand shows every candidate.
func NotFoundError(kind, name string, suggestions []string, listCommand string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      kind + " not found",
		Problem:      name,
		Suggestions:  suggestions,
		HelpCommands: []string{"List candidates: " + listCommand},
		NoColor:      noColor,
	})
}

// DriftError reports structural version drift found by `versions check`.
func DriftError(changed int, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "version drift",
		Problem:     fmt.Sprintf("%d type(s) changed shape since the ledger was recorded", changed),
		Consequence: "Data saved by the recorded build may not load in this one.",
		HelpCommands: []string{
			"Accept the current shapes: vellum versions record",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "configuration error",
		Problem: message,
		HelpCommands: []string{
			"View config: cat vellum.yaml",
			"Get help: vellum --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}
