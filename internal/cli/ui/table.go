package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table represents a simple table for displaying tabular data
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		noColor: noColor,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows added so far
func (t *Table) Len() int { return len(t.rows) }

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	bold := newColor(t.noColor, color.Bold, color.FgCyan)
	for i, header := range t.headers {
		bold.Fprint(t.writer, padRight(header, widths[i]))
		if i < len(t.headers)-1 {
			fmt.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	gray := newColor(t.noColor, color.FgHiBlack)
	seps := make([]string, len(widths))
	for i, width := range widths {
		seps[i] = strings.Repeat("─", width)
	}
	gray.Fprintln(t.writer, strings.Join(seps, "  "))

	for _, row := range t.rows {
		cells := make([]string, 0, len(widths))
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i < len(widths)-1 {
				cell = padRight(cell, widths[i])
			}
			cells = append(cells, cell)
		}
		fmt.Fprintln(t.writer, strings.Join(cells, "  "))
	}
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func newColor(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// KeyValueTable renders aligned "key: value" lines
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair to the table
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render renders the key-value table
func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		width = max(width, utf8.RuneCountInString(k)+1)
	}

	cyan := newColor(t.noColor, color.FgCyan)
	for i, k := range t.keys {
		cyan.Fprint(t.writer, padRight(k+":", width))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

// Header renders a styled header
func Header(w io.Writer, title string, noColor bool) {
	newColor(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	newColor(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", utf8.RuneCountInString(title)))
}

// Flags joins the names of the set boolean flags, or "-" when none is set.
func Flags(named map[string]bool, order ...string) string {
	var set []string
	for _, name := range order {
		if named[name] {
			set = append(set, name)
		}
	}
	if len(set) == 0 {
		return "-"
	}
	return strings.Join(set, ",")
}
