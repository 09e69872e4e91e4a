// Package textview renders task lists and info panels as terminal
// tables, adapting the teacher's lipgloss table helper to this
// project's report-column model: named, optionally right-aligned
// columns sized against the detected terminal width.
package textview

import (
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/text/width"
)

// Alignment specifies column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Column is one report column: a header name, a rendering width, and an
// optional per-column style (e.g. for overdue-due highlighting).
type Column struct {
	Name  string
	Width int
	Align Alignment
	Style lipgloss.Style
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// Table accumulates rows for a fixed set of columns and renders them
// aligned, truncating overlong cells with an ellipsis.
type Table struct {
	columns   []Column
	rows      [][]string
	headerSep bool
	indent    string
}

// NewTable creates a table over the given columns. A column with Width 0
// stays zero-width until the caller runs AutoSize, which sizes it by the
// detected terminal width.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns, headerSep: true, indent: "  "}
}

// SetIndent overrides the table's left margin.
func (t *Table) SetIndent(indent string) *Table {
	t.indent = indent
	return t
}

// SetHeaderSeparator toggles the rule line under the header row.
func (t *Table) SetHeaderSeparator(enabled bool) *Table {
	t.headerSep = enabled
	return t
}

// AddRow appends one row, padding short rows with empty cells.
func (t *Table) AddRow(values ...string) *Table {
	for len(values) < len(t.columns) {
		values = append(values, "")
	}
	t.rows = append(t.rows, values)
	return t
}

// AutoSize distributes any zero-width column evenly across whatever
// terminal width remains after the fixed-width columns and inter-column
// spacing, falling back to 80 columns when stdout isn't a terminal.
func (t *Table) AutoSize() *Table {
	total := termWidth()
	fixed := 0
	flexible := 0
	for _, c := range t.columns {
		if c.Width > 0 {
			fixed += c.Width
		} else {
			flexible++
		}
	}
	fixed += len(t.columns) - 1 // inter-column spaces
	if flexible == 0 {
		return t
	}
	remaining := total - fixed
	if remaining < flexible*8 {
		remaining = flexible * 8
	}
	each := remaining / flexible
	for i := range t.columns {
		if t.columns[i].Width == 0 {
			t.columns[i].Width = each
		}
	}
	return t
}

func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// Render returns the formatted table.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}
	var sb strings.Builder

	sb.WriteString(t.indent)
	for i, col := range t.columns {
		sb.WriteString(t.pad(headerStyle.Render(col.Name), col.Name, col.Width, col.Align))
		if i < len(t.columns)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n")

	if t.headerSep {
		sb.WriteString(t.indent)
		totalWidth := 0
		for i, col := range t.columns {
			totalWidth += col.Width
			if i < len(t.columns)-1 {
				totalWidth++
			}
		}
		sb.WriteString(dimStyle.Render(strings.Repeat("-", totalWidth)))
		sb.WriteString("\n")
	}

	for _, row := range t.rows {
		sb.WriteString(t.indent)
		for i, col := range t.columns {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			plain := stripAnsi(val)
			if displayWidth(plain) > col.Width {
				val = truncateToWidth(plain, col.Width)
				plain = val
			}
			if col.Style.Value() != "" {
				val = col.Style.Render(val)
			}
			sb.WriteString(t.pad(val, plain, col.Width, col.Align))
			if i < len(t.columns)-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Table) pad(styledText, plainText string, w int, align Alignment) string {
	plainLen := displayWidth(plainText)
	if plainLen >= w {
		return styledText
	}
	padding := w - plainLen
	switch align {
	case AlignRight:
		return strings.Repeat(" ", padding) + styledText
	case AlignCenter:
		left := padding / 2
		right := padding - left
		return strings.Repeat(" ", left) + styledText + strings.Repeat(" ", right)
	default:
		return styledText + strings.Repeat(" ", padding)
	}
}

// displayWidth accounts for East-Asian wide characters, which a bare
// len() or utf8.RuneCountInString would under-measure.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func truncateToWidth(s string, w int) string {
	if w <= 3 {
		return strings.Repeat(".", w)
	}
	n := 0
	var out []rune
	for _, r := range s {
		rw := 1
		if k := width.LookupRune(r).Kind(); k == width.EastAsianWide || k == width.EastAsianFullwidth {
			rw = 2
		}
		if n+rw > w-3 {
			break
		}
		out = append(out, r)
		n += rw
	}
	return string(out) + "..."
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
