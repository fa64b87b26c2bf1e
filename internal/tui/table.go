package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type column struct {
	title string
	width int
}

// truncate cuts s to w terminal cells, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	return xansi.Truncate(s, w, "…")
}

// pad right-pads s to exactly w cells.
func pad(s string, w int) string {
	s = truncate(s, w)
	if n := xansi.StringWidth(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}

// renderTable draws a header and rows; the row at cursor is highlighted when
// focused. Cells wider than their column are truncated.
func renderTable(cols []column, rows [][]string, cursor int, focused bool) string {
	var b strings.Builder
	head := make([]string, len(cols))
	for i, c := range cols {
		head[i] = pad(c.title, c.width)
	}
	b.WriteString(styleTable().Render(styleMuted().Render(strings.Join(head, " "))))
	b.WriteString("\n")
	for r, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cells[i] = pad(v, c.width)
		}
		line := strings.Join(cells, " ")
		if focused && r == cursor {
			line = styleSelected().Render(line)
		}
		b.WriteString(line)
		if r < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// fitColumns shrinks the last column so the table fits width.
func fitColumns(cols []column, width int) []column {
	if width <= 0 || len(cols) == 0 {
		return cols
	}
	out := append([]column(nil), cols...)
	used := len(out) - 1
	for _, c := range out[:len(out)-1] {
		used += c.width
	}
	last := &out[len(out)-1]
	if rest := width - used; rest < last.width {
		last.width = max(rest, 4)
	}
	return out
}

func joinLines(parts ...string) string {
	keep := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			keep = append(keep, p)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, keep...)
}
