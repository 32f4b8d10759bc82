package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/jask/fintree/internal/database/repository"
	"github.com/jask/fintree/internal/hierarchy"
)

func rowZone(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}

// visibleWindow keeps focus inside a window of height rows.
func visibleWindow(n, focus, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := focus - height/2
	if start < 0 {
		start = 0
	}
	if start > n-height {
		start = n - height
	}
	return start, start + height
}

func queryLine[T any](p *hierarchy.Picker[T], th Theme) string {
	switch {
	case p.InputFocused():
		return th.Input.Render("/ " + p.Query() + "▏")
	case p.Query() != "":
		return th.Muted.Render("/ " + p.Query())
	default:
		return th.Muted.Render(p.Placeholder() + "  (/ to search)")
	}
}

func rowText[T any](p *hierarchy.Picker[T], row hierarchy.Row[T]) string {
	id := row.Node.ID
	glyph := "· "
	if len(row.Node.Children) > 0 {
		glyph = "▸ "
		if p.IsExpanded(id) || p.Query() != "" {
			glyph = "▾ "
		}
	}
	text := strings.Repeat("  ", row.Depth) + glyph + p.Forest().Label(id)
	if c := p.Committed(); c != nil && *c == id {
		text += " ✓"
	}
	if p.IsProhibited(id) {
		text += " (not allowed)"
	}
	return text
}

// renderPicker draws the query line and the visible rows of p. Every row is
// wrapped in a mouse zone named prefix+index.
func renderPicker[T any](p *hierarchy.Picker[T], th Theme, prefix string, width, height int) string {
	var b strings.Builder
	b.WriteString(queryLine(p, th))
	b.WriteString("\n")

	rows := p.Rows()
	if len(rows) == 0 {
		if p.Forest().Len() == 0 {
			b.WriteString(th.Muted.Render("Nothing here yet"))
			return b.String()
		}
		b.WriteString(th.Muted.Render("No matches"))
		if s := p.Suggestions(3); len(s) > 0 {
			b.WriteString("\n")
			b.WriteString(th.Muted.Render("Did you mean: " + strings.Join(s, ", ") + "?"))
		}
		return b.String()
	}

	start, end := visibleWindow(len(rows), p.Focus(), height)
	committed := p.Committed()
	for i := start; i < end; i++ {
		row := rows[i]
		text := rowText(p, row)
		if width > 0 {
			text = ansi.Truncate(text, width, "…")
		}
		style := th.Row
		switch {
		case i == p.Focus():
			style = th.Focused
		case p.IsProhibited(row.Node.ID):
			style = th.Prohibited
		case committed != nil && *committed == row.Node.ID:
			style = th.Committed
		}
		b.WriteString(zone.Mark(rowZone(prefix, i), style.Render(text)))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func describeFocused[T any](p *hierarchy.Picker[T], th Theme, width int) string {
	row, ok := p.FocusedRow()
	if !ok {
		return ""
	}
	f := p.Forest()
	text := strings.Join(f.Path(row.Node.ID), " > ")
	if d := descriptionOf(row.Node.Item); d != "" {
		text += "  " + d
	}
	if width > 0 {
		text = ansi.Truncate(text, width, "…")
	}
	return th.Muted.Render(text)
}

func descriptionOf(item any) string {
	switch v := item.(type) {
	case hierarchy.Entity:
		return v.Description
	case repository.Category:
		if v.Description != nil {
			return *v.Description
		}
	}
	return ""
}
