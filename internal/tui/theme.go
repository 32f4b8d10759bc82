package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette is one Catppuccin flavour (https://catppuccin.com/palette).
type Palette struct {
	Pink     lipgloss.Color
	Mauve    lipgloss.Color
	Red      lipgloss.Color
	Peach    lipgloss.Color
	Yellow   lipgloss.Color
	Green    lipgloss.Color
	Teal     lipgloss.Color
	Blue     lipgloss.Color
	Lavender lipgloss.Color
	Text     lipgloss.Color
	Subtext0 lipgloss.Color
	Overlay0 lipgloss.Color
	Surface1 lipgloss.Color
	Surface0 lipgloss.Color
	Base     lipgloss.Color
}

var mocha = Palette{
	Pink:     "#f5c2e7",
	Mauve:    "#cba6f7",
	Red:      "#f38ba8",
	Peach:    "#fab387",
	Yellow:   "#f9e2af",
	Green:    "#a6e3a1",
	Teal:     "#94e2d5",
	Blue:     "#89b4fa",
	Lavender: "#b4befe",
	Text:     "#cdd6f4",
	Subtext0: "#a6adc8",
	Overlay0: "#6c7086",
	Surface1: "#45475a",
	Surface0: "#313244",
	Base:     "#1e1e2e",
}

var latte = Palette{
	Pink:     "#ea76cb",
	Mauve:    "#8839ef",
	Red:      "#d20f39",
	Peach:    "#fe640b",
	Yellow:   "#df8e1d",
	Green:    "#40a02b",
	Teal:     "#179299",
	Blue:     "#1e66f5",
	Lavender: "#7287fd",
	Text:     "#4c4f69",
	Subtext0: "#6c6f85",
	Overlay0: "#9ca0b0",
	Surface1: "#bcc0cc",
	Surface0: "#ccd0da",
	Base:     "#eff1f5",
}

// Theme holds the styles derived from a palette.
type Theme struct {
	Name    string
	Palette Palette

	Title      lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	Row        lipgloss.Style
	Focused    lipgloss.Style
	Committed  lipgloss.Style
	Prohibited lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Modal      lipgloss.Style
	Input      lipgloss.Style
}

// ThemeNames lists the selectable themes.
func ThemeNames() []string { return []string{"mocha", "latte"} }

// ThemeByName falls back to mocha for unknown names.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latte":
		return newTheme("latte", latte)
	default:
		return newTheme("mocha", mocha)
	}
}

func newTheme(name string, p Palette) Theme {
	return Theme{
		Name:       name,
		Palette:    p,
		Title:      lipgloss.NewStyle().Bold(true).Foreground(p.Pink),
		Tab:        lipgloss.NewStyle().Padding(0, 1).Foreground(p.Subtext0),
		ActiveTab:  lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(p.Base).Background(p.Pink),
		Row:        lipgloss.NewStyle().Foreground(p.Text),
		Focused:    lipgloss.NewStyle().Bold(true).Foreground(p.Lavender).Background(p.Surface0),
		Committed:  lipgloss.NewStyle().Foreground(p.Green),
		Prohibited: lipgloss.NewStyle().Foreground(p.Overlay0).Strikethrough(true),
		Muted:      lipgloss.NewStyle().Foreground(p.Overlay0),
		Error:      lipgloss.NewStyle().Foreground(p.Red),
		Success:    lipgloss.NewStyle().Foreground(p.Green),
		Modal:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Mauve).Padding(0, 1),
		Input:      lipgloss.NewStyle().Foreground(p.Text),
	}
}
