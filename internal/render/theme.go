// Package render draws the game screens.
package render

import "github.com/charmbracelet/lipgloss"

// Theme holds every color the renderer uses. The game core never sees it.
type Theme struct {
	Go      lipgloss.Color
	NoGo    lipgloss.Color
	Shooter lipgloss.Color
	Border  lipgloss.Color
	Hint    lipgloss.Color
}

// DefaultTheme is a red GO target, a blue NOGO target and a green shooter
// inside a cyan frame.
func DefaultTheme() Theme {
	return Theme{
		Go:      lipgloss.Color("#FF4D4F"),
		NoGo:    lipgloss.Color("#4D7CFF"),
		Shooter: lipgloss.Color("#52C41A"),
		Border:  lipgloss.Color("#36CFC9"),
		Hint:    lipgloss.Color("#C89A3A"),
	}
}

// Override replaces colors whose override is non-empty.
func (t Theme) Override(goColor, noGo, shooter, border, hint string) Theme {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&t.Go, goColor)
	set(&t.NoGo, noGo)
	set(&t.Shooter, shooter)
	set(&t.Border, border)
	set(&t.Hint, hint)
	return t
}
