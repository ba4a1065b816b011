package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/reflex/internal/model"
)

var (
	resultBoxStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.DoubleBorder(), true).
			BorderForeground(lipgloss.Color("#F0F0F0"))
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	loseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#36CFC9"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// ResultView renders the boxed result of a round.
func ResultView(name string, outcome model.RoundOutcome, threshold time.Duration) string {
	var title, note string
	switch outcome.Verdict {
	case model.VerdictWin:
		title = winStyle.Render("YOU WIN! 🎉")
		note = fmt.Sprintf("Amazing reflexes, %s!", name)
	case model.VerdictWrongColor:
		title = loseStyle.Render("WRONG COLOR! 🎯")
		note = fmt.Sprintf("Wait for the right color, %s!", name)
	default:
		title = loseStyle.Render("YOU ARE TOO SLOW 😔")
		note = fmt.Sprintf("Better luck next time, %s!", name)
	}
	lines := []string{
		title,
		"",
		noteStyle.Render(note),
		"",
		detailStyle.Render(fmt.Sprintf("Reaction Time: %s seconds", FormatSeconds(outcome.Reaction))),
		detailStyle.Render(fmt.Sprintf("Target Time:   %s seconds", FormatSeconds(threshold))),
	}
	return resultBoxStyle.Render(strings.Join(lines, "\n"))
}

// FormatSeconds formats d as seconds with millisecond precision.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
