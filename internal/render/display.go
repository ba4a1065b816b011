package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/reflex/internal/model"
)

const (
	glyphTarget       = '⊗'
	glyphShooter      = '▲'
	glyphShooterLeft  = '◄'
	glyphShooterRight = '►'

	clearScreen = "\033[H\033[2J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Display writes game screens to a terminal. Render may run on the
// scheduler goroutine, so every write is serialized.
type Display struct {
	mu       sync.Mutex
	w        io.Writer
	theme    Theme
	keyLabel string

	goStyle      lipgloss.Style
	noGoStyle    lipgloss.Style
	shooterStyle lipgloss.Style
	boxStyle     lipgloss.Style
	hintStyle    lipgloss.Style
	titleStyle   lipgloss.Style
}

// New creates a Display. keyLabel names the fire key in hints.
func New(w io.Writer, theme Theme, keyLabel string) *Display {
	r := lipgloss.NewRenderer(w)
	return &Display{
		w:            w,
		theme:        theme,
		keyLabel:     keyLabel,
		goStyle:      r.NewStyle().Foreground(theme.Go),
		noGoStyle:    r.NewStyle().Foreground(theme.NoGo),
		shooterStyle: r.NewStyle().Foreground(theme.Shooter),
		boxStyle:     r.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(theme.Border),
		hintStyle:    r.NewStyle().Foreground(theme.Hint),
		titleStyle:   r.NewStyle().Foreground(theme.Hint).Bold(true).Align(lipgloss.Center).Padding(2, 10),
	}
}

// Render clears the screen and draws the frame.
func (d *Display) Render(f model.Frame) {
	d.write(clearScreen + d.Frame(f))
}

// Frame builds the bordered grid and the hint line without writing it.
func (d *Display) Frame(f model.Frame) string {
	w, h := f.Bounds.Width, f.Bounds.Height
	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
	}
	put := func(p model.Point, r rune) {
		if f.Bounds.Contains(p) {
			grid[p.Y][p.X] = r
		}
	}
	s := f.Placement.Shooter
	put(s, glyphShooter)
	put(model.Point{X: s.X - 1, Y: s.Y}, glyphShooterLeft)
	put(model.Point{X: s.X + 1, Y: s.Y}, glyphShooterRight)
	put(f.Placement.Target, glyphTarget)

	targetStyle := d.goStyle
	if f.Target.Color == model.ColorNoGo {
		targetStyle = d.noGoStyle
	}

	rows := make([]string, h)
	for y, row := range grid {
		var b strings.Builder
		for _, r := range row {
			switch r {
			case glyphTarget:
				b.WriteString(targetStyle.Render(string(r)))
			case glyphShooter, glyphShooterLeft, glyphShooterRight:
				b.WriteString(d.shooterStyle.Render(string(r)))
			default:
				b.WriteRune(r)
			}
		}
		rows[y] = b.String()
	}

	hint := fmt.Sprintf("Press %s to shoot!", d.keyLabel)
	if f.Switching {
		hint = fmt.Sprintf("Press %s to shoot, but only while the target looks like %s", d.keyLabel, d.goStyle.Render(string(glyphTarget)))
	}
	return "\n" + d.boxStyle.Render(strings.Join(rows, "\n")) + "\n\n" + d.hintStyle.Render(hint) + "\n"
}

// Countdown draws the "get ready" screen for n.
func (d *Display) Countdown(n int) {
	d.write(clearScreen + d.titleStyle.Render(fmt.Sprintf("GET READY!\n\n%d", n)) + "\n")
}

// Farewell clears the screen and prints the closing message and details.
func (d *Display) Farewell(text string, details []string) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString("\n")
	b.WriteString(d.hintStyle.Render(text))
	b.WriteString("\n\n")
	for _, line := range details {
		b.WriteString(line)
		b.WriteString("\n")
	}
	d.write(b.String())
}

// Clear wipes the screen.
func (d *Display) Clear() {
	d.write(clearScreen)
}

// HideCursor hides the terminal cursor.
func (d *Display) HideCursor() {
	d.write(hideCursor)
}

// ShowCursor shows the terminal cursor.
func (d *Display) ShowCursor() {
	d.write(showCursor)
}

// write converts line endings to CRLF so output stays aligned while the
// terminal is in raw mode.
func (d *Display) write(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\r\n")
	if _, err := io.WriteString(d.w, s); err != nil {
		// Best-effort terminal output.
		_ = err
	}
}
