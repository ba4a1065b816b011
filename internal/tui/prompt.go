// Package tui provides the Bubble Tea prompts around the game rounds.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/reflex/internal/model"
)

// MaxNameWidth is the display width a player name is truncated to.
const MaxNameWidth = 16

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#36CFC9")).
			Bold(true).
			Padding(0, 6).
			Border(lipgloss.DoubleBorder(), true).
			BorderForeground(lipgloss.Color("#36CFC9"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// ClampName trims a player name and truncates it to MaxNameWidth cells.
func ClampName(name string) string {
	return runewidth.Truncate(strings.TrimSpace(name), MaxNameWidth, "…")
}

type nameModel struct {
	input       textinput.Model
	errMsg      string
	name        string
	interrupted bool
}

func newNameModel() *nameModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("Enter your name: ")
	ti.Placeholder = "player"
	ti.CharLimit = 64
	ti.Focus()
	return &nameModel{input: ti}
}

// Init implements tea.Model.
func (m *nameModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *nameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC:
			m.interrupted = true
			return m, tea.Quit
		case tea.KeyEnter:
			name := ClampName(m.input.Value())
			if name == "" {
				m.errMsg = "Please enter a valid name"
				m.input.Reset()
				return m, nil
			}
			m.name = name
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *nameModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(bannerStyle.Render("REFLEX SHOOTER GAME 🎯"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	return b.String()
}

type replayKeys struct {
	yes  key.Binding
	no   key.Binding
	quit key.Binding
}

var defaultReplayKeys = replayKeys{
	yes:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "play again")),
	no:   key.NewBinding(key.WithKeys("n", "N", "q", "esc", "enter"), key.WithHelp("n", "quit")),
	quit: key.NewBinding(key.WithKeys("ctrl+c")),
}

type replayModel struct {
	result      string
	keys        replayKeys
	again       bool
	interrupted bool
}

func newReplayModel(result string) *replayModel {
	return &replayModel{result: result, keys: defaultReplayKeys}
}

// Init implements tea.Model.
func (m *replayModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *replayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.quit):
		m.interrupted = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.yes):
		m.again = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.no):
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *replayModel) View() string {
	return m.result + "\n\n" + promptStyle.Render("Play again? (y/n)") + " " + mutedStyle.Render("y: again · n: quit") + "\n"
}

// Prompter runs the prompts as short-lived Bubble Tea programs.
type Prompter struct {
	in        io.Reader
	out       io.Writer
	threshold time.Duration
}

// NewPrompter creates a Prompter; threshold is shown as the target time.
func NewPrompter(in io.Reader, out io.Writer, threshold time.Duration) *Prompter {
	return &Prompter{in: in, out: out, threshold: threshold}
}

// AskName asks until a non-empty name is entered.
func (p *Prompter) AskName(ctx context.Context) (string, error) {
	final, err := p.run(ctx, newNameModel())
	if err != nil {
		return "", err
	}
	m := final.(*nameModel)
	if m.interrupted {
		return "", model.ErrInterrupted
	}
	return m.name, nil
}

// AskReplay shows the round result and asks whether to play again.
func (p *Prompter) AskReplay(ctx context.Context, name string, outcome model.RoundOutcome) (bool, error) {
	final, err := p.run(ctx, newReplayModel(ResultView(name, outcome, p.threshold)))
	if err != nil {
		return false, err
	}
	m := final.(*replayModel)
	if m.interrupted {
		return false, model.ErrInterrupted
	}
	return m.again, nil
}

func (p *Prompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return nil, model.ErrInterrupted
		}
		return nil, fmt.Errorf("failed to run prompt: %w", err)
	}
	return final, nil
}
