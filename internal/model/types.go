// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Game constants. Difficulty is fixed.
const (
	ReflexThreshold = 600 * time.Millisecond
	SwitchInterval  = 500 * time.Millisecond
	SchedulerTick   = 50 * time.Millisecond
	GridWidth       = 60
	GridHeight      = 20
)

const (
	minGridWidth  = 11
	minGridHeight = 9
	tickRatio     = 10
)

var (
	// ErrInterrupted reports a user-initiated abort of a round or session.
	ErrInterrupted = errors.New("interrupted")
	// ErrInvalidConfig reports a round configuration that cannot be played.
	ErrInvalidConfig = errors.New("invalid config")
)

// Mode selects the game variant.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeSwitch  Mode = "switch"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeClassic, ModeSwitch:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (want classic or switch)", ErrInvalidConfig, s)
	}
}

// Color is the target state. Only ColorGo permits a winning shot.
type Color int

const (
	ColorGo Color = iota
	ColorNoGo
)

func (c Color) String() string {
	if c == ColorNoGo {
		return "nogo"
	}
	return "go"
}

// Verdict is the result of a fired round.
type Verdict int

const (
	VerdictWin Verdict = iota
	VerdictTooSlow
	VerdictWrongColor
)

func (v Verdict) String() string {
	switch v {
	case VerdictWin:
		return "win"
	case VerdictTooSlow:
		return "too_slow"
	case VerdictWrongColor:
		return "wrong_color"
	default:
		return "unknown"
	}
}

// InputKind distinguishes a shot from a user abort.
type InputKind int

const (
	InputFire InputKind = iota
	InputInterrupt
)

// InputEvent is produced at most once per armed listener.
type InputEvent struct {
	At   time.Time
	Kind InputKind
}

// Point is a grid cell; X is the column, Y the row.
type Point struct {
	X int
	Y int
}

// Bounds are the grid dimensions in cells.
type Bounds struct {
	Width  int
	Height int
}

// Contains reports whether p lies inside the grid.
func (b Bounds) Contains(p Point) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// Placement positions the target and the shooter for one round.
type Placement struct {
	Target  Point
	Shooter Point
}

// RoundConfig is fixed for the whole process.
type RoundConfig struct {
	Threshold time.Duration
	Interval  time.Duration
	Tick      time.Duration
	Bounds    Bounds
	Switching bool
}

// DefaultRoundConfig returns the game constants for the given variant.
func DefaultRoundConfig(mode Mode) RoundConfig {
	return RoundConfig{
		Threshold: ReflexThreshold,
		Interval:  SwitchInterval,
		Tick:      SchedulerTick,
		Bounds:    Bounds{Width: GridWidth, Height: GridHeight},
		Switching: mode == ModeSwitch,
	}
}

// Validate rejects configurations that cannot run a round.
func (c RoundConfig) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("%w: threshold must be > 0", ErrInvalidConfig)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: switch interval must be > 0", ErrInvalidConfig)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("%w: scheduler tick must be > 0", ErrInvalidConfig)
	}
	if c.Switching && c.Interval < tickRatio*c.Tick {
		return fmt.Errorf("%w: switch interval %s must be at least %dx the tick %s", ErrInvalidConfig, c.Interval, tickRatio, c.Tick)
	}
	if c.Bounds.Width < minGridWidth || c.Bounds.Height < minGridHeight {
		return fmt.Errorf("%w: grid must be at least %dx%d", ErrInvalidConfig, minGridWidth, minGridHeight)
	}
	return nil
}

// TargetSnapshot is a consistent copy of the target state.
type TargetSnapshot struct {
	Color      Color
	AppearedAt time.Time
	SwitchedAt time.Time
	Switches   int
}

// Frame is everything the display needs to draw one screen.
type Frame struct {
	Target    TargetSnapshot
	Placement Placement
	Bounds    Bounds
	Switching bool
}

// RoundOutcome is the immutable result of a fired round.
type RoundOutcome struct {
	Reaction    time.Duration
	Verdict     Verdict
	ColorAtShot Color
	AppearedAt  time.Time
	ShotAt      time.Time
	Switches    int
}

// RoundRecord is a stored round.
type RoundRecord struct {
	ID         int64
	Player     string
	Mode       Mode
	AppearedAt time.Time
	ReactionMs int64
	Verdict    Verdict
	Color      Color
	Switches   int
}

// Summary aggregates the rounds of one player.
type Summary struct {
	Rounds      int
	Wins        int
	TooSlow     int
	WrongColor  int
	BestMs      int64
	MeanMs      float64
	HasReaction bool
}
