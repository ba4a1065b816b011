// Package round runs a single round: the target appears, the player fires,
// and the controller decides the verdict.
package round

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/reflex/internal/clock"
	"github.com/verte-zerg/reflex/internal/input"
	"github.com/verte-zerg/reflex/internal/model"
)

// FireSource produces the player's shot. It must be armed before each wait.
type FireSource interface {
	Arm()
	AwaitFire(ctx context.Context) (model.InputEvent, error)
}

// Display draws a frame. It may be called from the scheduler goroutine.
type Display interface {
	Render(frame model.Frame)
}

// Controller runs rounds with a fixed configuration.
type Controller struct {
	cfg     model.RoundConfig
	clock   clock.Clock
	source  FireSource
	display Display
	logger  *log.Logger
}

// New validates cfg and returns a controller. A nil clock selects the system
// clock and a nil logger discards debug output.
func New(cfg model.RoundConfig, source FireSource, display Display, clk clock.Clock, logger *log.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.System
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		cfg:     cfg,
		clock:   clk,
		source:  source,
		display: display,
		logger:  logger,
	}, nil
}

// Config returns the round configuration.
func (c *Controller) Config() model.RoundConfig {
	return c.cfg
}

// RunRound shows the target and blocks until the player fires. It returns
// model.ErrInterrupted when the player aborts or ctx ends, and passes
// *input.InputModeError through unchanged. There is no time limit on the shot.
func (c *Controller) RunRound(ctx context.Context, placement model.Placement) (model.RoundOutcome, error) {
	c.source.Arm()
	frame := model.Frame{
		Target:    model.TargetSnapshot{Color: model.ColorGo},
		Placement: placement,
		Bounds:    c.cfg.Bounds,
		Switching: c.cfg.Switching,
	}
	c.display.Render(frame)

	appeared := c.clock.Now()
	state := newTargetState(appeared)

	var (
		ev  model.InputEvent
		err error
	)
	if c.cfg.Switching {
		ev, err = c.awaitWithScheduler(ctx, state, frame)
	} else {
		ev, err = c.source.AwaitFire(ctx)
	}
	if err != nil {
		if errors.Is(err, input.ErrCancelled) {
			return model.RoundOutcome{}, model.ErrInterrupted
		}
		return model.RoundOutcome{}, err
	}
	if ev.Kind == model.InputInterrupt {
		return model.RoundOutcome{}, model.ErrInterrupted
	}

	color := state.ColorAt(ev.At)
	outcome := Resolve(c.cfg, clock.Elapsed(appeared, ev.At), color)
	outcome.AppearedAt = appeared
	outcome.ShotAt = ev.At
	outcome.Switches = state.SwitchCount(ev.At)
	c.logger.Debug("round resolved",
		"reaction", outcome.Reaction,
		"verdict", outcome.Verdict,
		"color", color,
		"switches", outcome.Switches,
	)
	return outcome, nil
}

// awaitWithScheduler runs the color scheduler and the listener side by side.
// The listener sets the latch when it returns, which stops the scheduler.
func (c *Controller) awaitWithScheduler(ctx context.Context, state *TargetState, frame model.Frame) (model.InputEvent, error) {
	done := newLatch()
	sched := &scheduler{
		state:    state,
		clock:    c.clock,
		interval: c.cfg.Interval,
		tick:     c.cfg.Tick,
		redraw: func(snap model.TargetSnapshot) {
			f := frame
			f.Target = snap
			c.display.Render(f)
		},
	}

	var ev model.InputEvent
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n := sched.run(done.Done())
		c.logger.Debug("scheduler stopped", "switches", n)
		return nil
	})
	g.Go(func() error {
		defer done.Set()
		var err error
		ev, err = c.source.AwaitFire(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.InputEvent{}, err
	}
	return ev, nil
}

// Resolve applies the verdict rules: a shot on NOGO is always wrong,
// otherwise the reaction must be strictly below the threshold.
func Resolve(cfg model.RoundConfig, reaction time.Duration, color model.Color) model.RoundOutcome {
	outcome := model.RoundOutcome{Reaction: reaction, ColorAtShot: color}
	switch {
	case color == model.ColorNoGo:
		outcome.Verdict = model.VerdictWrongColor
	case reaction < cfg.Threshold:
		outcome.Verdict = model.VerdictWin
	default:
		outcome.Verdict = model.VerdictTooSlow
	}
	return outcome
}
