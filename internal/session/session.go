// Package session drives a game session: name prompt, rounds and replay.
package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/reflex/internal/clock"
	"github.com/verte-zerg/reflex/internal/model"
)

// DefaultCountdown is the number of seconds counted down before a round.
const DefaultCountdown = 3

// Prompter asks the player for input between rounds.
type Prompter interface {
	AskName(ctx context.Context) (string, error)
	AskReplay(ctx context.Context, name string, outcome model.RoundOutcome) (bool, error)
}

// Screen draws the countdown.
type Screen interface {
	Countdown(n int)
}

// Rounder plays one round.
type Rounder interface {
	RunRound(ctx context.Context, placement model.Placement) (model.RoundOutcome, error)
}

// Recorder keeps the fired rounds.
type Recorder interface {
	InsertRound(ctx context.Context, rec model.RoundRecord) (int64, error)
}

// Placer picks where the target and shooter go.
type Placer interface {
	Placement(b model.Bounds) model.Placement
}

// Config holds the session settings.
type Config struct {
	Mode      model.Mode
	Countdown int
	Bounds    model.Bounds
}

// Options carries the collaborators of a Session. Clock and Logger may be nil.
type Options struct {
	Prompter Prompter
	Screen   Screen
	Rounder  Rounder
	Recorder Recorder
	Placer   Placer
	Clock    clock.Clock
	Logger   *log.Logger
}

// Result describes how a session ended.
type Result struct {
	Player      string
	Rounds      int
	Interrupted bool
}

// Session runs rounds until the player stops or aborts.
type Session struct {
	cfg      Config
	prompter Prompter
	screen   Screen
	rounder  Rounder
	recorder Recorder
	placer   Placer
	clock    clock.Clock
	logger   *log.Logger
}

// New creates a Session.
func New(cfg Config, opts Options) *Session {
	if cfg.Countdown < 0 {
		cfg.Countdown = 0
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		cfg:      cfg,
		prompter: opts.Prompter,
		screen:   opts.Screen,
		rounder:  opts.Rounder,
		recorder: opts.Recorder,
		placer:   opts.Placer,
		clock:    clk,
		logger:   logger,
	}
}

// Run plays the session. An abort by the player or ctx ends it with
// Result.Interrupted set and a nil error; any other error is returned.
func (s *Session) Run(ctx context.Context) (Result, error) {
	var res Result
	name, err := s.prompter.AskName(ctx)
	if err != nil {
		return s.finish(res, err)
	}
	res.Player = name
	s.logger.Info("session started", "player", name, "mode", s.cfg.Mode)

	for {
		if err := s.countdown(ctx); err != nil {
			return s.finish(res, err)
		}
		outcome, err := s.rounder.RunRound(ctx, s.placer.Placement(s.cfg.Bounds))
		if err != nil {
			return s.finish(res, err)
		}
		res.Rounds++
		s.record(ctx, name, outcome)

		again, err := s.prompter.AskReplay(ctx, name, outcome)
		if err != nil {
			return s.finish(res, err)
		}
		if !again {
			s.logger.Info("session finished", "player", name, "rounds", res.Rounds)
			return res, nil
		}
	}
}

func (s *Session) countdown(ctx context.Context) error {
	for n := s.cfg.Countdown; n >= 1; n-- {
		s.screen.Countdown(n)
		select {
		case <-ctx.Done():
			return model.ErrInterrupted
		case <-s.clock.After(time.Second):
		}
	}
	return nil
}

func (s *Session) record(ctx context.Context, name string, outcome model.RoundOutcome) {
	if s.recorder == nil {
		return
	}
	rec := model.RoundRecord{
		Player:     name,
		Mode:       s.cfg.Mode,
		AppearedAt: outcome.AppearedAt,
		ReactionMs: outcome.Reaction.Milliseconds(),
		Verdict:    outcome.Verdict,
		Color:      outcome.ColorAtShot,
		Switches:   outcome.Switches,
	}
	if _, err := s.recorder.InsertRound(ctx, rec); err != nil {
		s.logger.Warn("failed to record round", "err", err)
	}
}

func (s *Session) finish(res Result, err error) (Result, error) {
	if errors.Is(err, model.ErrInterrupted) || errors.Is(err, context.Canceled) {
		res.Interrupted = true
		s.logger.Info("session interrupted", "player", res.Player, "rounds", res.Rounds)
		return res, nil
	}
	return res, err
}
