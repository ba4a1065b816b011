// Package input reads the fire key from a raw-mode terminal.
package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/muesli/cancelreader"
	"golang.org/x/term"

	"github.com/verte-zerg/reflex/internal/clock"
	"github.com/verte-zerg/reflex/internal/model"
)

const (
	// DefaultFireKey is the space bar.
	DefaultFireKey byte = ' '
	// KeyInterrupt is Ctrl-C as delivered in raw mode.
	KeyInterrupt byte = 0x03
)

var (
	// ErrCancelled is returned when the context ends before any key arrives.
	ErrCancelled = errors.New("input cancelled")
	// ErrNotArmed is returned when AwaitFire is called again without Arm.
	ErrNotArmed = errors.New("listener not armed")
)

// InputModeError reports a failure to enter or leave raw mode. The terminal
// cannot be trusted afterwards.
type InputModeError struct {
	Op  string
	Err error
}

func (e *InputModeError) Error() string {
	return fmt.Sprintf("raw mode %s: %v", e.Op, e.Err)
}

func (e *InputModeError) Unwrap() error {
	return e.Err
}

// Terminal switches a file descriptor in and out of raw mode. Flush drops
// input that was typed but not read yet.
type Terminal interface {
	MakeRaw(fd int) (*term.State, error)
	Restore(fd int, state *term.State) error
	Flush(fd int) error
}

type systemTerminal struct{}

func (systemTerminal) MakeRaw(fd int) (*term.State, error) {
	return term.MakeRaw(fd)
}

func (systemTerminal) Restore(fd int, state *term.State) error {
	return term.Restore(fd, state)
}

func (systemTerminal) Flush(fd int) error {
	return flushInput(fd)
}

// Options configures a Listener. Zero values select the defaults.
type Options struct {
	FireKey  byte
	Clock    clock.Clock
	Terminal Terminal
}

// Listener blocks until the fire key is pressed. It produces at most one
// event per Arm.
type Listener struct {
	in      io.Reader
	fd      int
	fireKey byte
	clock   clock.Clock
	term    Terminal
	armed   atomic.Bool
}

// NewListener creates a listener reading from in, whose terminal mode is
// controlled through fd.
func NewListener(in io.Reader, fd int, opts Options) *Listener {
	l := &Listener{
		in:      in,
		fd:      fd,
		fireKey: opts.FireKey,
		clock:   opts.Clock,
		term:    opts.Terminal,
	}
	if l.fireKey == 0 {
		l.fireKey = DefaultFireKey
	}
	if l.clock == nil {
		l.clock = clock.System
	}
	if l.term == nil {
		l.term = systemTerminal{}
	}
	return l
}

// Arm allows one more call to AwaitFire.
func (l *Listener) Arm() {
	l.armed.Store(true)
}

// AwaitFire puts the terminal in raw mode and blocks until the fire key or
// Ctrl-C is read, or ctx is done. Keys pressed before the call are
// discarded. Raw mode is restored on every return path; a failed restore
// replaces the result with an *InputModeError.
func (l *Listener) AwaitFire(ctx context.Context) (ev model.InputEvent, err error) {
	if !l.armed.CompareAndSwap(true, false) {
		return model.InputEvent{}, ErrNotArmed
	}
	if ctx.Err() != nil {
		return model.InputEvent{}, ErrCancelled
	}

	state, err := l.term.MakeRaw(l.fd)
	if err != nil {
		return model.InputEvent{}, &InputModeError{Op: "enter", Err: err}
	}
	defer func() {
		if rerr := l.term.Restore(l.fd, state); rerr != nil {
			ev = model.InputEvent{}
			err = &InputModeError{Op: "restore", Err: rerr}
		}
	}()
	if err := l.term.Flush(l.fd); err != nil {
		return model.InputEvent{}, &InputModeError{Op: "flush", Err: err}
	}

	reader, err := cancelreader.NewReader(l.in)
	if err != nil {
		return model.InputEvent{}, fmt.Errorf("failed to open input reader: %w", err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			// Best-effort close of the cancel pipe.
			_ = cerr
		}
	}()
	stop := context.AfterFunc(ctx, func() {
		reader.Cancel()
	})
	defer stop()

	return l.readUntilFire(reader)
}

func (l *Listener) readUntilFire(r io.Reader) (model.InputEvent, error) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		at := l.clock.Now()
		for _, b := range buf[:n] {
			switch b {
			case l.fireKey:
				return model.InputEvent{At: at, Kind: model.InputFire}, nil
			case KeyInterrupt:
				return model.InputEvent{At: at, Kind: model.InputInterrupt}, nil
			}
		}
		if err != nil {
			if errors.Is(err, cancelreader.ErrCanceled) {
				return model.InputEvent{}, ErrCancelled
			}
			return model.InputEvent{}, fmt.Errorf("failed to read input: %w", err)
		}
	}
}
