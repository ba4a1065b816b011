package input

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/reflex/internal/clock"
	"github.com/verte-zerg/reflex/internal/model"
)

type fakeTerminal struct {
	mu         sync.Mutex
	raw        bool
	enters     int
	restores   int
	ops        []string
	enterErr   error
	restoreErr error
	flushErr   error
}

func (f *fakeTerminal) MakeRaw(int) (*term.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enterErr != nil {
		return nil, f.enterErr
	}
	f.raw = true
	f.enters++
	f.ops = append(f.ops, "enter")
	return &term.State{}, nil
}

func (f *fakeTerminal) Flush(int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "flush")
	return f.flushErr
}

func (f *fakeTerminal) Restore(int, *term.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restores++
	f.ops = append(f.ops, "restore")
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.raw = false
	return nil
}

func newTestListener(in io.Reader, ft *fakeTerminal) *Listener {
	return NewListener(in, 0, Options{
		Clock:    clock.NewStep(time.Unix(0, 0)),
		Terminal: ft,
	})
}

func TestAwaitFireSkipsOtherKeys(t *testing.T) {
	ft := &fakeTerminal{}
	l := newTestListener(strings.NewReader("abc xyz"), ft)
	l.Arm()
	ev, err := l.AwaitFire(context.Background())
	if err != nil {
		t.Fatalf("await fire: %v", err)
	}
	if ev.Kind != model.InputFire {
		t.Fatalf("expected fire event, got %v", ev.Kind)
	}
	if ft.raw {
		t.Fatalf("terminal left in raw mode")
	}
}

func TestAwaitFireInterrupt(t *testing.T) {
	ft := &fakeTerminal{}
	l := newTestListener(strings.NewReader("x\x03 "), ft)
	l.Arm()
	ev, err := l.AwaitFire(context.Background())
	if err != nil {
		t.Fatalf("await fire: %v", err)
	}
	if ev.Kind != model.InputInterrupt {
		t.Fatalf("expected interrupt event, got %v", ev.Kind)
	}
	if ft.raw || ft.restores != 1 {
		t.Fatalf("expected one restore, got raw=%v restores=%d", ft.raw, ft.restores)
	}
}

func TestAwaitFireCustomKey(t *testing.T) {
	ft := &fakeTerminal{}
	l := NewListener(strings.NewReader(" f"), 0, Options{FireKey: 'f', Terminal: ft})
	l.Arm()
	ev, err := l.AwaitFire(context.Background())
	if err != nil || ev.Kind != model.InputFire {
		t.Fatalf("expected fire on custom key, got %v %v", ev, err)
	}
}

func TestAwaitFireRequiresArm(t *testing.T) {
	ft := &fakeTerminal{}
	l := newTestListener(strings.NewReader("  "), ft)
	l.Arm()
	if _, err := l.AwaitFire(context.Background()); err != nil {
		t.Fatalf("first await: %v", err)
	}
	if _, err := l.AwaitFire(context.Background()); !errors.Is(err, ErrNotArmed) {
		t.Fatalf("expected ErrNotArmed, got %v", err)
	}
	if ft.enters != 1 {
		t.Fatalf("unarmed call must not touch the terminal, enters=%d", ft.enters)
	}
}

func TestAwaitFireEOF(t *testing.T) {
	ft := &fakeTerminal{}
	l := newTestListener(strings.NewReader("abc"), ft)
	l.Arm()
	_, err := l.AwaitFire(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected wrapped EOF, got %v", err)
	}
	if ft.raw {
		t.Fatalf("terminal left in raw mode after error")
	}
}

func TestRawModeRestoredAcrossRounds(t *testing.T) {
	ft := &fakeTerminal{}
	const rounds = 25
	// One byte per read, so every round leaves the next space unread.
	l := newTestListener(iotest.OneByteReader(strings.NewReader(strings.Repeat(" ", rounds))), ft)
	for i := 0; i < rounds; i++ {
		l.Arm()
		if _, err := l.AwaitFire(context.Background()); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		if ft.raw {
			t.Fatalf("round %d: terminal left in raw mode", i)
		}
	}
	if ft.enters != rounds || ft.restores != rounds {
		t.Fatalf("unbalanced raw mode: enters=%d restores=%d", ft.enters, ft.restores)
	}
}

func TestAwaitFireFlushesAfterEnteringRawMode(t *testing.T) {
	ft := &fakeTerminal{}
	l := newTestListener(strings.NewReader(" "), ft)
	l.Arm()
	if _, err := l.AwaitFire(context.Background()); err != nil {
		t.Fatalf("await fire: %v", err)
	}
	want := []string{"enter", "flush", "restore"}
	if strings.Join(ft.ops, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, ft.ops)
	}
}

func TestFlushFailureIsInputModeError(t *testing.T) {
	ft := &fakeTerminal{flushErr: errors.New("ioctl failed")}
	l := newTestListener(strings.NewReader(" "), ft)
	l.Arm()
	_, err := l.AwaitFire(context.Background())
	var modeErr *InputModeError
	if !errors.As(err, &modeErr) || modeErr.Op != "flush" {
		t.Fatalf("expected flush InputModeError, got %v", err)
	}
	if ft.raw {
		t.Fatalf("terminal left in raw mode after flush failure")
	}
}

func TestEnterFailureIsInputModeError(t *testing.T) {
	ft := &fakeTerminal{enterErr: errors.New("not a tty")}
	l := newTestListener(strings.NewReader(" "), ft)
	l.Arm()
	_, err := l.AwaitFire(context.Background())
	var modeErr *InputModeError
	if !errors.As(err, &modeErr) || modeErr.Op != "enter" {
		t.Fatalf("expected enter InputModeError, got %v", err)
	}
}

func TestRestoreFailureOverridesEvent(t *testing.T) {
	ft := &fakeTerminal{restoreErr: errors.New("ioctl failed")}
	l := newTestListener(strings.NewReader(" "), ft)
	l.Arm()
	ev, err := l.AwaitFire(context.Background())
	var modeErr *InputModeError
	if !errors.As(err, &modeErr) || modeErr.Op != "restore" {
		t.Fatalf("expected restore InputModeError, got %v", err)
	}
	if !ev.At.IsZero() {
		t.Fatalf("event must be discarded on restore failure: %+v", ev)
	}
}

func TestAwaitFireCancelled(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})

	ft := &fakeTerminal{}
	l := newTestListener(r, ft)
	l.Arm()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := l.AwaitFire(ctx)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("listener did not observe cancellation")
	}
	if ft.raw {
		t.Fatalf("terminal left in raw mode after cancellation")
	}
}

func TestAwaitFireAlreadyCancelled(t *testing.T) {
	ft := &fakeTerminal{}
	l := newTestListener(strings.NewReader(" "), ft)
	l.Arm()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.AwaitFire(ctx); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if ft.enters != 0 {
		t.Fatalf("cancelled call must not enter raw mode")
	}
}

func TestParseFireKey(t *testing.T) {
	cases := map[string]byte{"": ' ', "space": ' ', "Enter": '\r', "f": 'f'}
	for in, want := range cases {
		got, err := ParseFireKey(in)
		if err != nil || got != want {
			t.Fatalf("ParseFireKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"ff", "\x03", "é"} {
		if _, err := ParseFireKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
