package input

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/verte-zerg/reflex/internal/model"
)

func openPTY(t *testing.T) (master, slave *os.File) {
	t.Helper()
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	t.Cleanup(func() { _ = master.Close() })
	if err := unix.IoctlSetPointerInt(int(master.Fd()), unix.TIOCSPTLCK, 0); err != nil {
		t.Fatalf("unlock pty: %v", err)
	}
	n, err := unix.IoctlGetInt(int(master.Fd()), unix.TIOCGPTN)
	if err != nil {
		t.Fatalf("pty number: %v", err)
	}
	slave, err = os.OpenFile(fmt.Sprintf("/dev/pts/%d", n), os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Fatalf("open pty slave: %v", err)
	}
	t.Cleanup(func() { _ = slave.Close() })
	return master, slave
}

func TestAwaitFireDiscardsKeysTypedBeforeRound(t *testing.T) {
	master, slave := openPTY(t)
	// Typed during the countdown, while the terminal is still in line mode.
	if _, err := master.Write([]byte("   ")); err != nil {
		t.Fatalf("write stale keys: %v", err)
	}

	l := NewListener(slave, int(slave.Fd()), Options{})
	l.Arm()
	type result struct {
		ev  model.InputEvent
		err error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		ev, err := l.AwaitFire(context.Background())
		done <- result{ev, err}
	}()

	select {
	case r := <-done:
		t.Fatalf("stale key fired the shot after %s: %+v %v", time.Since(start), r.ev, r.err)
	case <-time.After(150 * time.Millisecond):
	}

	deadline := time.After(3 * time.Second)
	for {
		if _, err := master.Write([]byte(" ")); err != nil {
			t.Fatalf("write fire key: %v", err)
		}
		select {
		case r := <-done:
			if r.err != nil || r.ev.Kind != model.InputFire {
				t.Fatalf("expected fire, got %+v %v", r.ev, r.err)
			}
			if r.ev.At.Sub(start) < 150*time.Millisecond {
				t.Fatalf("shot stamped before the fresh key was typed: %s", r.ev.At.Sub(start))
			}
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatalf("listener never saw the fresh key")
		}
	}
}
