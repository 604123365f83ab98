package workout

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TestTimerStopFloorsSeconds verifies Stop returns whole elapsed seconds and
// clears the running state.
func TestTimerStopFloorsSeconds(t *testing.T) {
	clock := newFakeClock()
	timers := NewTimers(time.Hour, WithClock(clock.Now))
	defer timers.StopAll()

	timers.Start("a")
	if !timers.Running("a") {
		t.Fatal("expected timer a to be running")
	}
	clock.Advance(2900 * time.Millisecond)

	got, ok := timers.Stop("a")
	if !ok {
		t.Fatal("Stop reported idle timer")
	}
	if got != 2 {
		t.Errorf("elapsed = %d, want 2", got)
	}
	if timers.Running("a") {
		t.Error("timer still running after Stop")
	}
}

// TestTimerStopIdle verifies stopping a timer that never started is reported.
func TestTimerStopIdle(t *testing.T) {
	timers := NewTimers(time.Hour)
	if got, ok := timers.Stop("missing"); ok || got != 0 {
		t.Errorf("Stop = (%d, %v), want (0, false)", got, ok)
	}
}

// TestTimerRestart verifies starting a running timer resets its start time.
func TestTimerRestart(t *testing.T) {
	clock := newFakeClock()
	timers := NewTimers(time.Hour, WithClock(clock.Now))
	defer timers.StopAll()

	timers.Start("a")
	clock.Advance(5 * time.Second)
	timers.Start("a")
	clock.Advance(1500 * time.Millisecond)

	if got, _ := timers.Stop("a"); got != 1 {
		t.Errorf("elapsed = %d, want 1", got)
	}
}

// TestTimerTicksUpdateElapsed verifies the ticker goroutine refreshes the
// elapsed value and reports it to the tick handler.
func TestTimerTicksUpdateElapsed(t *testing.T) {
	clock := newFakeClock()
	ticks := make(chan int, 16)
	timers := NewTimers(time.Millisecond, WithClock(clock.Now), WithTickHandler(func(id string, elapsed int) {
		if id != "a" {
			return
		}
		select {
		case ticks <- elapsed:
		default:
		}
	}))
	defer timers.StopAll()

	timers.Start("a")
	clock.Advance(3 * time.Second)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-ticks:
			if got != 3 {
				continue
			}
			if e := timers.Elapsed("a"); e != 3 {
				t.Errorf("Elapsed = %d, want 3", e)
			}
			return
		case <-deadline:
			t.Fatal("no tick reported 3 elapsed seconds")
		}
	}
}

// TestTimerCancelAndStopAll verifies both cancellation paths leave nothing
// running; goleak checks the goroutines exited.
func TestTimerCancelAndStopAll(t *testing.T) {
	timers := NewTimers(time.Millisecond)

	timers.Start("a")
	timers.Start("b")
	timers.Start("c")

	timers.Cancel("a")
	if timers.Running("a") {
		t.Error("a running after Cancel")
	}
	timers.Cancel("a")

	timers.StopAll()
	for _, id := range []string{"a", "b", "c"} {
		if timers.Running(id) {
			t.Errorf("%s running after StopAll", id)
		}
		if e := timers.Elapsed(id); e != 0 {
			t.Errorf("Elapsed(%s) = %d, want 0", id, e)
		}
	}
}

// TestTickLoggerLogsEachSecondOnce verifies repeated ticks within one second
// produce a single debug line per stopwatch.
func TestTickLoggerLogsEachSecondOnce(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	onTick := TickLogger(log)

	onTick("a", 0)
	onTick("a", 0)
	onTick("b", 0)
	onTick("a", 1)
	onTick("a", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("logged %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "row_id=a") || !strings.Contains(lines[2], "elapsed_s=1") {
		t.Errorf("last line = %q", lines[2])
	}
}
