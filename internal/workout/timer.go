package workout

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Option configures Timers.
type Option func(*Timers)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Timers) { t.now = now }
}

// WithTickHandler registers fn to be called with the elapsed whole seconds
// on every tick of a running stopwatch. fn runs on the ticker goroutine and
// must not stop or cancel the stopwatch it is called for.
func WithTickHandler(fn func(id string, elapsed int)) Option {
	return func(t *Timers) { t.onTick = fn }
}

// TickLogger returns a tick handler that logs each new elapsed second of a
// stopwatch at debug level. Repeated ticks within the same second are skipped.
func TickLogger(log *slog.Logger) func(id string, elapsed int) {
	var mu sync.Mutex
	last := make(map[string]int)
	return func(id string, elapsed int) {
		mu.Lock()
		prev, seen := last[id]
		last[id] = elapsed
		mu.Unlock()
		if seen && prev == elapsed {
			return
		}
		log.Debug("stopwatch tick", "row_id", id, "elapsed_s", elapsed)
	}
}

// Timers runs one stopwatch per row id. Each running stopwatch owns a
// ticker goroutine that refreshes its elapsed value until it is stopped,
// cancelled or the whole set is shut down with StopAll.
type Timers struct {
	tick   time.Duration
	now    func() time.Time
	onTick func(id string, elapsed int)

	mu      sync.Mutex
	running map[string]*stopwatch
}

type stopwatch struct {
	started time.Time
	elapsed int
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewTimers creates an empty timer set that refreshes elapsed values every tick.
func NewTimers(tick time.Duration, opts ...Option) *Timers {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	t := &Timers{
		tick:    tick,
		now:     time.Now,
		running: make(map[string]*stopwatch),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins timing id. A stopwatch already running for id is restarted.
func (t *Timers) Start(id string) {
	ctx, cancel := context.WithCancel(context.Background())
	sw := &stopwatch{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	t.mu.Lock()
	prev := t.running[id]
	sw.started = t.now()
	t.running[id] = sw
	t.mu.Unlock()

	prev.halt()
	go t.run(ctx, id, sw)
}

// Stop ends timing id and returns the elapsed whole seconds. ok is false
// when no stopwatch was running for id.
func (t *Timers) Stop(id string) (seconds int, ok bool) {
	t.mu.Lock()
	sw, ok := t.running[id]
	if ok {
		delete(t.running, id)
		seconds = wholeSeconds(t.now().Sub(sw.started))
	}
	t.mu.Unlock()

	if !ok {
		return 0, false
	}
	sw.halt()
	return seconds, true
}

// Cancel discards the stopwatch for id without reporting a value.
func (t *Timers) Cancel(id string) {
	t.mu.Lock()
	sw := t.running[id]
	delete(t.running, id)
	t.mu.Unlock()

	sw.halt()
}

// StopAll cancels every running stopwatch and waits for their goroutines.
func (t *Timers) StopAll() {
	t.mu.Lock()
	all := t.running
	t.running = make(map[string]*stopwatch)
	t.mu.Unlock()

	for _, sw := range all {
		sw.halt()
	}
}

// Elapsed returns the value of the last tick for id, or 0 when id is idle.
func (t *Timers) Elapsed(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sw, ok := t.running[id]; ok {
		return sw.elapsed
	}
	return 0
}

// Running reports whether a stopwatch is running for id.
func (t *Timers) Running(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.running[id]
	return ok
}

func (t *Timers) run(ctx context.Context, id string, sw *stopwatch) {
	defer close(sw.done)

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			elapsed := wholeSeconds(t.now().Sub(sw.started))
			sw.elapsed = elapsed
			t.mu.Unlock()

			if t.onTick != nil && ctx.Err() == nil {
				t.onTick(id, elapsed)
			}
		}
	}
}

// halt cancels the goroutine and waits for it to exit. Safe on nil.
func (sw *stopwatch) halt() {
	if sw == nil {
		return
	}
	sw.cancel()
	<-sw.done
}

func wholeSeconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
