package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/connermo/ai4s/internal/model"
)

// manualClock fires timers only when advanced.
type manualClock struct {
	mu        sync.Mutex
	now       time.Time
	timers    []*manualTimer
	scheduled chan time.Duration
}

type manualTimer struct {
	clock   *manualClock
	when    time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fireStopped runs the callbacks of stopped timers, as time.AfterFunc does
// when Stop loses the race with expiry.
func (c *manualClock) fireStopped() {
	c.mu.Lock()
	var fns []func()
	for _, t := range c.timers {
		if t.stopped && !t.fired {
			t.fired = true
			fns = append(fns, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

func newManualClock() *manualClock {
	return &manualClock{
		now:       time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		scheduled: make(chan time.Duration, 256),
	}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	t := &manualTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	select {
	case c.scheduled <- d:
	default:
	}
	return t
}

// Advance moves time forward, firing due timers in order on the caller's goroutine.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.when.After(c.now) {
			c.now = next.when
		}
		c.mu.Unlock()
		next.f()
	}
}

func (c *manualClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *manualClock) nextScheduled(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-c.scheduled:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a timer to be scheduled")
		return 0
	}
}

// fakeLister is a counting model.Lister.
type fakeLister struct {
	mu            sync.Mutex
	users         []model.User
	containers    []model.Container
	usersErr      error
	containersErr error
	block         chan struct{} // when set, calls wait for it or ctx

	userCalls        int
	containerCalls   int
	userNoCache      []bool
	containerNoCache []bool
	started          chan string
}

func newFakeLister() *fakeLister {
	return &fakeLister{started: make(chan string, 256)}
}

func (f *fakeLister) wait(ctx context.Context) error {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block == nil {
		return nil
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeLister) ListUsers(ctx context.Context, opts model.FetchOpts) ([]model.User, error) {
	f.mu.Lock()
	f.userCalls++
	f.userNoCache = append(f.userNoCache, opts.NoCache)
	f.mu.Unlock()
	f.started <- "users"

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return append([]model.User(nil), f.users...), nil
}

func (f *fakeLister) ListContainers(ctx context.Context, opts model.FetchOpts) ([]model.Container, error) {
	f.mu.Lock()
	f.containerCalls++
	f.containerNoCache = append(f.containerNoCache, opts.NoCache)
	f.mu.Unlock()
	f.started <- "containers"

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.containersErr != nil {
		return nil, f.containersErr
	}
	return append([]model.Container(nil), f.containers...), nil
}

func (f *fakeLister) counts() (users, containers int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls, f.containerCalls
}

func (f *fakeLister) set(fn func(f *fakeLister)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// recorder collects callback invocations.
type recorder struct {
	results chan Result
	mu      sync.Mutex
	errors  []Result
}

func newRecorder() *recorder {
	return &recorder{results: make(chan Result, 512)}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		Render: func(res Result) { r.results <- res },
		Error: func(res Result) {
			r.mu.Lock()
			r.errors = append(r.errors, res)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

// await returns the next result matching pred, discarding others.
func (r *recorder) await(t *testing.T, pred func(Result) bool) Result {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case res := <-r.results:
			if pred(res) {
				return res
			}
		case <-deadline:
			t.Fatal("timed out waiting for result")
			return Result{}
		}
	}
}

// quiet fails if a result matching pred arrives within a short window.
func (r *recorder) quiet(t *testing.T, pred func(Result) bool) {
	t.Helper()
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case res := <-r.results:
			if pred(res) {
				t.Fatalf("unexpected result: target=%s phase=%s reason=%s", res.Target, res.Phase, res.Reason)
			}
		case <-deadline:
			return
		}
	}
}

func done(id TargetID) func(Result) bool {
	return func(res Result) bool {
		return res.Target == id && res.Phase != PhaseLoading
	}
}

func doneWith(id TargetID, reason Reason) func(Result) bool {
	return func(res Result) bool {
		return res.Target == id && res.Phase != PhaseLoading && res.Reason == reason
	}
}

// waitIdle waits until the target is no longer in flight.
func waitIdle(t *testing.T, c *Controller, id TargetID) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ts, ok := c.Snapshot().Target(id)
		if ok && !ts.InFlight {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("%s still in flight", id)
}

func newTestController(t *testing.T, src model.Lister, clk Clock, rec *recorder, mutate func(*Config)) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Clock = clk
	if mutate != nil {
		mutate(&cfg)
	}
	c := New(src, cfg, rec.callbacks())
	t.Cleanup(c.Close)
	return c
}
