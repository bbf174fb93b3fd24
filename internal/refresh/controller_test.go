package refresh

import (
	"errors"
	"testing"
	"time"

	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/model"
)

func TestRefreshDropsOverlappingRequest(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	src.block = make(chan struct{})
	rec := newRecorder()
	c := newTestController(t, src, newManualClock(), rec, nil)

	if !c.Refresh(TargetUsers, false) {
		t.Fatal("first Refresh dropped")
	}
	<-src.started

	if c.Refresh(TargetUsers, false) {
		t.Fatal("second Refresh started while first in flight")
	}
	if c.RequestRefresh(TargetUsers, ReasonInterval) {
		t.Fatal("RequestRefresh started while first in flight")
	}
	if users, _ := src.counts(); users != 1 {
		t.Fatalf("ListUsers calls = %d, want 1", users)
	}
	ts, _ := c.Snapshot().Target(TargetUsers)
	if !ts.InFlight || ts.Dropped != 2 {
		t.Fatalf("status = %+v, want in flight with 2 dropped", ts)
	}

	close(src.block)
	rec.await(t, done(TargetUsers))
	waitIdle(t, c, TargetUsers)

	if !c.Refresh(TargetUsers, false) {
		t.Fatal("Refresh after completion dropped")
	}
	rec.await(t, done(TargetUsers))
	if users, _ := src.counts(); users != 2 {
		t.Fatalf("ListUsers calls = %d, want 2", users)
	}
}

func TestRefreshTargetsAreIndependent(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	src.block = make(chan struct{})
	rec := newRecorder()
	c := newTestController(t, src, newManualClock(), rec, nil)

	if !c.Refresh(TargetUsers, false) {
		t.Fatal("users Refresh dropped")
	}
	if !c.Refresh(TargetContainers, false) {
		t.Fatal("containers Refresh dropped while users in flight")
	}
	close(src.block)
	rec.await(t, done(TargetUsers))
}

func TestRefreshNullPayloadRendersEmpty(t *testing.T) {
	t.Parallel()
	src := newFakeLister() // users and containers are nil
	rec := newRecorder()
	c := newTestController(t, src, newManualClock(), rec, nil)

	c.Refresh(TargetUsers, false)
	res := rec.await(t, done(TargetUsers))
	if res.Phase != PhaseDone || res.Err != nil {
		t.Fatalf("phase = %s err = %v, want done without error", res.Phase, res.Err)
	}
	if res.Users == nil || len(res.Users) != 0 {
		t.Fatalf("Users = %#v, want empty non-nil", res.Users)
	}

	c.Refresh(TargetContainers, false)
	res = rec.await(t, done(TargetContainers))
	if res.Containers == nil || len(res.Containers) != 0 {
		t.Fatalf("Containers = %#v, want empty non-nil", res.Containers)
	}
	if n := rec.errorCount(); n != 0 {
		t.Fatalf("error callbacks = %d, want 0", n)
	}
}

func TestRefreshFailureRendersAndNotifies(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	src.containersErr = &apiclient.HTTPStatusError{Op: "list containers", StatusCode: 500, Message: "docker unavailable"}
	rec := newRecorder()
	c := newTestController(t, src, newManualClock(), rec, nil)

	c.Refresh(TargetContainers, true)
	loading := rec.await(t, func(r Result) bool { return r.Target == TargetContainers })
	if loading.Phase != PhaseLoading || !loading.Forced {
		t.Fatalf("first result = %s forced=%v, want forced loading", loading.Phase, loading.Forced)
	}
	res := rec.await(t, done(TargetContainers))
	if res.Phase != PhaseFailed || apiclient.KindOf(res.Err) != apiclient.KindHTTPStatus {
		t.Fatalf("phase = %s err = %v, want failed http-status", res.Phase, res.Err)
	}
	if n := rec.errorCount(); n != 1 {
		t.Fatalf("error callbacks = %d, want 1", n)
	}
	waitIdle(t, c, TargetContainers)
	ts, _ := c.Snapshot().Target(TargetContainers)
	if ts.ConsecutiveErrs != 1 || ts.LastError == "" {
		t.Fatalf("status = %+v, want one recorded error", ts)
	}

	src.set(func(f *fakeLister) {
		f.containersErr = nil
		f.containers = []model.Container{{ID: "c1", Status: "running"}}
	})
	c.Refresh(TargetContainers, false)
	res = rec.await(t, done(TargetContainers))
	if res.Phase != PhaseDone || len(res.Containers) != 1 {
		t.Fatalf("recovery result = %s %d containers", res.Phase, len(res.Containers))
	}
	waitIdle(t, c, TargetContainers)
	ts, _ = c.Snapshot().Target(TargetContainers)
	if ts.ConsecutiveErrs != 0 || ts.LastSucceededAt.IsZero() {
		t.Fatalf("status after recovery = %+v", ts)
	}
}

func TestForcedOnlyWhenRequested(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	rec := newRecorder()
	c := newTestController(t, src, newManualClock(), rec, nil)

	c.RequestRefresh(TargetUsers, ReasonInterval)
	rec.await(t, done(TargetUsers))
	waitIdle(t, c, TargetUsers)
	c.RequestRefresh(TargetUsers, ReasonManual)
	rec.await(t, done(TargetUsers))

	src.mu.Lock()
	defer src.mu.Unlock()
	if len(src.userNoCache) != 2 || src.userNoCache[0] || !src.userNoCache[1] {
		t.Fatalf("NoCache per call = %v, want [false true]", src.userNoCache)
	}
}

func TestIntervalRefreshesVisibleSection(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	clk := newManualClock()
	rec := newRecorder()
	c := newTestController(t, src, clk, rec, nil)

	c.Start(SectionUsers)
	rec.await(t, doneWith(TargetUsers, ReasonSection))
	waitIdle(t, c, TargetUsers)

	clk.Advance(model.DefaultRefreshInterval)
	res := rec.await(t, doneWith(TargetUsers, ReasonInterval))
	if res.Forced {
		t.Fatal("interval refresh was forced")
	}
	waitIdle(t, c, TargetUsers)
	if users, containers := src.counts(); users != 2 || containers != 0 {
		t.Fatalf("calls = users %d containers %d, want 2 and 0", users, containers)
	}

	c.SetPaused(true)
	clk.Advance(model.DefaultRefreshInterval)
	rec.quiet(t, doneWith(TargetUsers, ReasonInterval))
	if users, _ := src.counts(); users != 2 {
		t.Fatalf("ListUsers calls while paused = %d, want 2", users)
	}

	c.SetPaused(false)
	c.SetSection(SectionDashboard)
	waitIdle(t, c, TargetUsers)
	waitIdle(t, c, TargetContainers)
	if users, containers := src.counts(); users != 3 || containers != 1 {
		t.Fatalf("calls after section change = users %d containers %d, want 3 and 1", users, containers)
	}
}

func TestVisibilityDebounce(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	clk := newManualClock()
	rec := newRecorder()
	c := newTestController(t, src, clk, rec, nil)

	c.SetSection(SectionContainers)
	rec.await(t, doneWith(TargetContainers, ReasonSection))
	waitIdle(t, c, TargetContainers)

	for i := 0; i < 3; i++ {
		c.OnVisibilityChange(false)
		c.OnVisibilityChange(true)
		clk.Advance(300 * time.Millisecond)
	}
	if _, containers := src.counts(); containers != 1 {
		t.Fatalf("ListContainers calls inside debounce window = %d, want 1", containers)
	}

	clk.Advance(time.Second)
	res := rec.await(t, doneWith(TargetContainers, ReasonVisibility))
	if !res.Forced {
		t.Fatal("visibility refresh was not forced")
	}
	clk.Advance(5 * time.Second)
	rec.quiet(t, doneWith(TargetContainers, ReasonVisibility))
	if _, containers := src.counts(); containers != 2 {
		t.Fatalf("ListContainers calls = %d, want 2", containers)
	}
}

func TestVisibilityIgnoredOutsideContainers(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	clk := newManualClock()
	rec := newRecorder()
	c := newTestController(t, src, clk, rec, nil)

	c.OnVisibilityChange(false)
	c.OnVisibilityChange(true)
	clk.Advance(2 * time.Second)
	rec.quiet(t, done(TargetContainers))
	if _, containers := src.counts(); containers != 0 {
		t.Fatalf("ListContainers calls = %d, want 0", containers)
	}
}

func TestSettleRefreshAfterStart(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	src.containers = []model.Container{{ID: "c1", Status: "stopped"}}
	clk := newManualClock()
	rec := newRecorder()
	c := newTestController(t, src, clk, rec, func(cfg *Config) {
		cfg.Interval = time.Second
	})

	c.Start(SectionContainers)
	rec.await(t, doneWith(TargetContainers, ReasonSection))
	waitIdle(t, c, TargetContainers)

	c.AfterMutation(MutationStartContainer, nil)
	res := rec.await(t, doneWith(TargetContainers, ReasonMutation))
	if !res.Forced {
		t.Fatal("mutation refresh was not forced")
	}
	waitIdle(t, c, TargetContainers)

	// The interval timer fires inside the settle window.
	clk.Advance(time.Second)
	rec.await(t, doneWith(TargetContainers, ReasonInterval))
	waitIdle(t, c, TargetContainers)

	src.set(func(f *fakeLister) {
		f.containers = []model.Container{{ID: "c1", Status: "running"}}
	})
	clk.Advance(500 * time.Millisecond)
	res = rec.await(t, doneWith(TargetContainers, ReasonSettle))
	if !res.Forced || len(res.Containers) != 1 || !res.Containers[0].IsRunning() {
		t.Fatalf("settle result = forced %v containers %+v", res.Forced, res.Containers)
	}
	waitIdle(t, c, TargetContainers)

	c.SetPaused(true)
	clk.Advance(5 * time.Second)
	rec.quiet(t, doneWith(TargetContainers, ReasonSettle))
}

func TestMutationFailureResyncsWithoutSettle(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	clk := newManualClock()
	rec := newRecorder()
	c := newTestController(t, src, clk, rec, nil)

	c.AfterMutation(MutationStopContainer, errors.New("stop failed"))
	rec.await(t, doneWith(TargetContainers, ReasonMutation))
	waitIdle(t, c, TargetContainers)

	clk.Advance(5 * time.Second)
	rec.quiet(t, done(TargetContainers))
	if _, containers := src.counts(); containers != 1 {
		t.Fatalf("ListContainers calls = %d, want 1", containers)
	}
}

func TestSettleRearmReplacesPendingTimer(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	clk := newManualClock()
	rec := newRecorder()
	c := newTestController(t, src, clk, rec, nil)

	c.scheduleSettle(TargetContainers)
	clk.Advance(time.Second)
	c.scheduleSettle(TargetContainers)
	clk.Advance(time.Second)
	rec.quiet(t, done(TargetContainers))

	clk.Advance(time.Second)
	rec.await(t, doneWith(TargetContainers, ReasonSettle))
	waitIdle(t, c, TargetContainers)
	clk.Advance(5 * time.Second)
	rec.quiet(t, done(TargetContainers))
}

func TestCloseStopsEverything(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	clk := newManualClock()
	rec := newRecorder()
	cfg := DefaultConfig()
	cfg.Clock = clk
	c := New(src, cfg, rec.callbacks())

	c.Start(SectionDashboard)
	rec.await(t, done(TargetUsers))
	c.Close()

	before, _ := src.counts()
	clk.Advance(time.Minute)
	if c.Refresh(TargetUsers, true) {
		t.Fatal("Refresh after Close started a request")
	}
	if after, _ := src.counts(); after != before {
		t.Fatalf("ListUsers calls after Close = %d, want %d", after, before)
	}
	if n := clk.active(); n != 0 {
		t.Fatalf("active timers after Close = %d, want 0", n)
	}
}

func TestUnknownTargetIsIgnored(t *testing.T) {
	t.Parallel()
	c := newTestController(t, newFakeLister(), newManualClock(), newRecorder(), nil)
	if c.Refresh(TargetID("gpus"), true) {
		t.Fatal("unknown target accepted")
	}
}

func TestResetKeepsInFlightFlag(t *testing.T) {
	t.Parallel()
	src := newFakeLister()
	src.block = make(chan struct{})
	rec := newRecorder()
	c := newTestController(t, src, newManualClock(), rec, nil)

	c.Refresh(TargetUsers, false)
	<-src.started
	c.Reset(TargetUsers)
	if c.Refresh(TargetUsers, false) {
		t.Fatal("Refresh after Reset overlapped the in-flight request")
	}
	close(src.block)
	rec.await(t, done(TargetUsers))
}
