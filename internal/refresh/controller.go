package refresh

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/connermo/ai4s/internal/model"
)

// Config holds controller timing.
type Config struct {
	Interval           time.Duration // periodic refresh of the visible section
	SettleDelay        time.Duration // second forced refresh after async mutations
	VisibilityDebounce time.Duration
	MaxRetries         int           // option list retries after the first attempt
	RetryDelay         time.Duration // multiplied by the attempt number
	OptionsTimeout     time.Duration // per option list attempt
	Clock              Clock
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		Interval:           model.DefaultRefreshInterval,
		SettleDelay:        model.DefaultSettleDelay,
		VisibilityDebounce: model.DefaultVisibilityDebounce,
		MaxRetries:         model.DefaultOptionsMaxRetries,
		RetryDelay:         model.DefaultOptionsRetryDelay,
		OptionsTimeout:     model.DefaultOptionsTimeout,
	}
}

// Callbacks receive results. Render gets every state change, Error only
// failures that need a notification. Calls are serialized.
type Callbacks struct {
	Render func(Result)
	Error  func(Result)
}

// Controller keeps the user and container lists in sync with the API.
type Controller struct {
	src     model.Lister
	cfg     Config
	clock   Clock
	cb      Callbacks
	targets map[TargetID]Target

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	session     *DashboardSessionState
	closed      bool
	interval    Timer
	debounce    Timer
	debounceGen uint64
	settle      map[TargetID]Timer
	settleGen   map[TargetID]uint64

	dispatchMu sync.Mutex
}

// New creates a controller. Nothing is fetched until Start or a request.
func New(src model.Lister, cfg Config, cb Callbacks) *Controller {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = def.SettleDelay
	}
	if cfg.VisibilityDebounce <= 0 {
		cfg.VisibilityDebounce = def.VisibilityDebounce
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.OptionsTimeout <= 0 {
		cfg.OptionsTimeout = def.OptionsTimeout
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		src:       src,
		cfg:       cfg,
		clock:     clock,
		cb:        cb,
		targets:   make(map[TargetID]Target),
		ctx:       ctx,
		cancel:    cancel,
		session:   NewDashboardSessionState(SectionDashboard, clock.Now()),
		settle:    make(map[TargetID]Timer),
		settleGen: make(map[TargetID]uint64),
	}
	for _, t := range DefaultTargets() {
		c.targets[t.ID] = t
	}
	return c
}

// Start mounts the console on section: it refreshes the section's targets
// and arms the interval timer. Existing target state is kept.
func (c *Controller) Start(section Section) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.session.Section = section
	c.session.Visible = true
	c.session.MountedAt = c.clock.Now()
	c.armIntervalLocked()
	c.mu.Unlock()

	for _, id := range section.Targets() {
		c.RequestRefresh(id, ReasonSection)
	}
}

// Close stops all timers, aborts in-flight requests and waits for them.
// No callback runs after Close returns.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.interval != nil {
		c.interval.Stop()
	}
	if c.debounce != nil {
		c.debounce.Stop()
	}
	for _, t := range c.settle {
		t.Stop()
	}
	for _, st := range c.session.states {
		st.stopPending()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.snapshot()
}

// Section returns the visible section.
func (c *Controller) Section() Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Section
}

// SetSection records the visible section and soft-refreshes its targets
// when it changed.
func (c *Controller) SetSection(s Section) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changed := c.session.Section != s
	c.session.Section = s
	if s != SectionContainers && c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
		c.debounceGen++
	}
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, id := range s.Targets() {
		c.RequestRefresh(id, ReasonSection)
	}
}

// SetPaused suspends or resumes interval refreshes. Explicit requests
// still run while paused.
func (c *Controller) SetPaused(paused bool) {
	c.mu.Lock()
	c.session.Paused = paused
	c.mu.Unlock()
}

// Paused reports whether interval refreshes are suspended.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Paused
}

// Reset clears a target's bookkeeping, cancelling any pending retry.
func (c *Controller) Reset(id TargetID) {
	c.mu.Lock()
	c.session.Reset(id)
	c.mu.Unlock()
}

// RequestRefresh is the single entry point for every trigger. The reason
// decides whether the request bypasses caches. It returns false when the
// request was dropped.
func (c *Controller) RequestRefresh(id TargetID, reason Reason) bool {
	if id == TargetUserOptions {
		return c.loadOptions(0, reason)
	}
	return c.refresh(id, reason, reason.Forced())
}

// Refresh fetches a target once. A call while the target is in flight is
// a no-op returning false.
func (c *Controller) Refresh(id TargetID, forced bool) bool {
	if id == TargetUserOptions {
		return c.loadOptions(0, ReasonManual)
	}
	return c.refresh(id, ReasonManual, forced)
}

func (c *Controller) refresh(id TargetID, reason Reason, forced bool) bool {
	t, ok := c.targets[id]
	if !ok {
		log.Printf("refresh: unknown target %q", id)
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	st := c.session.State(id)
	if st.InFlight {
		st.Dropped++
		c.mu.Unlock()
		return false
	}
	st.InFlight = true
	st.LastReason = reason
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(t, reason, forced && t.SupportsForce)
	return true
}

func (c *Controller) run(t Target, reason Reason, forced bool) {
	defer c.wg.Done()

	c.dispatch(Result{Target: t.ID, Phase: PhaseLoading, Reason: reason, Forced: forced, At: c.clock.Now()})

	opts := model.FetchOpts{NoCache: forced}
	res := Result{Target: t.ID, Reason: reason, Forced: forced}
	var err error
	switch t.ID {
	case TargetUsers:
		res.Users, err = c.src.ListUsers(c.ctx, opts)
		if err == nil && res.Users == nil {
			res.Users = []model.User{}
		}
	case TargetContainers:
		res.Containers, err = c.src.ListContainers(c.ctx, opts)
		if err == nil && res.Containers == nil {
			res.Containers = []model.Container{}
		}
	}
	res.At = c.clock.Now()

	c.mu.Lock()
	st := c.session.State(t.ID)
	if err != nil {
		res.Phase = PhaseFailed
		res.Err = err
		st.recordError(err, res.At)
	} else {
		res.Phase = PhaseDone
		st.recordSuccess(res.At)
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("refresh: %s (%s) failed: %v", t.ID, reason, err)
	}
	c.dispatch(res)

	c.mu.Lock()
	st.InFlight = false
	c.mu.Unlock()
}

func (s *RefreshState) recordSuccess(at time.Time) {
	s.LastSucceededAt = at
	s.RetryCount = 0
	s.Failed = false
	s.LastError = ""
	s.ConsecutiveErrs = 0
}

func (s *RefreshState) recordError(err error, at time.Time) {
	s.LastError = err.Error()
	s.LastErrorAt = at
	s.ConsecutiveErrs++
}

// dispatch delivers a result to the callbacks, one at a time.
func (c *Controller) dispatch(res Result) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()
	if c.ctx.Err() != nil {
		return
	}
	if c.cb.Render != nil {
		c.cb.Render(res)
	}
	if res.Phase == PhaseFailed && c.cb.Error != nil {
		c.cb.Error(res)
	}
}

func (c *Controller) armIntervalLocked() {
	if c.interval != nil {
		c.interval.Stop()
	}
	c.interval = c.clock.AfterFunc(c.cfg.Interval, c.onInterval)
}

func (c *Controller) onInterval() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.armIntervalLocked()
	paused := c.session.Paused
	section := c.session.Section
	c.mu.Unlock()

	if paused {
		return
	}
	for _, id := range section.Targets() {
		c.RequestRefresh(id, ReasonInterval)
	}
}

// OnVisibilityChange reports the console becoming visible or hidden. A
// hidden to visible transition on the containers section schedules one
// debounced forced refresh; later transitions within the window replace
// it. It also restarts an option list load that exhausted its retries.
func (c *Controller) OnVisibilityChange(visible bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	wasVisible := c.session.Visible
	c.session.Visible = visible
	if !visible || wasVisible {
		c.mu.Unlock()
		return
	}

	if c.session.Section == SectionContainers {
		if c.debounce != nil {
			c.debounce.Stop()
		}
		c.debounceGen++
		gen := c.debounceGen
		c.debounce = c.clock.AfterFunc(c.cfg.VisibilityDebounce, func() {
			c.onVisibilitySettled(gen)
		})
	}

	optionsFailed := false
	if st, ok := c.session.states[TargetUserOptions]; ok {
		optionsFailed = st.Failed
	}
	c.mu.Unlock()

	if optionsFailed {
		c.loadOptions(0, ReasonVisibility)
	}
}

func (c *Controller) onVisibilitySettled(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.debounceGen {
		c.mu.Unlock()
		return
	}
	c.debounce = nil
	section := c.session.Section
	c.mu.Unlock()

	if section == SectionContainers {
		c.RequestRefresh(TargetContainers, ReasonVisibility)
	}
}

// AfterMutation reconciles after a create/update/delete/start/stop call.
// Affected targets are force-refreshed immediately; successful
// asynchronous container mutations also get a settle refresh.
func (c *Controller) AfterMutation(m Mutation, err error) {
	for _, id := range m.Affects() {
		c.RequestRefresh(id, ReasonMutation)
	}
	if err == nil && m.Async() {
		c.scheduleSettle(TargetContainers)
	}
}

func (c *Controller) scheduleSettle(id TargetID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if t := c.settle[id]; t != nil {
		t.Stop()
	}
	c.settleGen[id]++
	gen := c.settleGen[id]
	c.settle[id] = c.clock.AfterFunc(c.cfg.SettleDelay, func() {
		c.onSettle(id, gen)
	})
}

func (c *Controller) onSettle(id TargetID, gen uint64) {
	c.mu.Lock()
	if c.closed || c.settleGen[id] != gen {
		c.mu.Unlock()
		return
	}
	delete(c.settle, id)
	c.mu.Unlock()

	c.RequestRefresh(id, ReasonSettle)
}
