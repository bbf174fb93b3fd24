package refresh

import (
	"sort"
	"time"
)

// RefreshState tracks one target's fetch bookkeeping.
type RefreshState struct {
	Target          TargetID
	InFlight        bool
	LastSucceededAt time.Time // zero until the first success
	RetryCount      int
	Failed          bool // retries exhausted, waiting for a manual re-trigger
	LastReason      Reason
	LastError       string
	LastErrorAt     time.Time
	ConsecutiveErrs int
	Dropped         int // requests ignored because one was in flight

	pendingTimer Timer
	retryGen     uint64
}

// stopPending cancels the scheduled retry. Callbacks of a timer that
// already fired see a newer retryGen and do nothing.
func (s *RefreshState) stopPending() {
	s.retryGen++
	if s.pendingTimer != nil {
		s.pendingTimer.Stop()
		s.pendingTimer = nil
	}
}

// DashboardSessionState is the controller-owned session state: the
// visible section and one RefreshState per referenced target.
type DashboardSessionState struct {
	Section   Section
	Visible   bool
	Paused    bool
	MountedAt time.Time

	states map[TargetID]*RefreshState
}

// NewDashboardSessionState creates the state for a freshly mounted view.
func NewDashboardSessionState(section Section, now time.Time) *DashboardSessionState {
	return &DashboardSessionState{
		Section:   section,
		Visible:   true,
		MountedAt: now,
		states:    make(map[TargetID]*RefreshState),
	}
}

// State returns the target's state, creating it on first reference.
func (s *DashboardSessionState) State(id TargetID) *RefreshState {
	st, ok := s.states[id]
	if !ok {
		st = &RefreshState{Target: id}
		s.states[id] = st
	}
	return st
}

// Reset clears a target's bookkeeping and cancels its pending timer. An
// in-flight request keeps its flag so ordering still holds.
func (s *DashboardSessionState) Reset(id TargetID) {
	st := s.State(id)
	st.stopPending()
	*st = RefreshState{Target: id, InFlight: st.InFlight, retryGen: st.retryGen}
}

// TargetStatus is a copy of a RefreshState safe to hand to other goroutines.
type TargetStatus struct {
	Target          TargetID  `json:"target"`
	InFlight        bool      `json:"in_flight"`
	LastSucceededAt time.Time `json:"last_succeeded_at,omitempty"`
	RetryCount      int       `json:"retry_count"`
	Failed          bool      `json:"failed"`
	RetryPending    bool      `json:"retry_pending"`
	LastReason      Reason    `json:"last_reason,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	LastErrorAt     time.Time `json:"last_error_at,omitempty"`
	ConsecutiveErrs int       `json:"consecutive_errors"`
	Dropped         int       `json:"dropped"`
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Section   Section        `json:"section"`
	Visible   bool           `json:"visible"`
	Paused    bool           `json:"paused"`
	MountedAt time.Time      `json:"mounted_at"`
	Targets   []TargetStatus `json:"targets"`
}

// Target returns the status for id, if it has been referenced.
func (s Snapshot) Target(id TargetID) (TargetStatus, bool) {
	for _, ts := range s.Targets {
		if ts.Target == id {
			return ts, true
		}
	}
	return TargetStatus{}, false
}

func (s *DashboardSessionState) snapshot() Snapshot {
	snap := Snapshot{
		Section:   s.Section,
		Visible:   s.Visible,
		Paused:    s.Paused,
		MountedAt: s.MountedAt,
		Targets:   make([]TargetStatus, 0, len(s.states)),
	}
	for _, st := range s.states {
		snap.Targets = append(snap.Targets, TargetStatus{
			Target:          st.Target,
			InFlight:        st.InFlight,
			LastSucceededAt: st.LastSucceededAt,
			RetryCount:      st.RetryCount,
			Failed:          st.Failed,
			RetryPending:    st.pendingTimer != nil,
			LastReason:      st.LastReason,
			LastError:       st.LastError,
			LastErrorAt:     st.LastErrorAt,
			ConsecutiveErrs: st.ConsecutiveErrs,
			Dropped:         st.Dropped,
		})
	}
	sort.Slice(snap.Targets, func(i, j int) bool { return snap.Targets[i].Target < snap.Targets[j].Target })
	return snap
}
