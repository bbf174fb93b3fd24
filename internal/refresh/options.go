package refresh

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/connermo/ai4s/internal/apiclient"
	"github.com/connermo/ai4s/internal/model"
)

// LoadOptionsWithRetry loads the users that can receive a container,
// starting at the given attempt. Failed attempts are retried after
// RetryDelay*attempt until MaxRetries is reached, then the list enters a
// terminal failed state that RetryOptions leaves.
func (c *Controller) LoadOptionsWithRetry(attempt int) bool {
	reason := ReasonManual
	if attempt > 0 {
		reason = ReasonRetry
	}
	return c.loadOptions(attempt, reason)
}

// RetryOptions restarts the option list sequence at attempt 0.
func (c *Controller) RetryOptions() bool {
	return c.loadOptions(0, ReasonManual)
}

func (c *Controller) loadOptions(attempt int, reason Reason) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startOptionsLocked(attempt, reason)
}

// onOptionsRetry runs a scheduled retry unless the sequence it belongs to
// was cancelled or restarted after the timer fired.
func (c *Controller) onOptionsRetry(attempt int, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.session.State(TargetUserOptions)
	if st.retryGen != gen {
		return
	}
	st.pendingTimer = nil
	c.startOptionsLocked(attempt, ReasonRetry)
}

func (c *Controller) startOptionsLocked(attempt int, reason Reason) bool {
	if attempt < 0 {
		attempt = 0
	}
	if c.closed {
		return false
	}
	st := c.session.State(TargetUserOptions)
	if st.InFlight {
		st.Dropped++
		return false
	}
	st.stopPending()
	st.InFlight = true
	st.RetryCount = attempt
	st.Failed = false
	st.LastReason = reason
	c.wg.Add(1)
	go c.runOptions(attempt, reason)
	return true
}

func (c *Controller) runOptions(attempt int, reason Reason) {
	defer c.wg.Done()
	maxRetries := c.cfg.MaxRetries

	c.dispatch(Result{
		Target:  TargetUserOptions,
		Phase:   PhaseLoading,
		Reason:  reason,
		Forced:  true,
		Options: Options{Status: OptionsLoading, Attempt: attempt, MaxRetries: maxRetries},
		At:      c.clock.Now(),
	})

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.OptionsTimeout)
	users, err := c.src.ListUsers(ctx, model.FetchOpts{NoCache: true})
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
	cancel()
	if err != nil && timedOut && apiclient.KindOf(err) != apiclient.KindTimeout {
		err = &apiclient.TimeoutError{Op: "load user options", Err: err}
	}

	res := Result{Target: TargetUserOptions, Reason: reason, Forced: true, At: c.clock.Now()}
	next := 0

	c.mu.Lock()
	st := c.session.State(TargetUserOptions)
	switch {
	case err == nil:
		if users == nil {
			users = []model.User{}
		}
		res.Phase = PhaseDone
		res.Users = users
		res.Options = buildOptions(users, maxRetries)
		st.recordSuccess(res.At)
	case attempt < maxRetries:
		next = attempt + 1
		res.Phase = PhaseLoading
		res.Err = err
		res.Options = Options{Status: OptionsRetrying, Attempt: next, MaxRetries: maxRetries}
		st.RetryCount = next
		st.recordError(err, res.At)
	default:
		res.Phase = PhaseFailed
		res.Err = err
		res.Options = Options{Status: OptionsFailed, Attempt: attempt, MaxRetries: maxRetries}
		st.Failed = true
		st.recordError(err, res.At)
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("refresh: user options attempt %d/%d failed: %v", attempt, maxRetries, err)
	}
	c.dispatch(res)

	c.mu.Lock()
	st.InFlight = false
	if next > 0 && !c.closed {
		delay := c.cfg.RetryDelay * time.Duration(next)
		st.stopPending()
		gen := st.retryGen
		st.pendingTimer = c.clock.AfterFunc(delay, func() {
			c.onOptionsRetry(next, gen)
		})
	}
	c.mu.Unlock()
}
