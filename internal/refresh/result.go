package refresh

import (
	"fmt"
	"time"

	"github.com/connermo/ai4s/internal/model"
)

// Phase is the stage of a fetch a Result reports.
type Phase int

const (
	PhaseLoading Phase = iota // request issued, previous data still shown
	PhaseDone                 // payload decoded
	PhaseFailed               // request failed; Err is set
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Result is handed to the render callback for every state change of a target.
type Result struct {
	Target     TargetID
	Phase      Phase
	Reason     Reason
	Forced     bool
	Users      []model.User
	Containers []model.Container
	Options    Options // set for TargetUserOptions only
	Err        error
	At         time.Time
}

// OptionsStatus describes the state of the available-users option list.
type OptionsStatus int

const (
	OptionsLoading     OptionsStatus = iota
	OptionsRetrying                  // an attempt failed and another is scheduled
	OptionsReady                     // at least one selectable user
	OptionsAllAssigned               // users exist but all have a container
	OptionsNoUsers                   // the API returned no users at all
	OptionsFailed                    // retries exhausted
)

// Options is the render state of the dependent user option list.
type Options struct {
	Status     OptionsStatus
	Attempt    int
	MaxRetries int
	Users      []model.User
}

// Placeholder returns the text shown in place of options, or "" when
// selectable users are available.
func (o Options) Placeholder() string {
	switch o.Status {
	case OptionsLoading:
		if o.Attempt > 0 {
			return fmt.Sprintf("Retrying (%d/%d)...", o.Attempt, o.MaxRetries)
		}
		return "Loading users..."
	case OptionsRetrying:
		return fmt.Sprintf("Retrying (%d/%d)...", o.Attempt, o.MaxRetries)
	case OptionsAllAssigned:
		return "No available users (all users already have a container)"
	case OptionsNoUsers:
		return "No users yet, create one first"
	case OptionsFailed:
		return "Failed to load users, select to retry"
	}
	return ""
}

// Selectable reports whether the list holds users that can be picked.
func (o Options) Selectable() bool {
	return o.Status == OptionsReady && len(o.Users) > 0
}

// availableUsers keeps users that can receive a new container. Rows
// without an ID cannot be addressed by the API and are dropped.
func availableUsers(users []model.User) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.ID <= 0 || u.HasContainer() {
			continue
		}
		out = append(out, u)
	}
	return out
}

func buildOptions(users []model.User, maxRetries int) Options {
	known := 0
	for _, u := range users {
		if u.ID > 0 {
			known++
		}
	}
	if known == 0 {
		return Options{Status: OptionsNoUsers, MaxRetries: maxRetries, Users: []model.User{}}
	}
	avail := availableUsers(users)
	if len(avail) == 0 {
		return Options{Status: OptionsAllAssigned, MaxRetries: maxRetries, Users: avail}
	}
	return Options{Status: OptionsReady, MaxRetries: maxRetries, Users: avail}
}
