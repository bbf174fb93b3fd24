package refresh

import "fmt"

// TargetID names one independently refreshable collection.
type TargetID string

const (
	TargetUsers       TargetID = "users"
	TargetContainers  TargetID = "containers"
	TargetUserOptions TargetID = "user-options" // users without a container, for the create form
)

// Target describes a refreshable collection.
type Target struct {
	ID            TargetID
	Path          string
	SupportsForce bool
}

// DefaultTargets returns the registered targets.
func DefaultTargets() []Target {
	return []Target{
		{ID: TargetUsers, Path: "/users", SupportsForce: true},
		{ID: TargetContainers, Path: "/containers", SupportsForce: true},
		{ID: TargetUserOptions, Path: "/users", SupportsForce: true},
	}
}

// ParseTarget parses a target name.
func ParseTarget(s string) (TargetID, error) {
	switch TargetID(s) {
	case TargetUsers, TargetContainers, TargetUserOptions:
		return TargetID(s), nil
	}
	return "", fmt.Errorf("refresh: unknown target %q", s)
}

// Section identifies which part of the console is visible.
type Section string

const (
	SectionDashboard  Section = "dashboard"
	SectionUsers      Section = "users"
	SectionContainers Section = "containers"
)

// ParseSection parses a section name.
func ParseSection(s string) (Section, error) {
	switch Section(s) {
	case SectionDashboard, SectionUsers, SectionContainers:
		return Section(s), nil
	}
	return "", fmt.Errorf("refresh: unknown section %q", s)
}

// Targets returns the targets the interval timer refreshes for the section.
func (s Section) Targets() []TargetID {
	switch s {
	case SectionUsers:
		return []TargetID{TargetUsers}
	case SectionContainers:
		return []TargetID{TargetContainers}
	case SectionDashboard:
		return []TargetID{TargetUsers, TargetContainers}
	}
	return nil
}

// Reason records what triggered a refresh request.
type Reason string

const (
	ReasonInterval   Reason = "interval"
	ReasonSection    Reason = "section"
	ReasonVisibility Reason = "visibility"
	ReasonMutation   Reason = "mutation"
	ReasonSettle     Reason = "settle"
	ReasonManual     Reason = "manual"
	ReasonRetry      Reason = "retry"
)

// Forced reports whether requests for this reason bypass caches.
func (r Reason) Forced() bool {
	switch r {
	case ReasonInterval, ReasonSection:
		return false
	}
	return true
}
