package domain

import "slices"

// Event is a repository event that can trigger a workflow.
type Event string

const (
	// EventPush triggers on a branch push.
	EventPush Event = "push"
	// EventPullRequest triggers on a pull request targeting a branch.
	EventPullRequest Event = "pull_request"
)

// KnownEvent reports whether e is an event the runner understands.
func KnownEvent(e Event) bool {
	return e == EventPush || e == EventPullRequest
}

// Trigger restricts a workflow to an event, optionally filtered to a set of
// branches. An empty branch list matches every branch.
type Trigger struct {
	Event    Event
	Branches []string
}

// Matches reports whether the trigger fires for the given event and branch.
func (t Trigger) Matches(event Event, branch string) bool {
	if t.Event != event {
		return false
	}
	if len(t.Branches) == 0 {
		return true
	}
	return slices.Contains(t.Branches, branch)
}
