package monitoring

import (
	"time"
)

// TransitionDirection is the edge of an activity state change
type TransitionDirection string

const (
	TransitionActivated   TransitionDirection = "activated"
	TransitionDeactivated TransitionDirection = "deactivated"
)

// TransitionEvent is emitted once per activity edge and consumed immediately
// by the notifier.
type TransitionEvent struct {
	Direction TransitionDirection
	Timestamp time.Time
	Ports     []int
}

// ActivityState is the single piece of state carried across poll cycles.
// It lives for the process lifetime and is never persisted.
type ActivityState struct {
	Active            bool
	LastCheck         time.Time
	ConsecutiveActive int
	ConsecutiveIdle   int
}

// StateTracker compares each cycle's classification against the previous one
// and reports edge transitions. It is not goroutine safe, the single polling
// loop is its only caller.
type StateTracker struct {
	state       ActivityState
	targetPorts []int
}

// NewStateTracker starts in the inactive state
func NewStateTracker(targetPorts []int) *StateTracker {
	return &StateTracker{
		targetPorts: targetPorts,
	}
}

// Update records the new classification and returns a transition event only
// when the state changed. Repeated identical states produce nothing, which
// keeps the webhook quiet between edges.
func (t *StateTracker) Update(active bool) *TransitionEvent {
	now := time.Now()
	t.state.LastCheck = now

	if active {
		t.state.ConsecutiveActive++
		t.state.ConsecutiveIdle = 0
	} else {
		t.state.ConsecutiveIdle++
		t.state.ConsecutiveActive = 0
	}

	if active == t.state.Active {
		return nil
	}
	t.state.Active = active

	direction := TransitionDeactivated
	if active {
		direction = TransitionActivated
	}

	return &TransitionEvent{
		Direction: direction,
		Timestamp: now.UTC(),
		Ports:     t.targetPorts,
	}
}

// State returns a copy of the current activity state
func (t *StateTracker) State() ActivityState {
	return t.state
}
