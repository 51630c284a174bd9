package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTracker_InitiallyInactive(t *testing.T) {
	tracker := NewStateTracker([]int{8080})

	state := tracker.State()
	assert.False(t, state.Active)
	assert.True(t, state.LastCheck.IsZero())
}

func TestStateTracker_FirstActivation(t *testing.T) {
	tracker := NewStateTracker([]int{8080, 9090})

	event := tracker.Update(true)
	require.NotNil(t, event)
	assert.Equal(t, TransitionActivated, event.Direction)
	assert.Equal(t, []int{8080, 9090}, event.Ports)
	assert.False(t, event.Timestamp.IsZero())
}

func TestStateTracker_Idempotence(t *testing.T) {
	tracker := NewStateTracker([]int{8080})

	event := tracker.Update(true)
	require.NotNil(t, event)

	// Same state again produces nothing
	assert.Nil(t, tracker.Update(true))
	assert.Nil(t, tracker.Update(true))

	state := tracker.State()
	assert.True(t, state.Active)
	assert.Equal(t, 3, state.ConsecutiveActive)
	assert.Equal(t, 0, state.ConsecutiveIdle)
}

func TestStateTracker_IdleUpdatesAreSilent(t *testing.T) {
	tracker := NewStateTracker([]int{8080})

	assert.Nil(t, tracker.Update(false))
	assert.Nil(t, tracker.Update(false))

	state := tracker.State()
	assert.False(t, state.Active)
	assert.Equal(t, 2, state.ConsecutiveIdle)
	assert.False(t, state.LastCheck.IsZero())
}

func TestStateTracker_TransitionSymmetry(t *testing.T) {
	tracker := NewStateTracker([]int{8080})

	sequence := []bool{false, true, true, false}

	var events []*TransitionEvent
	for _, active := range sequence {
		if event := tracker.Update(active); event != nil {
			events = append(events, event)
		}
	}

	require.Len(t, events, 2)
	assert.Equal(t, TransitionActivated, events[0].Direction)
	assert.Equal(t, TransitionDeactivated, events[1].Direction)
}

func TestStateTracker_ConsecutiveCountsResetOnEdge(t *testing.T) {
	tracker := NewStateTracker([]int{8080})

	tracker.Update(false)
	tracker.Update(false)
	tracker.Update(true)

	state := tracker.State()
	assert.Equal(t, 1, state.ConsecutiveActive)
	assert.Equal(t, 0, state.ConsecutiveIdle)
}
