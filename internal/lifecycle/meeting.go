package lifecycle

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Meeting states. Kept as untyped constants for statekit.StateID conversion.
const (
	StateScheduled = "scheduled"
	StateCancelled = "cancelled"
	StateCompleted = "completed"
)

// Meeting events.
const (
	EventCancel   = "cancel"
	EventComplete = "complete"
)

// ErrTransitionNotAllowed is returned when an event does not apply to the current state.
var ErrTransitionNotAllowed = errors.New("lifecycle: transition not allowed")

// MeetingContext carries the meeting identity through the machine.
type MeetingContext struct {
	MeetingID string
}

// MeetingMachine tracks the lifecycle of a single meeting.
type MeetingMachine struct {
	interpreter *statekit.Interpreter[MeetingContext]
}

// NewMeetingMachine builds a machine positioned at the given state.
func NewMeetingMachine(meetingID, current string) (*MeetingMachine, error) {
	if !IsMeetingState(current) {
		return nil, fmt.Errorf("lifecycle: unknown meeting state %q", current)
	}

	builder := statekit.NewMachine[MeetingContext]("meeting-machine").
		WithInitial(statekit.StateID(current)).
		WithContext(MeetingContext{MeetingID: meetingID})

	builder.State(StateScheduled).
		On(EventCancel).Target(StateCancelled).
		On(EventComplete).Target(StateCompleted).
		Done()

	builder.State(StateCancelled).Done()
	builder.State(StateCompleted).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("lifecycle: build meeting machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &MeetingMachine{interpreter: interpreter}, nil
}

// Current returns the current state name.
func (m *MeetingMachine) Current() string {
	return string(m.interpreter.State().Value)
}

// Fire applies event and returns the resulting state.
func (m *MeetingMachine) Fire(event string) (string, error) {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Current()
	if before == after {
		return before, fmt.Errorf("%w: %s while %s", ErrTransitionNotAllowed, event, before)
	}
	return after, nil
}

// IsMeetingState reports whether state names a meeting state.
func IsMeetingState(state string) bool {
	switch state {
	case StateScheduled, StateCancelled, StateCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions leave state.
func IsTerminal(state string) bool {
	return state == StateCancelled || state == StateCompleted
}

// Transition is a convenience wrapper that builds a machine at current and fires event.
func Transition(meetingID, current, event string) (string, error) {
	machine, err := NewMeetingMachine(meetingID, current)
	if err != nil {
		return current, err
	}
	return machine.Fire(event)
}
