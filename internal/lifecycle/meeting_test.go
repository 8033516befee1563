package lifecycle

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		event   string
		want    string
		wantErr bool
	}{
		{name: "cancel scheduled", current: StateScheduled, event: EventCancel, want: StateCancelled},
		{name: "complete scheduled", current: StateScheduled, event: EventComplete, want: StateCompleted},
		{name: "cancel cancelled", current: StateCancelled, event: EventCancel, want: StateCancelled, wantErr: true},
		{name: "complete cancelled", current: StateCancelled, event: EventComplete, want: StateCancelled, wantErr: true},
		{name: "cancel completed", current: StateCompleted, event: EventCancel, want: StateCompleted, wantErr: true},
		{name: "unknown event", current: StateScheduled, event: "archive", want: StateScheduled, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Transition("meeting-1", tt.current, tt.event)
			if got != tt.want {
				t.Fatalf("state = %q, want %q", got, tt.want)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrTransitionNotAllowed) {
					t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewMeetingMachineRejectsUnknownState(t *testing.T) {
	t.Parallel()

	if _, err := NewMeetingMachine("meeting-1", "archived"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	if IsTerminal(StateScheduled) {
		t.Fatal("scheduled must not be terminal")
	}
	if !IsTerminal(StateCancelled) || !IsTerminal(StateCompleted) {
		t.Fatal("cancelled and completed must be terminal")
	}
}
