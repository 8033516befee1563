package application

import (
	"testing"
	"time"

	"github.com/example/hr-delegation/internal/schedule"
)

func TestResolveRecordStatus(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2024, time.June, 10, 18, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		status DelegationStatus
		now    time.Time
		want   schedule.Status
	}{
		{
			name:   "before deadline on the same day",
			status: StatusPending,
			now:    time.Date(2024, time.June, 10, 17, 0, 0, 0, time.UTC),
			want:   schedule.Status{Kind: schedule.KindStartingSoon, Label: schedule.LabelStartingSoon},
		},
		{
			name:   "exactly at the deadline",
			status: StatusInProgress,
			now:    deadline,
			want:   schedule.Status{Kind: schedule.KindLiveNow, Label: schedule.LabelLiveNow},
		},
		{
			name:   "after the deadline on the same day",
			status: StatusOverdue,
			now:    time.Date(2024, time.June, 10, 19, 0, 0, 0, time.UTC),
			want:   schedule.Status{Kind: schedule.KindToday, Label: schedule.LabelToday},
		},
		{
			name:   "day before",
			status: StatusPending,
			now:    time.Date(2024, time.June, 9, 12, 0, 0, 0, time.UTC),
			want:   schedule.Status{Kind: schedule.KindTomorrow, Label: schedule.LabelTomorrow},
		},
		{
			name:   "completed ignores time",
			status: StatusCompleted,
			now:    deadline,
			want:   schedule.Status{Kind: schedule.KindTerminal, Label: "completed"},
		},
		{
			name:   "far away",
			status: StatusPending,
			now:    time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
			want:   schedule.Status{Kind: schedule.KindDate, Label: "Jun 10"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			record := DelegationRecord{Deadline: deadline, Status: tc.status}
			if got := ResolveRecordStatus(record, tc.now); got != tc.want {
				t.Fatalf("ResolveRecordStatus() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestResolveRecordStatusReadsDeadlineInClockZone(t *testing.T) {
	t.Parallel()

	ist := time.FixedZone("IST", 5*60*60+30*60)
	// 18:00 IST as storage hands it back.
	record := DelegationRecord{Deadline: time.Date(2024, time.June, 10, 12, 30, 0, 0, time.UTC), Status: StatusPending}

	cases := []struct {
		now  time.Time
		want schedule.Kind
	}{
		{now: time.Date(2024, time.June, 10, 17, 0, 0, 0, ist), want: schedule.KindStartingSoon},
		{now: time.Date(2024, time.June, 10, 18, 0, 0, 0, ist), want: schedule.KindLiveNow},
		{now: time.Date(2024, time.June, 10, 18, 30, 0, 0, ist), want: schedule.KindToday},
		{now: time.Date(2024, time.June, 9, 23, 0, 0, 0, ist), want: schedule.KindTomorrow},
	}
	for _, tc := range cases {
		if got := ResolveRecordStatus(record, tc.now); got.Kind != tc.want {
			t.Fatalf("at %v: got %+v, want %s", tc.now, got, tc.want)
		}
	}
}

func TestResolveMeetingStatus(t *testing.T) {
	t.Parallel()

	window, err := schedule.ParseWindow("2024-06-10", "10:00", "11:00")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	meeting := Meeting{Schedule: window, Status: MeetingScheduled}

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{name: "inside window", now: time.Date(2024, time.June, 10, 10, 30, 0, 0, time.UTC), want: schedule.LabelLiveNow},
		{name: "before start", now: time.Date(2024, time.June, 10, 9, 30, 0, 0, time.UTC), want: schedule.LabelStartingSoon},
		{name: "next day falls through to date", now: time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC), want: "Jun 10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveMeetingStatus(meeting, tc.now); got.Label != tc.want {
				t.Fatalf("ResolveMeetingStatus() = %q, want %q", got.Label, tc.want)
			}
		})
	}

	cancelled := meeting
	cancelled.Status = MeetingCancelled
	if got := ResolveMeetingStatus(cancelled, time.Date(2024, time.June, 10, 10, 30, 0, 0, time.UTC)); got.Label != "cancelled" {
		t.Fatalf("expected terminal override, got %q", got.Label)
	}
}
