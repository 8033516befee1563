package application

import (
	"time"

	"github.com/example/hr-delegation/internal/schedule"
)

// ResolveRecordStatus derives the presentation status of a record from its
// deadline, treated as a zero-width window. The deadline is read as wall-clock
// time in now's location, whatever zone storage returned it in.
func ResolveRecordStatus(record DelegationRecord, now time.Time) schedule.Status {
	return schedule.Resolve(schedule.DeadlineWindow(record.Deadline.In(now.Location())), record.Status, now)
}

// ResolveMeetingStatus derives the presentation status of a meeting from its window.
func ResolveMeetingStatus(meeting Meeting, now time.Time) schedule.Status {
	return schedule.Resolve(meeting.Schedule, meeting.Status, now)
}
