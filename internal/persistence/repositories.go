package persistence

import (
	"context"
	"time"
)

// DelegationFilter narrows record queries. Nil fields are ignored.
type DelegationFilter struct {
	AssignedTo *string
	ParentID   *string
	// DeadlineFrom and DeadlineTo bound the deadline as [from, to).
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Statuses     []string
}

// DelegationRepository stores delegation records.
type DelegationRepository interface {
	CreateRecord(ctx context.Context, record DelegationRecord) error
	UpdateRecord(ctx context.Context, record DelegationRecord) error
	GetRecord(ctx context.Context, id string) (DelegationRecord, error)
	ListRecords(ctx context.Context, filter DelegationFilter) ([]DelegationRecord, error)
	DeleteRecord(ctx context.Context, id string) error
}

// MeetingFilter narrows meeting queries.
type MeetingFilter struct {
	Date         *string
	DepartmentID *string
	Status       *string
}

// MeetingRepository stores meetings and their department sets.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) error
	UpdateMeeting(ctx context.Context, meeting Meeting) error
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// CalendarEventFilter narrows calendar queries. From and To are inclusive
// YYYY-MM-DD dates. Recurring events whose first date is on or before To are
// always returned so callers can expand them.
type CalendarEventFilter struct {
	From         *string
	To           *string
	DepartmentID *string
}

// CalendarEventRepository stores calendar entries.
type CalendarEventRepository interface {
	CreateEvent(ctx context.Context, event CalendarEvent) error
	GetEvent(ctx context.Context, id string) (CalendarEvent, error)
	ListEvents(ctx context.Context, filter CalendarEventFilter) ([]CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// DepartmentRepository stores department metadata.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department Department) error
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

// PersonRepository stores members of the hierarchy.
type PersonRepository interface {
	CreatePerson(ctx context.Context, person Person) error
	GetPerson(ctx context.Context, id string) (Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
}
