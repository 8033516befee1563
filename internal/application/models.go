package application

import (
	"time"

	"github.com/example/hr-delegation/internal/schedule"
)

// DelegationStatus is the stored lifecycle of a delegation record.
type DelegationStatus string

const (
	StatusPending    DelegationStatus = "pending"
	StatusInProgress DelegationStatus = "in-progress"
	StatusCompleted  DelegationStatus = "completed"
	StatusOverdue    DelegationStatus = "overdue"
	StatusCancelled  DelegationStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s DelegationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Terminal implements schedule.Lifecycle. Completed and cancelled records
// override time based presentation.
func (s DelegationStatus) Terminal() (string, bool) {
	if s == StatusCompleted || s == StatusCancelled {
		return string(s), true
	}
	return "", false
}

// Priority ranks records and meetings.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// WorkStatus is the assignee's self-reported state inside a Response.
type WorkStatus string

const (
	WorkPending    WorkStatus = "pending"
	WorkInProgress WorkStatus = "in-progress"
	WorkCompleted  WorkStatus = "completed"
)

// Valid reports whether w is a known work status.
func (w WorkStatus) Valid() bool {
	return w == WorkPending || w == WorkInProgress || w == WorkCompleted
}

// Role is a level of the fixed delegation hierarchy.
type Role string

const (
	RoleCEO           Role = "ceo"
	RoleHR            Role = "hr"
	RoleTeamLeader    Role = "team_leader"
	RoleSalesEmployee Role = "sales_employee"
)

// Rank orders roles from the top of the hierarchy (4) to the bottom (1).
// Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleCEO:
		return 4
	case RoleHR:
		return 3
	case RoleTeamLeader:
		return 2
	case RoleSalesEmployee:
		return 1
	}
	return 0
}

// Valid reports whether r is one of the hierarchy roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// DelegationRecord is a task-like unit of work that can be forwarded down the hierarchy.
type DelegationRecord struct {
	ID          string
	ParentID    *string
	Title       string
	Description string
	Highlights  []string
	AssignedTo  string
	Deadline    time.Time
	Priority    Priority
	Status      DelegationStatus
	Progress    int
	Response    *Response
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Response is the assignee's structured report against a record.
type Response struct {
	SubmittedAt          time.Time
	WorkStatus           WorkStatus
	Description          string
	CompletionPercentage int
}

// DelegationInput captures caller provided fields for create, forward and update.
// A nil Highlights slice is treated as the single empty placeholder.
type DelegationInput struct {
	Title       string
	Description string
	Highlights  []string
	AssignedTo  string
	Deadline    time.Time
	Priority    Priority
}

// RecordPatch is an in-place edit of status, progress or priority. Nil fields are left unchanged.
type RecordPatch struct {
	Status   *DelegationStatus
	Progress *int
	Priority *Priority
}

// IsEmpty reports whether the patch changes nothing.
func (p RecordPatch) IsEmpty() bool {
	return p.Status == nil && p.Progress == nil && p.Priority == nil
}

// ResponseInput is the payload of AttachResponse. A nil SubmittedAt is filled from the clock.
type ResponseInput struct {
	SubmittedAt          *time.Time
	WorkStatus           WorkStatus
	Description          string
	CompletionPercentage int
}

// RecordFilter narrows record listings.
type RecordFilter struct {
	AssignedTo *string
	ParentID   *string
	DeadlineOn *schedule.Date
	Status     *DelegationStatus
}

// DelegationRepositoryFilter is the storage level query derived from a RecordFilter.
type DelegationRepositoryFilter struct {
	AssignedTo   *string
	ParentID     *string
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Statuses     []DelegationStatus
}

// MeetingStatus is the stored lifecycle of a meeting.
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingCancelled MeetingStatus = "cancelled"
	MeetingCompleted MeetingStatus = "completed"
)

// Valid reports whether s is a known meeting status.
func (s MeetingStatus) Valid() bool {
	return s == MeetingScheduled || s == MeetingCancelled || s == MeetingCompleted
}

// Terminal implements schedule.Lifecycle.
func (s MeetingStatus) Terminal() (string, bool) {
	if s == MeetingCancelled || s == MeetingCompleted {
		return string(s), true
	}
	return "", false
}

// PlatformInPerson is the platform value that requires a physical location.
const PlatformInPerson = "in-person"

// Meeting is a scheduled gathering of one or more departments.
type Meeting struct {
	ID          string
	Title       string
	Description string
	Agenda      string
	Schedule    schedule.Window
	Platform    string
	MeetingLink *string
	Location    *string
	Departments []MeetingDepartment
	MeetingType string
	Priority    Priority
	Status      MeetingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MeetingDepartment is one member of a meeting's department set.
type MeetingDepartment struct {
	DepartmentID string
	Role         string
}

// ScheduleInput carries the wire form of a schedule window.
type ScheduleInput struct {
	Date      string
	StartTime string
	EndTime   string
}

// MeetingInput captures caller provided meeting fields.
type MeetingInput struct {
	Title       string
	Description string
	Agenda      string
	Schedule    ScheduleInput
	Platform    string
	MeetingLink string
	Location    string
	Departments []MeetingDepartment
	MeetingType string
	Priority    Priority
}

// MeetingFilter narrows meeting listings.
type MeetingFilter struct {
	Date         *schedule.Date
	DepartmentID *string
	Status       *MeetingStatus
}

// ConflictWarning describes another scheduled meeting that overlaps and shares a department.
type ConflictWarning struct {
	MeetingID    string
	Type         string
	DepartmentID string
}

// CalendarEvent is a holiday or attendance entry.
type CalendarEvent struct {
	ID             string
	Date           schedule.Date
	Departments    []string
	StatusKind     schedule.DayStatus
	Start          *schedule.ClockTime
	End            *schedule.ClockTime
	Title          string
	Description    string
	RecurrenceRule *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CalendarEventInput captures caller provided calendar entry fields.
type CalendarEventInput struct {
	Date           string
	Departments    []string
	StatusKind     string
	StartTime      string
	EndTime        string
	Title          string
	Description    string
	RecurrenceRule string
}

// CalendarEventFilter narrows calendar listings. From and To are inclusive.
type CalendarEventFilter struct {
	From         *schedule.Date
	To           *schedule.Date
	DepartmentID *string
}

// CalendarDay is the resolved display status of one date.
type CalendarDay struct {
	Date        schedule.Date
	Status      schedule.DayStatus
	Departments []string
	Assigned    bool
	EventIDs    []string
}

// Department is organization metadata.
type Department struct {
	ID          string
	Name        string
	Code        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DepartmentInput captures caller provided department fields.
type DepartmentInput struct {
	Name        string
	Code        string
	Description string
}

// Person is an assignable member of the hierarchy.
type Person struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PersonInput captures caller provided person fields.
type PersonInput struct {
	Name         string
	Email        string
	Role         Role
	DepartmentID string
}
