package persistence

import "time"

// DelegationRecord is a stored task-like work item.
type DelegationRecord struct {
	ID          string
	ParentID    *string
	Title       string
	Description string
	Highlights  []string
	AssignedTo  string
	Deadline    time.Time
	Priority    string
	Status      string
	Progress    int
	Response    *Response
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Response is the assignee report attached to a record.
type Response struct {
	SubmittedAt          time.Time
	WorkStatus           string
	Description          string
	CompletionPercentage int
}

// Meeting is a stored meeting. The schedule is kept as a date plus
// seconds-since-midnight bounds.
type Meeting struct {
	ID           string
	Title        string
	Description  string
	Agenda       string
	Date         string
	StartSeconds int
	EndSeconds   int
	Platform     string
	MeetingLink  *string
	Location     *string
	Departments  []MeetingDepartment
	MeetingType  string
	Priority     string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MeetingDepartment is a department invited to a meeting.
type MeetingDepartment struct {
	DepartmentID string
	Role         string
}

// CalendarEvent is a holiday or attendance entry.
type CalendarEvent struct {
	ID             string
	Date           string
	Departments    []string
	StatusKind     string
	StartSeconds   *int
	EndSeconds     *int
	Title          string
	Description    string
	RecurrenceRule *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
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

// Person is an assignable member of the hierarchy.
type Person struct {
	ID           string
	Name         string
	Email        string
	Role         string
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
