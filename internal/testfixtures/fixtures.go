package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/schedule"
)

var (
	recordCounter     uint64
	meetingCounter    uint64
	eventCounter      uint64
	departmentCounter uint64
	personCounter     uint64
)

// referenceTime is a Monday morning so "today", "tomorrow" and weekday rules
// have room on both sides.
var referenceTime = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the baseline instant used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate is the calendar date of ReferenceTime.
func ReferenceDate() schedule.Date {
	return schedule.DateOf(referenceTime)
}

// ----------------------------- Delegation records -----------------------------

// RecordOption adjusts a generated record.
type RecordOption func(*application.DelegationRecord)

// NewRecord returns a pending root record due one day after ReferenceTime.
func NewRecord(opts ...RecordOption) application.DelegationRecord {
	idx := atomic.AddUint64(&recordCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Minute)
	record := application.DelegationRecord{
		ID:          fmt.Sprintf("rec-%03d", idx),
		Title:       fmt.Sprintf("Task %03d", idx),
		Description: "Prepare and submit the requested material",
		Highlights:  []string{},
		AssignedTo:  "person-hr",
		Deadline:    referenceTime.Add(24 * time.Hour),
		Priority:    application.PriorityMedium,
		Status:      application.StatusPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

func WithRecordID(id string) RecordOption {
	return func(r *application.DelegationRecord) { r.ID = id }
}

// WithParent marks the record as forwarded from parentID.
func WithParent(parentID string) RecordOption {
	return func(r *application.DelegationRecord) {
		parent := parentID
		r.ParentID = &parent
	}
}

func WithAssignee(personID string) RecordOption {
	return func(r *application.DelegationRecord) { r.AssignedTo = personID }
}

func WithDeadline(deadline time.Time) RecordOption {
	return func(r *application.DelegationRecord) { r.Deadline = deadline }
}

func WithRecordStatus(status application.DelegationStatus) RecordOption {
	return func(r *application.DelegationRecord) { r.Status = status }
}

func WithRecordPriority(priority application.Priority) RecordOption {
	return func(r *application.DelegationRecord) { r.Priority = priority }
}

func WithProgress(progress int) RecordOption {
	return func(r *application.DelegationRecord) { r.Progress = progress }
}

func WithHighlights(highlights ...string) RecordOption {
	return func(r *application.DelegationRecord) { r.Highlights = highlights }
}

// WithResponse attaches an assignee report submitted at ReferenceTime.
func WithResponse(status application.WorkStatus, completion int, description string) RecordOption {
	return func(r *application.DelegationRecord) {
		r.Response = &application.Response{
			SubmittedAt:          referenceTime,
			WorkStatus:           status,
			Description:          description,
			CompletionPercentage: completion,
		}
	}
}

// RecordInput projects the record onto the caller facing create payload.
func RecordInput(record application.DelegationRecord) application.DelegationInput {
	return application.DelegationInput{
		Title:       record.Title,
		Description: record.Description,
		Highlights:  record.Highlights,
		AssignedTo:  record.AssignedTo,
		Deadline:    record.Deadline,
		Priority:    record.Priority,
	}
}

// ---------------------------------- Meetings ----------------------------------

// MeetingOption adjusts a generated meeting.
type MeetingOption func(*application.Meeting)

// NewMeeting returns a scheduled online meeting from 10:00 to 11:00 on ReferenceDate.
func NewMeeting(opts ...MeetingOption) application.Meeting {
	idx := atomic.AddUint64(&meetingCounter, 1)
	link := fmt.Sprintf("https://meet.example.com/m-%03d", idx)
	meeting := application.Meeting{
		ID:          fmt.Sprintf("meeting-%03d", idx),
		Title:       fmt.Sprintf("Meeting %03d", idx),
		Schedule:    MustWindow(ReferenceDate().String(), "10:00", "11:00"),
		Platform:    "zoom",
		MeetingLink: &link,
		Departments: []application.MeetingDepartment{},
		MeetingType: "sync",
		Priority:    application.PriorityMedium,
		Status:      application.MeetingScheduled,
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&meeting)
	}
	return meeting
}

func WithMeetingID(id string) MeetingOption {
	return func(m *application.Meeting) { m.ID = id }
}

// WithWindow replaces the schedule; it panics on malformed input.
func WithWindow(date, start, end string) MeetingOption {
	return func(m *application.Meeting) { m.Schedule = MustWindow(date, start, end) }
}

func WithMeetingStatus(status application.MeetingStatus) MeetingOption {
	return func(m *application.Meeting) { m.Status = status }
}

// WithDepartments invites each id with an empty role.
func WithDepartments(ids ...string) MeetingOption {
	return func(m *application.Meeting) {
		m.Departments = make([]application.MeetingDepartment, 0, len(ids))
		for _, id := range ids {
			m.Departments = append(m.Departments, application.MeetingDepartment{DepartmentID: id})
		}
	}
}

// InPerson switches the meeting to a physical location.
func InPerson(location string) MeetingOption {
	return func(m *application.Meeting) {
		loc := location
		m.Platform = application.PlatformInPerson
		m.Location = &loc
		m.MeetingLink = nil
	}
}

// MeetingInput projects a meeting onto the create payload.
func MeetingInput(meeting application.Meeting) application.MeetingInput {
	input := application.MeetingInput{
		Title:       meeting.Title,
		Description: meeting.Description,
		Agenda:      meeting.Agenda,
		Schedule: application.ScheduleInput{
			Date:      meeting.Schedule.Date.String(),
			StartTime: meeting.Schedule.Start.String(),
			EndTime:   meeting.Schedule.End.String(),
		},
		Platform:    meeting.Platform,
		Departments: meeting.Departments,
		MeetingType: meeting.MeetingType,
		Priority:    meeting.Priority,
	}
	if meeting.MeetingLink != nil {
		input.MeetingLink = *meeting.MeetingLink
	}
	if meeting.Location != nil {
		input.Location = *meeting.Location
	}
	return input
}

// MustWindow parses a window or panics.
func MustWindow(date, start, end string) schedule.Window {
	w, err := schedule.ParseWindow(date, start, end)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: invalid window %s %s-%s: %v", date, start, end, err))
	}
	return w
}

// ------------------------------- Calendar events -------------------------------

// EventOption adjusts a generated calendar event.
type EventOption func(*application.CalendarEvent)

// NewEvent returns an organization wide full day holiday on ReferenceDate.
func NewEvent(opts ...EventOption) application.CalendarEvent {
	idx := atomic.AddUint64(&eventCounter, 1)
	event := application.CalendarEvent{
		ID:          fmt.Sprintf("event-%03d", idx),
		Date:        ReferenceDate(),
		Departments: []string{},
		StatusKind:  schedule.FullDayHoliday,
		Title:       fmt.Sprintf("Holiday %03d", idx),
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

func WithEventDate(date schedule.Date) EventOption {
	return func(e *application.CalendarEvent) { e.Date = date }
}

func WithStatusKind(kind schedule.DayStatus) EventOption {
	return func(e *application.CalendarEvent) { e.StatusKind = kind }
}

func ForDepartments(ids ...string) EventOption {
	return func(e *application.CalendarEvent) { e.Departments = ids }
}

func WithRecurrence(rule string) EventOption {
	return func(e *application.CalendarEvent) {
		r := rule
		e.RecurrenceRule = &r
	}
}

// ---------------------------------- Directory ----------------------------------

// NewDepartment returns a department with a generated code.
func NewDepartment(name string) application.Department {
	idx := atomic.AddUint64(&departmentCounter, 1)
	return application.Department{
		ID:        fmt.Sprintf("dept-%03d", idx),
		Name:      name,
		Code:      fmt.Sprintf("D%03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

// NewPerson returns a person with the given role and no department.
func NewPerson(name string, role application.Role) application.Person {
	idx := atomic.AddUint64(&personCounter, 1)
	return application.Person{
		ID:        fmt.Sprintf("person-%03d", idx),
		Name:      name,
		Email:     fmt.Sprintf("person-%03d@example.com", idx),
		Role:      role,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}
