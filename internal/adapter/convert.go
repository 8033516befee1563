package adapter

import (
	"fmt"
	"slices"

	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/persistence"
	"github.com/example/hr-delegation/internal/schedule"
)

func toPersistenceRecord(record application.DelegationRecord) persistence.DelegationRecord {
	model := persistence.DelegationRecord{
		ID:          record.ID,
		ParentID:    cloneString(record.ParentID),
		Title:       record.Title,
		Description: record.Description,
		Highlights:  slices.Clone(record.Highlights),
		AssignedTo:  record.AssignedTo,
		Deadline:    record.Deadline.UTC(),
		Priority:    string(record.Priority),
		Status:      string(record.Status),
		Progress:    record.Progress,
		CreatedAt:   record.CreatedAt.UTC(),
		UpdatedAt:   record.UpdatedAt.UTC(),
	}
	if record.Response != nil {
		model.Response = &persistence.Response{
			SubmittedAt:          record.Response.SubmittedAt.UTC(),
			WorkStatus:           string(record.Response.WorkStatus),
			Description:          record.Response.Description,
			CompletionPercentage: record.Response.CompletionPercentage,
		}
	}
	return model
}

func toApplicationRecord(model persistence.DelegationRecord) application.DelegationRecord {
	record := application.DelegationRecord{
		ID:          model.ID,
		ParentID:    cloneString(model.ParentID),
		Title:       model.Title,
		Description: model.Description,
		Highlights:  slices.Clone(model.Highlights),
		AssignedTo:  model.AssignedTo,
		Deadline:    model.Deadline,
		Priority:    application.Priority(model.Priority),
		Status:      application.DelegationStatus(model.Status),
		Progress:    model.Progress,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if record.Highlights == nil {
		record.Highlights = []string{}
	}
	if model.Response != nil {
		record.Response = &application.Response{
			SubmittedAt:          model.Response.SubmittedAt,
			WorkStatus:           application.WorkStatus(model.Response.WorkStatus),
			Description:          model.Response.Description,
			CompletionPercentage: model.Response.CompletionPercentage,
		}
	}
	return record
}

func toPersistenceDelegationFilter(filter application.DelegationRepositoryFilter) persistence.DelegationFilter {
	model := persistence.DelegationFilter{
		AssignedTo:   cloneString(filter.AssignedTo),
		ParentID:     cloneString(filter.ParentID),
		DeadlineFrom: filter.DeadlineFrom,
		DeadlineTo:   filter.DeadlineTo,
	}
	for _, status := range filter.Statuses {
		model.Statuses = append(model.Statuses, string(status))
	}
	return model
}

func toPersistenceMeeting(meeting application.Meeting) persistence.Meeting {
	model := persistence.Meeting{
		ID:           meeting.ID,
		Title:        meeting.Title,
		Description:  meeting.Description,
		Agenda:       meeting.Agenda,
		Date:         meeting.Schedule.Date.String(),
		StartSeconds: int(meeting.Schedule.Start),
		EndSeconds:   int(meeting.Schedule.End),
		Platform:     meeting.Platform,
		MeetingLink:  cloneString(meeting.MeetingLink),
		Location:     cloneString(meeting.Location),
		MeetingType:  meeting.MeetingType,
		Priority:     string(meeting.Priority),
		Status:       string(meeting.Status),
		CreatedAt:    meeting.CreatedAt.UTC(),
		UpdatedAt:    meeting.UpdatedAt.UTC(),
	}
	for _, dept := range meeting.Departments {
		model.Departments = append(model.Departments, persistence.MeetingDepartment{DepartmentID: dept.DepartmentID, Role: dept.Role})
	}
	return model
}

func toApplicationMeeting(model persistence.Meeting) (application.Meeting, error) {
	date, err := schedule.ParseDate(model.Date)
	if err != nil {
		return application.Meeting{}, fmt.Errorf("adapter: meeting %s: %w", model.ID, err)
	}
	meeting := application.Meeting{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Agenda:      model.Agenda,
		Schedule: schedule.Window{
			Date:  date,
			Start: schedule.ClockTime(model.StartSeconds),
			End:   schedule.ClockTime(model.EndSeconds),
		},
		Platform:    model.Platform,
		MeetingLink: cloneString(model.MeetingLink),
		Location:    cloneString(model.Location),
		Departments: make([]application.MeetingDepartment, 0, len(model.Departments)),
		MeetingType: model.MeetingType,
		Priority:    application.Priority(model.Priority),
		Status:      application.MeetingStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	for _, dept := range model.Departments {
		meeting.Departments = append(meeting.Departments, application.MeetingDepartment{DepartmentID: dept.DepartmentID, Role: dept.Role})
	}
	return meeting, nil
}

func toPersistenceMeetingFilter(filter application.MeetingFilter) persistence.MeetingFilter {
	model := persistence.MeetingFilter{DepartmentID: cloneString(filter.DepartmentID)}
	if filter.Date != nil {
		date := filter.Date.String()
		model.Date = &date
	}
	if filter.Status != nil {
		status := string(*filter.Status)
		model.Status = &status
	}
	return model
}

func toPersistenceEvent(event application.CalendarEvent) persistence.CalendarEvent {
	return persistence.CalendarEvent{
		ID:             event.ID,
		Date:           event.Date.String(),
		Departments:    slices.Clone(event.Departments),
		StatusKind:     string(event.StatusKind),
		StartSeconds:   clockSeconds(event.Start),
		EndSeconds:     clockSeconds(event.End),
		Title:          event.Title,
		Description:    event.Description,
		RecurrenceRule: cloneString(event.RecurrenceRule),
		CreatedAt:      event.CreatedAt.UTC(),
		UpdatedAt:      event.UpdatedAt.UTC(),
	}
}

func toApplicationEvent(model persistence.CalendarEvent) (application.CalendarEvent, error) {
	date, err := schedule.ParseDate(model.Date)
	if err != nil {
		return application.CalendarEvent{}, fmt.Errorf("adapter: calendar event %s: %w", model.ID, err)
	}
	departments := slices.Clone(model.Departments)
	if departments == nil {
		departments = []string{}
	}
	return application.CalendarEvent{
		ID:             model.ID,
		Date:           date,
		Departments:    departments,
		StatusKind:     schedule.DayStatus(model.StatusKind),
		Start:          secondsClock(model.StartSeconds),
		End:            secondsClock(model.EndSeconds),
		Title:          model.Title,
		Description:    model.Description,
		RecurrenceRule: cloneString(model.RecurrenceRule),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}, nil
}

func toPersistenceEventFilter(filter application.CalendarEventFilter) persistence.CalendarEventFilter {
	model := persistence.CalendarEventFilter{DepartmentID: cloneString(filter.DepartmentID)}
	if filter.From != nil {
		from := filter.From.String()
		model.From = &from
	}
	if filter.To != nil {
		to := filter.To.String()
		model.To = &to
	}
	return model
}

func toPersistenceDepartment(department application.Department) persistence.Department {
	return persistence.Department{
		ID:          department.ID,
		Name:        department.Name,
		Code:        department.Code,
		Description: department.Description,
		CreatedAt:   department.CreatedAt.UTC(),
		UpdatedAt:   department.UpdatedAt.UTC(),
	}
}

func toApplicationDepartment(model persistence.Department) application.Department {
	return application.Department{
		ID:          model.ID,
		Name:        model.Name,
		Code:        model.Code,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistencePerson(person application.Person) persistence.Person {
	return persistence.Person{
		ID:           person.ID,
		Name:         person.Name,
		Email:        person.Email,
		Role:         string(person.Role),
		DepartmentID: cloneString(person.DepartmentID),
		CreatedAt:    person.CreatedAt.UTC(),
		UpdatedAt:    person.UpdatedAt.UTC(),
	}
}

func toApplicationPerson(model persistence.Person) application.Person {
	return application.Person{
		ID:           model.ID,
		Name:         model.Name,
		Email:        model.Email,
		Role:         application.Role(model.Role),
		DepartmentID: cloneString(model.DepartmentID),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func clockSeconds(clock *schedule.ClockTime) *int {
	if clock == nil {
		return nil
	}
	v := int(*clock)
	return &v
}

func secondsClock(seconds *int) *schedule.ClockTime {
	if seconds == nil {
		return nil
	}
	v := schedule.ClockTime(*seconds)
	return &v
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
