package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/example/hr-delegation/internal/lifecycle"
	"github.com/example/hr-delegation/internal/schedule"
	"github.com/example/hr-delegation/internal/scheduler"
)

// MeetingRepository captures the persistence operations needed by the meeting service.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	UpdateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// DepartmentCatalog exposes department lookup operations.
type DepartmentCatalog interface {
	DepartmentExists(ctx context.Context, id string) (bool, error)
}

// MeetingService orchestrates validation, lifecycle and persistence for meetings.
type MeetingService struct {
	meetings    MeetingRepository
	departments DepartmentCatalog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMeetingService wires dependencies for meeting operations.
func NewMeetingService(meetings MeetingRepository, departments DepartmentCatalog, idGenerator func() string, now func() time.Time) *MeetingService {
	return NewMeetingServiceWithLogger(meetings, departments, idGenerator, now, nil)
}

// NewMeetingServiceWithLogger wires dependencies with a specified logger.
func NewMeetingServiceWithLogger(meetings MeetingRepository, departments DepartmentCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MeetingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MeetingService{
		meetings:    meetings,
		departments: departments,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *MeetingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MeetingService", operation, attrs...)
}

// Now returns the service clock reading used for presentation status.
func (s *MeetingService) Now() time.Time {
	return s.now()
}

// CreateMeeting validates input, persists a scheduled meeting and reports overlapping
// meetings that share a department. Warnings never block the write.
func (s *MeetingService) CreateMeeting(ctx context.Context, input MeetingInput) (meeting Meeting, warnings []ConflictWarning, err error) {
	if s == nil || s.meetings == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateMeeting", "department_count", len(input.Departments))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("meeting_id", meeting.ID).InfoContext(ctx, "meeting created", "warnings", len(warnings))
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Priority != "" && !input.Priority.Valid() {
		vErr.add("priority", "must be one of low, medium, high")
	}
	validatePlatform(input, vErr)
	departments := normalizeDepartments(input.Departments, vErr)

	window, scheduleErr := parseScheduleInput(input.Schedule, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if scheduleErr != nil {
		err = scheduleErr
		return
	}
	if err = s.ensureDepartmentsExist(ctx, departments); err != nil {
		return
	}

	now := s.now()
	candidate := Meeting{
		ID:          s.idGenerator(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Agenda:      input.Agenda,
		Schedule:    window,
		Platform:    strings.TrimSpace(input.Platform),
		Departments: departments,
		MeetingType: strings.TrimSpace(input.MeetingType),
		Priority:    priorityOrDefault(input.Priority),
		Status:      MeetingScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if candidate.Platform == PlatformInPerson {
		location := strings.TrimSpace(input.Location)
		candidate.Location = &location
	} else {
		link := strings.TrimSpace(input.MeetingLink)
		candidate.MeetingLink = &link
	}

	warnings, err = s.detectConflicts(ctx, candidate)
	if err != nil {
		return
	}

	meeting, err = s.meetings.CreateMeeting(ctx, candidate)
	if err != nil {
		err = mapRepoError(err)
		warnings = nil
	}
	return
}

// Reschedule moves a scheduled meeting to a new window.
func (s *MeetingService) Reschedule(ctx context.Context, id string, input ScheduleInput) (meeting Meeting, warnings []ConflictWarning, err error) {
	if s == nil || s.meetings == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Reschedule", "meeting_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reschedule meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting rescheduled", "date", meeting.Schedule.Date.String(), "warnings", len(warnings))
	}()

	vErr := &ValidationError{}
	window, scheduleErr := parseScheduleInput(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if scheduleErr != nil {
		err = scheduleErr
		return
	}

	var existing Meeting
	existing, err = s.scheduledMeeting(ctx, id, "reschedule")
	if err != nil {
		return
	}

	updated := existing
	updated.Schedule = window
	updated.UpdatedAt = s.now()

	warnings, err = s.detectConflicts(ctx, updated)
	if err != nil {
		return
	}

	meeting, err = s.meetings.UpdateMeeting(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
		warnings = nil
	}
	return
}

// AddDepartment adds a department to a scheduled meeting. Adding a present
// department only updates its role.
func (s *MeetingService) AddDepartment(ctx context.Context, id string, department MeetingDepartment) (Meeting, error) {
	return s.editDepartments(ctx, "AddDepartment", id, department, func(current []MeetingDepartment, dept MeetingDepartment) []MeetingDepartment {
		return upsertDepartment(current, dept)
	})
}

// RemoveDepartment removes a department from a scheduled meeting. Removing an
// absent department is a no-op.
func (s *MeetingService) RemoveDepartment(ctx context.Context, id, departmentID string) (Meeting, error) {
	return s.editDepartments(ctx, "RemoveDepartment", id, MeetingDepartment{DepartmentID: departmentID}, func(current []MeetingDepartment, dept MeetingDepartment) []MeetingDepartment {
		return removeDepartment(current, dept.DepartmentID)
	})
}

// ToggleDepartment removes the department when present and adds it otherwise.
func (s *MeetingService) ToggleDepartment(ctx context.Context, id string, department MeetingDepartment) (Meeting, error) {
	return s.editDepartments(ctx, "ToggleDepartment", id, department, func(current []MeetingDepartment, dept MeetingDepartment) []MeetingDepartment {
		if hasDepartment(current, dept.DepartmentID) {
			return removeDepartment(current, dept.DepartmentID)
		}
		return upsertDepartment(current, dept)
	})
}

func (s *MeetingService) editDepartments(ctx context.Context, operation, id string, department MeetingDepartment, apply func([]MeetingDepartment, MeetingDepartment) []MeetingDepartment) (meeting Meeting, err error) {
	if s == nil || s.meetings == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	department.DepartmentID = strings.TrimSpace(department.DepartmentID)
	department.Role = strings.TrimSpace(department.Role)

	logger := s.loggerWith(ctx, operation, "meeting_id", id, "department_id", department.DepartmentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to edit meeting departments", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting departments edited", "department_count", len(meeting.Departments))
	}()

	if department.DepartmentID == "" {
		err = newValidationError("departmentId", "department id is required")
		return
	}

	var existing Meeting
	existing, err = s.scheduledMeeting(ctx, id, "edit departments of")
	if err != nil {
		return
	}

	next := apply(cloneDepartments(existing.Departments), department)
	if hasDepartment(next, department.DepartmentID) && !hasDepartment(existing.Departments, department.DepartmentID) {
		if err = s.ensureDepartmentsExist(ctx, []MeetingDepartment{department}); err != nil {
			return
		}
	}

	updated := existing
	updated.Departments = next
	updated.UpdatedAt = s.now()

	meeting, err = s.meetings.UpdateMeeting(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Cancel moves a scheduled meeting to cancelled.
func (s *MeetingService) Cancel(ctx context.Context, id string) (Meeting, error) {
	return s.transition(ctx, "Cancel", id, lifecycle.EventCancel)
}

// Complete moves a scheduled meeting to completed.
func (s *MeetingService) Complete(ctx context.Context, id string) (Meeting, error) {
	return s.transition(ctx, "Complete", id, lifecycle.EventComplete)
}

func (s *MeetingService) transition(ctx context.Context, operation, id, event string) (meeting Meeting, err error) {
	if s == nil || s.meetings == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	logger := s.loggerWith(ctx, operation, "meeting_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "meeting transition failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting transitioned", "status", meeting.Status)
	}()

	var existing Meeting
	existing, err = s.meetings.GetMeeting(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var next string
	next, err = lifecycle.Transition(existing.ID, string(existing.Status), event)
	if err != nil {
		if errors.Is(err, lifecycle.ErrTransitionNotAllowed) {
			err = fmt.Errorf("%w: cannot %s a %s meeting", ErrInvalidTransition, event, existing.Status)
		}
		return
	}

	updated := existing
	updated.Status = MeetingStatus(next)
	updated.UpdatedAt = s.now()

	meeting, err = s.meetings.UpdateMeeting(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetMeeting returns a meeting by id.
func (s *MeetingService) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	if s == nil || s.meetings == nil {
		return Meeting{}, fmt.Errorf("meeting repository not configured")
	}
	meeting, err := s.meetings.GetMeeting(ctx, id)
	if err != nil {
		return Meeting{}, mapRepoError(err)
	}
	return meeting, nil
}

// ListMeetings returns meetings matching filter ordered by date and start time.
func (s *MeetingService) ListMeetings(ctx context.Context, filter MeetingFilter) (meetings []Meeting, err error) {
	if s == nil || s.meetings == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListMeetings")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list meetings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "meetings listed", "count", len(meetings))
	}()

	if filter.Status != nil && !filter.Status.Valid() {
		err = newValidationError("status", "must be one of scheduled, cancelled, completed")
		return
	}

	meetings, err = s.meetings.ListMeetings(ctx, filter)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// DeleteMeeting removes a meeting regardless of status.
func (s *MeetingService) DeleteMeeting(ctx context.Context, id string) error {
	if s == nil || s.meetings == nil {
		return fmt.Errorf("meeting repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteMeeting", "meeting_id", id)
	if err := s.meetings.DeleteMeeting(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "meeting deleted")
	return nil
}

func (s *MeetingService) scheduledMeeting(ctx context.Context, id, action string) (Meeting, error) {
	existing, err := s.meetings.GetMeeting(ctx, id)
	if err != nil {
		return Meeting{}, mapRepoError(err)
	}
	if existing.Status != MeetingScheduled {
		return Meeting{}, fmt.Errorf("%w: cannot %s a %s meeting", ErrInvalidTransition, action, existing.Status)
	}
	return existing, nil
}

func (s *MeetingService) ensureDepartmentsExist(ctx context.Context, departments []MeetingDepartment) error {
	if s.departments == nil {
		return nil
	}
	var missing []string
	for _, dept := range departments {
		exists, err := s.departments.DepartmentExists(ctx, dept.DepartmentID)
		if err != nil {
			return err
		}
		if !exists {
			missing = append(missing, dept.DepartmentID)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return newValidationError("departments", fmt.Sprintf("unknown department ids: %s", strings.Join(missing, ", ")))
}

func (s *MeetingService) detectConflicts(ctx context.Context, candidate Meeting) ([]ConflictWarning, error) {
	date := candidate.Schedule.Date
	status := MeetingScheduled
	sameDay, err := s.meetings.ListMeetings(ctx, MeetingFilter{Date: &date, Status: &status})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, mapRepoError(err)
	}

	existing := make([]scheduler.Meeting, 0, len(sameDay))
	for _, m := range sameDay {
		existing = append(existing, toSchedulerMeeting(m))
	}
	return toConflictWarnings(scheduler.DetectConflicts(existing, toSchedulerMeeting(candidate))), nil
}

func toSchedulerMeeting(meeting Meeting) scheduler.Meeting {
	departments := make([]string, len(meeting.Departments))
	for i, dept := range meeting.Departments {
		departments[i] = dept.DepartmentID
	}
	return scheduler.Meeting{
		ID:          meeting.ID,
		Departments: departments,
		Window:      meeting.Schedule,
	}
}

func toConflictWarnings(conflicts []scheduler.Conflict) []ConflictWarning {
	if len(conflicts) == 0 {
		return nil
	}
	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, ConflictWarning{
			MeetingID:    conflict.WithMeetingID,
			Type:         string(conflict.Type),
			DepartmentID: conflict.DepartmentID,
		})
	}
	return warnings
}

// parseScheduleInput reports malformed fields in vErr. A well formed window whose
// start is not before its end is returned as the second value.
func parseScheduleInput(input ScheduleInput, vErr *ValidationError) (schedule.Window, error) {
	date, dateErr := schedule.ParseDate(input.Date)
	if dateErr != nil {
		vErr.add("schedule.date", "must be a YYYY-MM-DD date")
	}
	start, startErr := schedule.ParseClock(input.StartTime)
	if startErr != nil {
		vErr.add("schedule.startTime", "must be a HH:MM time")
	}
	end, endErr := schedule.ParseClock(input.EndTime)
	if endErr != nil {
		vErr.add("schedule.endTime", "must be a HH:MM time")
	}
	if dateErr != nil || startErr != nil || endErr != nil {
		return schedule.Window{}, nil
	}
	return schedule.NewWindow(date, start, end)
}

func validatePlatform(input MeetingInput, vErr *ValidationError) {
	platform := strings.TrimSpace(input.Platform)
	switch {
	case platform == "":
		vErr.add("platform", "platform is required")
	case platform == PlatformInPerson:
		if strings.TrimSpace(input.Location) == "" {
			vErr.add("location", "location is required for in-person meetings")
		}
	default:
		link := strings.TrimSpace(input.MeetingLink)
		if link == "" {
			vErr.add("meetingLink", "meeting link is required for online meetings")
		} else if _, err := url.ParseRequestURI(link); err != nil {
			vErr.add("meetingLink", "must be a valid URL")
		}
	}
}

// normalizeDepartments deduplicates by id keeping first-seen order; the last role wins.
func normalizeDepartments(departments []MeetingDepartment, vErr *ValidationError) []MeetingDepartment {
	out := make([]MeetingDepartment, 0, len(departments))
	for _, dept := range departments {
		dept.DepartmentID = strings.TrimSpace(dept.DepartmentID)
		dept.Role = strings.TrimSpace(dept.Role)
		if dept.DepartmentID == "" {
			vErr.add("departments", "department id is required")
			continue
		}
		out = upsertDepartment(out, dept)
	}
	return out
}

func upsertDepartment(departments []MeetingDepartment, dept MeetingDepartment) []MeetingDepartment {
	for i := range departments {
		if departments[i].DepartmentID == dept.DepartmentID {
			departments[i].Role = dept.Role
			return departments
		}
	}
	return append(departments, dept)
}

func removeDepartment(departments []MeetingDepartment, id string) []MeetingDepartment {
	out := departments[:0]
	for _, dept := range departments {
		if dept.DepartmentID != id {
			out = append(out, dept)
		}
	}
	return out
}

func hasDepartment(departments []MeetingDepartment, id string) bool {
	for _, dept := range departments {
		if dept.DepartmentID == id {
			return true
		}
	}
	return false
}

func cloneDepartments(departments []MeetingDepartment) []MeetingDepartment {
	out := make([]MeetingDepartment, len(departments))
	copy(out, departments)
	return out
}
