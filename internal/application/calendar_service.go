package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/hr-delegation/internal/ics"
	"github.com/example/hr-delegation/internal/recurrence"
	"github.com/example/hr-delegation/internal/schedule"
)

// CalendarRepository captures the persistence operations needed by the calendar service.
// With From set, ListEvents also returns every recurring event so it can be expanded.
type CalendarRepository interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (CalendarEvent, error)
	GetEvent(ctx context.Context, id string) (CalendarEvent, error)
	ListEvents(ctx context.Context, filter CalendarEventFilter) ([]CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// MeetingLister is the read side of the meeting store used by calendar export.
type MeetingLister interface {
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
}

// maxExportDays bounds the range of a single calendar export.
const maxExportDays = 400

// ImportResult summarizes an ICS import.
type ImportResult struct {
	Created []CalendarEvent
	Skipped []ics.SkippedEvent
}

// CalendarService manages holiday and attendance entries and resolves day statuses.
type CalendarService struct {
	events      CalendarRepository
	meetings    MeetingLister
	departments DepartmentCatalog
	engine      *recurrence.Engine
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCalendarService wires dependencies for calendar operations.
func NewCalendarService(events CalendarRepository, meetings MeetingLister, departments DepartmentCatalog, idGenerator func() string, now func() time.Time) *CalendarService {
	return NewCalendarServiceWithLogger(events, meetings, departments, idGenerator, now, nil)
}

// NewCalendarServiceWithLogger wires dependencies with a specified logger.
func NewCalendarServiceWithLogger(events CalendarRepository, meetings MeetingLister, departments DepartmentCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CalendarService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarService{
		events:      events,
		meetings:    meetings,
		departments: departments,
		engine:      recurrence.NewEngine(0),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// CreateEvent validates input and persists a calendar entry.
func (s *CalendarService) CreateEvent(ctx context.Context, input CalendarEventInput) (event CalendarEvent, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "date", input.Date, "status_kind", input.StatusKind)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create calendar event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "calendar event created")
	}()

	var candidate CalendarEvent
	candidate, err = s.buildEvent(input)
	if err != nil {
		return
	}
	if err = s.ensureDepartmentsExist(ctx, candidate.Departments); err != nil {
		return
	}

	event, err = s.events.CreateEvent(ctx, candidate)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetEvent returns a calendar entry by id.
func (s *CalendarService) GetEvent(ctx context.Context, id string) (CalendarEvent, error) {
	if s == nil || s.events == nil {
		return CalendarEvent{}, fmt.Errorf("calendar repository not configured")
	}
	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return CalendarEvent{}, mapRepoError(err)
	}
	return event, nil
}

// ListEvents returns entries matching filter. When From or To is set, recurring
// entries are kept only if one of their occurrences falls in the range.
func (s *CalendarService) ListEvents(ctx context.Context, filter CalendarEventFilter) (events []CalendarEvent, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListEvents")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list calendar events", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "calendar events listed", "count", len(events))
	}()

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		err = newValidationError("to", "must not be before from")
		return
	}

	var stored []CalendarEvent
	stored, err = s.events.ListEvents(ctx, filter)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if filter.From == nil && filter.To == nil {
		events = stored
		return
	}

	events = make([]CalendarEvent, 0, len(stored))
	for _, event := range stored {
		from, to := event.Date, event.Date
		if filter.From != nil {
			from = *filter.From
		}
		if filter.To != nil {
			to = *filter.To
		} else if event.RecurrenceRule != nil {
			to = from.AddDays(366)
		}
		if to.Before(from) {
			continue
		}
		dates, occErr := s.occurrences(event, from, to)
		if occErr != nil {
			logger.WarnContext(ctx, "skipping event with unusable recurrence", "event_id", event.ID, "error", occErr)
			continue
		}
		if len(dates) > 0 {
			events = append(events, event)
		}
	}
	return
}

// DeleteEvent removes a calendar entry.
func (s *CalendarService) DeleteEvent(ctx context.Context, id string) error {
	if s == nil || s.events == nil {
		return fmt.Errorf("calendar repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEvent", "event_id", id)
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete calendar event", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "calendar event deleted")
	return nil
}

// ResolveDay reduces the entries occurring on date to a single display status.
// A non-empty department restricts the entries to those targeting it; entries
// without departments apply organization wide and always count.
func (s *CalendarService) ResolveDay(ctx context.Context, date schedule.Date, department string) (CalendarDay, error) {
	days, err := s.resolveRange(ctx, "ResolveDay", date, date, department)
	if err != nil {
		return CalendarDay{}, err
	}
	return days[0], nil
}

// ResolveMonth returns one resolution per day of the month, in order.
func (s *CalendarService) ResolveMonth(ctx context.Context, year int, month time.Month, department string) ([]CalendarDay, error) {
	if month < time.January || month > time.December {
		return nil, newValidationError("month", "must be between 1 and 12")
	}
	first := schedule.Date{Year: year, Month: month, Day: 1}
	last := schedule.DateOf(time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC))
	return s.resolveRange(ctx, "ResolveMonth", first, last, department)
}

func (s *CalendarService) resolveRange(ctx context.Context, operation string, from, to schedule.Date, department string) (days []CalendarDay, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	department = strings.TrimSpace(department)
	logger := s.loggerWith(ctx, operation, "from", from.String(), "to", to.String(), "department", department)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve day status", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var stored []CalendarEvent
	stored, err = s.events.ListEvents(ctx, CalendarEventFilter{From: &from, To: &to})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	byDate := make(map[schedule.Date][]CalendarEvent)
	for _, event := range stored {
		if department != "" && !targetsDepartment(event, department) {
			continue
		}
		dates, occErr := s.occurrences(event, from, to)
		if occErr != nil {
			logger.WarnContext(ctx, "skipping event with unusable recurrence", "event_id", event.ID, "error", occErr)
			continue
		}
		for _, d := range dates {
			byDate[d] = append(byDate[d], event)
		}
	}

	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, resolveCalendarDay(d, byDate[d]))
	}
	return
}

// ImportICS creates one calendar entry per importable VEVENT. The status kind is
// taken from the event's CATEGORIES when it names a day status, then from kind,
// and defaults to FullDayHoliday.
func (s *CalendarService) ImportICS(ctx context.Context, body []byte, kind string, departments []string) (result ImportResult, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ImportICS", "bytes", len(body))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to import calendar feed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "calendar feed imported", "created", len(result.Created), "skipped", len(result.Skipped))
	}()

	fallback := schedule.FullDayHoliday
	if strings.TrimSpace(kind) != "" {
		parsed, parseErr := schedule.ParseDayStatus(kind)
		if parseErr != nil {
			err = newValidationError("statusKind", "must be one of FullDayHoliday, HalfDayHoliday, WorkingDay")
			return
		}
		fallback = parsed
	}

	var (
		imported []ics.ImportedEvent
		skipped  []ics.SkippedEvent
	)
	imported, skipped, err = ics.Parse(body, s.now().Location())
	if err != nil {
		err = newValidationError("body", err.Error())
		return
	}
	result.Skipped = skipped

	for _, item := range imported {
		input := CalendarEventInput{
			Date:        item.Date.String(),
			Departments: departments,
			StatusKind:  string(statusFromCategories(item.Categories, fallback)),
			Title:       item.Summary,
			Description: item.Description,
		}
		if item.Start != nil && item.End != nil {
			input.StartTime = item.Start.String()
			input.EndTime = item.End.String()
		}
		if item.RRule != "" {
			input.RecurrenceRule = item.RRule
		}

		candidate, buildErr := s.buildEvent(input)
		if buildErr != nil {
			result.Skipped = append(result.Skipped, ics.SkippedEvent{UID: item.UID, Reason: buildErr.Error()})
			continue
		}

		var created CalendarEvent
		created, err = s.events.CreateEvent(ctx, candidate)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		result.Created = append(result.Created, created)
	}
	return
}

// ExportICS renders meetings and calendar entries between from and to inclusive
// as a text/calendar document.
func (s *CalendarService) ExportICS(ctx context.Context, from, to schedule.Date) (body string, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ExportICS", "from", from.String(), "to", to.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to export calendar", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if to.Before(from) || to.After(from.AddDays(maxExportDays)) {
		err = newValidationError("to", fmt.Sprintf("must be within %d days after from", maxExportDays))
		return
	}

	var events []CalendarEvent
	events, err = s.ListEvents(ctx, CalendarEventFilter{From: &from, To: &to})
	if err != nil {
		return
	}

	stamp := s.now()
	entries := make([]ics.Entry, 0, len(events))
	for _, event := range events {
		entries = append(entries, calendarEventEntry(event, stamp))
	}

	if s.meetings != nil {
		for d := from; !d.After(to); d = d.AddDays(1) {
			day := d
			var meetings []Meeting
			meetings, err = s.meetings.ListMeetings(ctx, MeetingFilter{Date: &day})
			if err != nil {
				err = mapRepoError(err)
				return
			}
			for _, meeting := range meetings {
				entries = append(entries, meetingEntry(meeting, stamp))
			}
		}
	}

	body = ics.Export(entries, stamp.Location())
	return
}

func (s *CalendarService) buildEvent(input CalendarEventInput) (CalendarEvent, error) {
	vErr := &ValidationError{}

	date, dateErr := schedule.ParseDate(input.Date)
	if strings.TrimSpace(input.Date) == "" {
		vErr.add("date", "date is required")
	} else if dateErr != nil {
		vErr.add("date", "must be a YYYY-MM-DD date")
	}

	kind, kindErr := schedule.ParseDayStatus(input.StatusKind)
	if kindErr != nil {
		vErr.add("statusKind", "must be one of FullDayHoliday, HalfDayHoliday, WorkingDay")
	}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}

	start, startSet := parseOptionalClock(input.StartTime, "startTime", vErr)
	end, endSet := parseOptionalClock(input.EndTime, "endTime", vErr)
	hasStart := strings.TrimSpace(input.StartTime) != ""
	hasEnd := strings.TrimSpace(input.EndTime) != ""
	switch {
	case hasStart && !hasEnd:
		vErr.add("endTime", "end time is required when start time is set")
	case hasEnd && !hasStart:
		vErr.add("startTime", "start time is required when end time is set")
	case !hasStart && !hasEnd && kindErr == nil && kind == schedule.HalfDayHoliday:
		vErr.add("startTime", "start time is required for half day holidays")
		vErr.add("endTime", "end time is required for half day holidays")
	}

	var rule *string
	if trimmed := strings.TrimSpace(input.RecurrenceRule); trimmed != "" {
		if err := recurrence.Validate(trimmed); err != nil {
			vErr.add("recurrenceRule", "must be a valid RRULE")
		} else {
			normalized := recurrence.Normalize(trimmed)
			rule = &normalized
		}
	}

	departments, deptErr := normalizeDepartmentSet(input.Departments)
	if deptErr != "" {
		vErr.add("departments", deptErr)
	}

	if vErr.HasErrors() {
		return CalendarEvent{}, vErr
	}
	if startSet && endSet && start >= end {
		return CalendarEvent{}, &schedule.InvalidScheduleError{Start: start, End: end}
	}

	now := s.now()
	event := CalendarEvent{
		ID:             s.idGenerator(),
		Date:           date,
		Departments:    departments,
		StatusKind:     kind,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		RecurrenceRule: rule,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if startSet && endSet {
		event.Start = &start
		event.End = &end
	}
	return event, nil
}

func (s *CalendarService) ensureDepartmentsExist(ctx context.Context, ids []string) error {
	if s.departments == nil {
		return nil
	}
	var missing []string
	for _, id := range ids {
		exists, err := s.departments.DepartmentExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return newValidationError("departments", fmt.Sprintf("unknown department ids: %s", strings.Join(missing, ", ")))
}

func (s *CalendarService) occurrences(event CalendarEvent, from, to schedule.Date) ([]schedule.Date, error) {
	if event.RecurrenceRule == nil {
		if event.Date.Before(from) || event.Date.After(to) {
			return nil, nil
		}
		return []schedule.Date{event.Date}, nil
	}
	dates, _, err := s.engine.Dates(*event.RecurrenceRule, event.Date, from, to)
	return dates, err
}

func resolveCalendarDay(date schedule.Date, events []CalendarEvent) CalendarDay {
	inputs := make([]schedule.DayEvent, 0, len(events))
	ids := make([]string, 0, len(events))
	for _, event := range events {
		inputs = append(inputs, schedule.DayEvent{Status: event.StatusKind, Departments: event.Departments})
		ids = append(ids, event.ID)
	}
	sort.Strings(ids)

	resolution := schedule.ResolveDay(inputs)
	return CalendarDay{
		Date:        date,
		Status:      resolution.Status,
		Departments: resolution.Departments,
		Assigned:    resolution.Assigned,
		EventIDs:    ids,
	}
}

func targetsDepartment(event CalendarEvent, department string) bool {
	if len(event.Departments) == 0 {
		return true
	}
	for _, id := range event.Departments {
		if id == department {
			return true
		}
	}
	return false
}

func statusFromCategories(categories []string, fallback schedule.DayStatus) schedule.DayStatus {
	for _, category := range categories {
		if status, err := schedule.ParseDayStatus(category); err == nil {
			return status
		}
	}
	return fallback
}

func calendarEventEntry(event CalendarEvent, stamp time.Time) ics.Entry {
	entry := ics.Entry{
		UID:         "event-" + event.ID,
		Summary:     event.Title,
		Description: event.Description,
		Categories:  []string{string(event.StatusKind)},
		Date:        event.Date,
		Stamp:       stamp,
	}
	if event.Start != nil && event.End != nil {
		entry.Window = &schedule.Window{Date: event.Date, Start: *event.Start, End: *event.End}
	}
	if event.RecurrenceRule != nil {
		entry.RRule = *event.RecurrenceRule
	}
	return entry
}

func meetingEntry(meeting Meeting, stamp time.Time) ics.Entry {
	window := meeting.Schedule
	entry := ics.Entry{
		UID:         "meeting-" + meeting.ID,
		Summary:     meeting.Title,
		Description: meeting.Agenda,
		Date:        window.Date,
		Window:      &window,
		Cancelled:   meeting.Status == MeetingCancelled,
		Stamp:       stamp,
	}
	if meeting.Location != nil {
		entry.Location = *meeting.Location
	}
	if meeting.MeetingLink != nil {
		entry.URL = *meeting.MeetingLink
	}
	return entry
}

func parseOptionalClock(value, field string, vErr *ValidationError) (schedule.ClockTime, bool) {
	if strings.TrimSpace(value) == "" {
		return 0, false
	}
	clock, err := schedule.ParseClock(value)
	if err != nil {
		vErr.add(field, "must be a HH:MM time")
		return 0, false
	}
	return clock, true
}

// normalizeDepartmentSet trims, deduplicates and sorts department ids.
func normalizeDepartmentSet(ids []string) ([]string, string) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, "department id is required"
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, ""
}
