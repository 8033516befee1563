package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/schedule"
)

// maxICSBytes bounds an imported calendar feed.
const maxICSBytes = 4 << 20

// defaultExportDays is the export window when the caller names no range.
const defaultExportDays = 90

type calendarService interface {
	CreateEvent(ctx context.Context, input application.CalendarEventInput) (application.CalendarEvent, error)
	GetEvent(ctx context.Context, id string) (application.CalendarEvent, error)
	ListEvents(ctx context.Context, filter application.CalendarEventFilter) ([]application.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	ResolveDay(ctx context.Context, date schedule.Date, department string) (application.CalendarDay, error)
	ResolveMonth(ctx context.Context, year int, month time.Month, department string) ([]application.CalendarDay, error)
	ImportICS(ctx context.Context, body []byte, kind string, departments []string) (application.ImportResult, error)
	ExportICS(ctx context.Context, from, to schedule.Date) (string, error)
}

// CalendarHandler serves holiday, attendance and ICS endpoints.
type CalendarHandler struct {
	service   calendarService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewCalendarHandler(service calendarService, now func() time.Time, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &CalendarHandler{service: service, now: now, responder: newResponder(base), logger: base}
}

func (h *CalendarHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req calendarEventRequest
	if err := decodeBody(w, r, "calendar_event", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, calendarEventResponse{Event: toCalendarEventDTO(event)})
}

func (h *CalendarHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	event, err := h.service.GetEvent(r.Context(), strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, calendarEventResponse{Event: toCalendarEventDTO(event)})
}

func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	if err := h.service.DeleteEvent(r.Context(), strings.TrimSpace(r.PathValue("id"))); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	query := r.URL.Query()
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}
	filter := application.CalendarEventFilter{
		From: optionalDate(query, "from", vErr),
		To:   optionalDate(query, "to", vErr),
	}
	if dept := strings.TrimSpace(query.Get("department")); dept != "" {
		filter.DepartmentID = &dept
	}
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	events, err := h.service.ListEvents(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]calendarEventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toCalendarEventDTO(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCalendarEventsResponse{Events: out})
}

func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	date, err := schedule.ParseDate(r.PathValue("date"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, fieldError("date", "must be YYYY-MM-DD"))
		return
	}

	day, err := h.service.ResolveDay(r.Context(), date, strings.TrimSpace(r.URL.Query().Get("department")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, calendarDayResponse{Day: toCalendarDayDTO(day)})
}

func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var year, month int
	if _, err := fmt.Sscanf(r.PathValue("month"), "%4d-%2d", &year, &month); err != nil {
		h.responder.handleServiceError(r.Context(), w, fieldError("month", "must be YYYY-MM"))
		return
	}

	days, err := h.service.ResolveMonth(r.Context(), year, time.Month(month), strings.TrimSpace(r.URL.Query().Get("department")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]calendarDayDTO, 0, len(days))
	for _, day := range days {
		out = append(out, toCalendarDayDTO(day))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, calendarMonthResponse{Days: out})
}

func (h *CalendarHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxICSBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.responder.writeError(r.Context(), w, http.StatusRequestEntityTooLarge, codeBadRequest, errRequestTooLarge)
			return
		}
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	query := r.URL.Query()
	result, err := h.service.ImportICS(r.Context(), body, strings.TrimSpace(query.Get("kind")), splitCSV(query.Get("departments")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "CalendarHandler", "Import").
		InfoContext(r.Context(), "calendar feed imported", "created", len(result.Created), "skipped", len(result.Skipped))

	response := importResponse{
		Created: make([]calendarEventDTO, 0, len(result.Created)),
		Skipped: make([]skippedEventDTO, 0, len(result.Skipped)),
	}
	for _, event := range result.Created {
		response.Created = append(response.Created, toCalendarEventDTO(event))
	}
	for _, skipped := range result.Skipped {
		response.Skipped = append(response.Skipped, skippedEventDTO{UID: skipped.UID, Reason: skipped.Reason})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *CalendarHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	query := r.URL.Query()
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}
	from := optionalDate(query, "from", vErr)
	to := optionalDate(query, "to", vErr)
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}
	if from == nil {
		today := schedule.DateOf(h.now())
		from = &today
	}
	if to == nil {
		end := from.AddDays(defaultExportDays)
		to = &end
	}

	body, err := h.service.ExportICS(r.Context(), *from, *to)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="hrdesk.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to write calendar", "error", err)
	}
}

type calendarEventRequest struct {
	Date           string   `json:"date"`
	Departments    []string `json:"departments"`
	StatusKind     string   `json:"statusKind"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RecurrenceRule string   `json:"recurrenceRule"`
}

func (r calendarEventRequest) toInput() application.CalendarEventInput {
	return application.CalendarEventInput{
		Date:           r.Date,
		Departments:    r.Departments,
		StatusKind:     r.StatusKind,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Title:          r.Title,
		Description:    r.Description,
		RecurrenceRule: r.RecurrenceRule,
	}
}

type calendarEventResponse struct {
	Event calendarEventDTO `json:"event"`
}

type listCalendarEventsResponse struct {
	Events []calendarEventDTO `json:"events"`
}

type calendarDayResponse struct {
	Day calendarDayDTO `json:"day"`
}

type calendarMonthResponse struct {
	Days []calendarDayDTO `json:"days"`
}

type importResponse struct {
	Created []calendarEventDTO `json:"created"`
	Skipped []skippedEventDTO  `json:"skipped"`
}

type skippedEventDTO struct {
	UID    string `json:"uid"`
	Reason string `json:"reason"`
}

type calendarEventDTO struct {
	ID             string   `json:"id"`
	Date           string   `json:"date"`
	Departments    []string `json:"departments"`
	StatusKind     string   `json:"statusKind"`
	StartTime      string   `json:"startTime,omitempty"`
	EndTime        string   `json:"endTime,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RecurrenceRule string   `json:"recurrenceRule,omitempty"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

type calendarDayDTO struct {
	Date        string   `json:"date"`
	Status      string   `json:"status"`
	Departments []string `json:"departments"`
	Assigned    bool     `json:"assigned"`
	EventIDs    []string `json:"eventIds"`
}

func toCalendarEventDTO(event application.CalendarEvent) calendarEventDTO {
	dto := calendarEventDTO{
		ID:          event.ID,
		Date:        event.Date.String(),
		Departments: nonNilStrings(event.Departments),
		StatusKind:  string(event.StatusKind),
		Title:       event.Title,
		Description: event.Description,
		CreatedAt:   formatTime(event.CreatedAt),
		UpdatedAt:   formatTime(event.UpdatedAt),
	}
	if event.Start != nil {
		dto.StartTime = event.Start.String()
	}
	if event.End != nil {
		dto.EndTime = event.End.String()
	}
	if event.RecurrenceRule != nil {
		dto.RecurrenceRule = *event.RecurrenceRule
	}
	return dto
}

func toCalendarDayDTO(day application.CalendarDay) calendarDayDTO {
	return calendarDayDTO{
		Date:        day.Date.String(),
		Status:      string(day.Status),
		Departments: nonNilStrings(day.Departments),
		Assigned:    day.Assigned,
		EventIDs:    nonNilStrings(day.EventIDs),
	}
}

func optionalDate(values url.Values, key string, vErr *application.ValidationError) *schedule.Date {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	date, err := schedule.ParseDate(raw)
	if err != nil {
		vErr.FieldErrors[key] = "must be YYYY-MM-DD"
		return nil
	}
	return &date
}

func fieldError(field, message string) *application.ValidationError {
	return &application.ValidationError{FieldErrors: map[string]string{field: message}}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
