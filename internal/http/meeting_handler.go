package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/schedule"
)

type meetingService interface {
	CreateMeeting(ctx context.Context, input application.MeetingInput) (application.Meeting, []application.ConflictWarning, error)
	Reschedule(ctx context.Context, id string, input application.ScheduleInput) (application.Meeting, []application.ConflictWarning, error)
	AddDepartment(ctx context.Context, id string, department application.MeetingDepartment) (application.Meeting, error)
	RemoveDepartment(ctx context.Context, id, departmentID string) (application.Meeting, error)
	ToggleDepartment(ctx context.Context, id string, department application.MeetingDepartment) (application.Meeting, error)
	Cancel(ctx context.Context, id string) (application.Meeting, error)
	Complete(ctx context.Context, id string) (application.Meeting, error)
	GetMeeting(ctx context.Context, id string) (application.Meeting, error)
	ListMeetings(ctx context.Context, filter application.MeetingFilter) ([]application.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// MeetingHandler serves meeting endpoints.
type MeetingHandler struct {
	service   meetingService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewMeetingHandler(service meetingService, now func() time.Time, logger *slog.Logger) *MeetingHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &MeetingHandler{service: service, now: now, responder: newResponder(base), logger: base}
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req meetingRequest
	if err := decodeBody(w, r, "meeting", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	meeting, warnings, err := h.service.CreateMeeting(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if len(warnings) > 0 {
		handlerLogger(r.Context(), h.logger, "MeetingHandler", "Create", "meeting_id", meeting.ID).
			InfoContext(r.Context(), "meeting created with conflicts", "conflicts", len(warnings))
	}
	h.renderMeeting(r.Context(), w, meeting, warnings, http.StatusCreated)
}

func (h *MeetingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req scheduleRequest
	if err := decodeBody(w, r, "schedule", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	meeting, warnings, err := h.service.Reschedule(r.Context(), id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderMeeting(r.Context(), w, meeting, warnings, http.StatusOK)
}

func (h *MeetingHandler) AddDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req meetingDepartmentRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, "meeting_department", &req); err != nil {
			h.responder.writeDecodeError(w, r, err)
			return
		}
	}

	meeting, err := h.service.AddDepartment(r.Context(), id, application.MeetingDepartment{
		DepartmentID: strings.TrimSpace(r.PathValue("departmentId")),
		Role:         strings.TrimSpace(req.Role),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderMeeting(r.Context(), w, meeting, nil, http.StatusOK)
}

func (h *MeetingHandler) RemoveDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	meeting, err := h.service.RemoveDepartment(r.Context(), id, strings.TrimSpace(r.PathValue("departmentId")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderMeeting(r.Context(), w, meeting, nil, http.StatusOK)
}

func (h *MeetingHandler) ToggleDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req meetingDepartmentRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, "meeting_department", &req); err != nil {
			h.responder.writeDecodeError(w, r, err)
			return
		}
	}

	meeting, err := h.service.ToggleDepartment(r.Context(), id, application.MeetingDepartment{
		DepartmentID: strings.TrimSpace(r.PathValue("departmentId")),
		Role:         strings.TrimSpace(req.Role),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderMeeting(r.Context(), w, meeting, nil, http.StatusOK)
}

func (h *MeetingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id string) (application.Meeting, error) {
		return h.service.Cancel(ctx, id)
	})
}

func (h *MeetingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id string) (application.Meeting, error) {
		return h.service.Complete(ctx, id)
	})
}

func (h *MeetingHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (application.Meeting, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	meeting, err := apply(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderMeeting(r.Context(), w, meeting, nil, http.StatusOK)
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	meeting, err := h.service.GetMeeting(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderMeeting(r.Context(), w, meeting, nil, http.StatusOK)
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMeeting(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := buildMeetingFilter(r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	meetings, err := h.service.ListMeetings(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	now := h.now()
	out := make([]meetingDTO, 0, len(meetings))
	for _, meeting := range meetings {
		out = append(out, toMeetingDTO(meeting, now))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMeetingsResponse{Meetings: out})
}

func (h *MeetingHandler) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errMissingID)
		return "", false
	}
	return id, true
}

func (h *MeetingHandler) renderMeeting(ctx context.Context, w http.ResponseWriter, meeting application.Meeting, warnings []application.ConflictWarning, status int) {
	h.responder.writeJSON(ctx, w, status, meetingResponse{
		Meeting:  toMeetingDTO(meeting, h.now()),
		Warnings: toWarningDTOs(warnings),
	})
}

type scheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (r scheduleRequest) toInput() application.ScheduleInput {
	return application.ScheduleInput{Date: r.Date, StartTime: r.StartTime, EndTime: r.EndTime}
}

type meetingDepartmentRequest struct {
	DepartmentID string `json:"departmentId"`
	Role         string `json:"role"`
}

type meetingRequest struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Agenda      string                     `json:"agenda"`
	Schedule    scheduleRequest            `json:"schedule"`
	Platform    string                     `json:"platform"`
	MeetingLink string                     `json:"meetingLink"`
	Location    string                     `json:"location"`
	Departments []meetingDepartmentRequest `json:"departments"`
	MeetingType string                     `json:"meetingType"`
	Priority    string                     `json:"priority"`
}

func (r meetingRequest) toInput() application.MeetingInput {
	departments := make([]application.MeetingDepartment, 0, len(r.Departments))
	for _, dept := range r.Departments {
		departments = append(departments, application.MeetingDepartment{DepartmentID: dept.DepartmentID, Role: dept.Role})
	}
	return application.MeetingInput{
		Title:       r.Title,
		Description: r.Description,
		Agenda:      r.Agenda,
		Schedule:    r.Schedule.toInput(),
		Platform:    r.Platform,
		MeetingLink: r.MeetingLink,
		Location:    r.Location,
		Departments: departments,
		MeetingType: r.MeetingType,
		Priority:    application.Priority(strings.TrimSpace(r.Priority)),
	}
}

type meetingResponse struct {
	Meeting  meetingDTO           `json:"meeting"`
	Warnings []conflictWarningDTO `json:"warnings,omitempty"`
}

type listMeetingsResponse struct {
	Meetings []meetingDTO `json:"meetings"`
}

type meetingDTO struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Agenda       string                 `json:"agenda"`
	Schedule     scheduleDTO            `json:"schedule"`
	Platform     string                 `json:"platform"`
	MeetingLink  *string                `json:"meetingLink,omitempty"`
	Location     *string                `json:"location,omitempty"`
	Departments  []meetingDepartmentDTO `json:"departments"`
	MeetingType  string                 `json:"meetingType"`
	Priority     string                 `json:"priority"`
	Status       string                 `json:"status"`
	CreatedAt    string                 `json:"createdAt"`
	UpdatedAt    string                 `json:"updatedAt"`
	Presentation presentationDTO        `json:"presentation"`
}

type scheduleDTO struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type meetingDepartmentDTO struct {
	DepartmentID string `json:"departmentId"`
	Role         string `json:"role,omitempty"`
}

type conflictWarningDTO struct {
	MeetingID    string `json:"meetingId"`
	Type         string `json:"type"`
	DepartmentID string `json:"departmentId,omitempty"`
}

func toMeetingDTO(meeting application.Meeting, now time.Time) meetingDTO {
	departments := make([]meetingDepartmentDTO, 0, len(meeting.Departments))
	for _, dept := range meeting.Departments {
		departments = append(departments, meetingDepartmentDTO{DepartmentID: dept.DepartmentID, Role: dept.Role})
	}
	return meetingDTO{
		ID:          meeting.ID,
		Title:       meeting.Title,
		Description: meeting.Description,
		Agenda:      meeting.Agenda,
		Schedule: scheduleDTO{
			Date:      meeting.Schedule.Date.String(),
			StartTime: meeting.Schedule.Start.String(),
			EndTime:   meeting.Schedule.End.String(),
		},
		Platform:     meeting.Platform,
		MeetingLink:  meeting.MeetingLink,
		Location:     meeting.Location,
		Departments:  departments,
		MeetingType:  meeting.MeetingType,
		Priority:     string(meeting.Priority),
		Status:       string(meeting.Status),
		CreatedAt:    formatTime(meeting.CreatedAt),
		UpdatedAt:    formatTime(meeting.UpdatedAt),
		Presentation: toPresentationDTO(application.ResolveMeetingStatus(meeting, now)),
	}
}

func toWarningDTOs(warnings []application.ConflictWarning) []conflictWarningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]conflictWarningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, conflictWarningDTO{MeetingID: warning.MeetingID, Type: warning.Type, DepartmentID: warning.DepartmentID})
	}
	return out
}

func buildMeetingFilter(values url.Values) (application.MeetingFilter, error) {
	var filter application.MeetingFilter
	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		date, err := schedule.ParseDate(raw)
		if err != nil {
			return filter, &application.ValidationError{FieldErrors: map[string]string{"date": "must be YYYY-MM-DD"}}
		}
		filter.Date = &date
	}
	if dept := strings.TrimSpace(values.Get("department")); dept != "" {
		filter.DepartmentID = &dept
	}
	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		status := application.MeetingStatus(raw)
		filter.Status = &status
	}
	return filter, nil
}
