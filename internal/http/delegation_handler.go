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

type delegationService interface {
	CreateRoot(ctx context.Context, input application.DelegationInput) (application.DelegationRecord, error)
	Forward(ctx context.Context, sourceID string, input application.DelegationInput) (application.DelegationRecord, error)
	EditForwarded(ctx context.Context, id string, patch application.RecordPatch) (application.DelegationRecord, error)
	Update(ctx context.Context, id string, input application.DelegationInput) (application.DelegationRecord, error)
	AttachResponse(ctx context.Context, id string, input application.ResponseInput) (application.DelegationRecord, error)
	Remove(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (application.DelegationRecord, error)
	List(ctx context.Context, filter application.RecordFilter) ([]application.DelegationRecord, error)
	Children(ctx context.Context, id string) ([]application.DelegationRecord, error)
}

// DelegationHandler serves the delegation chain endpoints.
type DelegationHandler struct {
	service   delegationService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

// NewDelegationHandler builds a handler. now drives the derived presentation status.
func NewDelegationHandler(service delegationService, now func() time.Time, logger *slog.Logger) *DelegationHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &DelegationHandler{service: service, now: now, responder: newResponder(base), logger: base}
}

func (h *DelegationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "DelegationHandler", operation, attrs...)
}

func (h *DelegationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req delegationRequest
	if err := decodeBody(w, r, "delegation", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	input, err := req.toInput(h.now().Location())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	record, err := h.service.CreateRoot(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create", "record_id", record.ID).DebugContext(r.Context(), "root record created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, delegationResponse{Delegation: h.toDTO(record)})
}

func (h *DelegationHandler) Forward(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req delegationRequest
	if err := decodeBody(w, r, "delegation", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	input, err := req.toInput(h.now().Location())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	record, err := h.service.Forward(r.Context(), id, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, delegationResponse{Delegation: h.toDTO(record)})
}

func (h *DelegationHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req patchRequest
	if err := decodeBody(w, r, "delegation_patch", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	record, err := h.service.EditForwarded(r.Context(), id, req.toPatch())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, delegationResponse{Delegation: h.toDTO(record)})
}

func (h *DelegationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req delegationRequest
	if err := decodeBody(w, r, "delegation", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	input, err := req.toInput(h.now().Location())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	record, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, delegationResponse{Delegation: h.toDTO(record)})
}

func (h *DelegationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req responseRequest
	if err := decodeBody(w, r, "response", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	record, err := h.service.AttachResponse(r.Context(), id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, delegationResponse{Delegation: h.toDTO(record)})
}

func (h *DelegationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *DelegationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, delegationResponse{Delegation: h.toDTO(record)})
}

func (h *DelegationHandler) Children(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	records, err := h.service.Children(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDelegationsResponse{Delegations: h.toDTOs(records)})
}

func (h *DelegationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	filter, err := buildRecordFilter(r.URL.Query())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	records, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDelegationsResponse{Delegations: h.toDTOs(records)})
}

func (h *DelegationHandler) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
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

func (h *DelegationHandler) toDTO(record application.DelegationRecord) delegationDTO {
	return toDelegationDTO(record, h.now())
}

func (h *DelegationHandler) toDTOs(records []application.DelegationRecord) []delegationDTO {
	now := h.now()
	out := make([]delegationDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toDelegationDTO(record, now))
	}
	return out
}

type delegationRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Highlights  []string  `json:"highlights"`
	AssignedTo  string    `json:"assignedTo"`
	Deadline    string    `json:"deadline"`
	Priority    string    `json:"priority"`
}

// toInput reads deadlines without an offset as wall-clock time in loc.
func (r delegationRequest) toInput(loc *time.Location) (application.DelegationInput, error) {
	deadline, err := parseDeadline(r.Deadline, loc)
	if err != nil {
		return application.DelegationInput{}, fieldError("deadline", "must be RFC3339 or YYYY-MM-DDTHH:MM")
	}
	return application.DelegationInput{
		Title:       r.Title,
		Description: r.Description,
		Highlights:  r.Highlights,
		AssignedTo:  r.AssignedTo,
		Deadline:    deadline,
		Priority:    application.Priority(strings.TrimSpace(r.Priority)),
	}, nil
}

var localDeadlineLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseDeadline(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range localDeadlineLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

type patchRequest struct {
	Status   *string `json:"status"`
	Progress *int    `json:"progress"`
	Priority *string `json:"priority"`
}

func (r patchRequest) toPatch() application.RecordPatch {
	var patch application.RecordPatch
	if r.Status != nil {
		status := application.DelegationStatus(*r.Status)
		patch.Status = &status
	}
	patch.Progress = r.Progress
	if r.Priority != nil {
		priority := application.Priority(*r.Priority)
		patch.Priority = &priority
	}
	return patch
}

type responseRequest struct {
	SubmittedAt          *time.Time `json:"submittedAt"`
	WorkStatus           string     `json:"workStatus"`
	ResponseDescription  string     `json:"responseDescription"`
	CompletionPercentage int        `json:"completionPercentage"`
}

func (r responseRequest) toInput() application.ResponseInput {
	return application.ResponseInput{
		SubmittedAt:          r.SubmittedAt,
		WorkStatus:           application.WorkStatus(strings.TrimSpace(r.WorkStatus)),
		Description:          r.ResponseDescription,
		CompletionPercentage: r.CompletionPercentage,
	}
}

type delegationResponse struct {
	Delegation delegationDTO `json:"delegation"`
}

type listDelegationsResponse struct {
	Delegations []delegationDTO `json:"delegations"`
}

type delegationDTO struct {
	ID           string          `json:"id"`
	ParentID     *string         `json:"parentId,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Highlights   []string        `json:"highlights"`
	AssignedTo   string          `json:"assignedTo"`
	Deadline     string          `json:"deadline"`
	Priority     string          `json:"priority"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	Response     *responseDTO    `json:"response,omitempty"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
	Presentation presentationDTO `json:"presentation"`
}

type responseDTO struct {
	SubmittedAt          string `json:"submittedAt"`
	WorkStatus           string `json:"workStatus"`
	ResponseDescription  string `json:"responseDescription"`
	CompletionPercentage int    `json:"completionPercentage"`
}

type presentationDTO struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

func toPresentationDTO(status schedule.Status) presentationDTO {
	return presentationDTO{Kind: string(status.Kind), Label: status.Label}
}

func toDelegationDTO(record application.DelegationRecord, now time.Time) delegationDTO {
	highlights := record.Highlights
	if highlights == nil {
		highlights = []string{}
	}
	dto := delegationDTO{
		ID:           record.ID,
		ParentID:     record.ParentID,
		Title:        record.Title,
		Description:  record.Description,
		Highlights:   highlights,
		AssignedTo:   record.AssignedTo,
		Deadline:     formatTime(record.Deadline.In(now.Location())),
		Priority:     string(record.Priority),
		Status:       string(record.Status),
		Progress:     record.Progress,
		CreatedAt:    formatTime(record.CreatedAt),
		UpdatedAt:    formatTime(record.UpdatedAt),
		Presentation: toPresentationDTO(application.ResolveRecordStatus(record, now)),
	}
	if record.Response != nil {
		dto.Response = &responseDTO{
			SubmittedAt:          formatTime(record.Response.SubmittedAt),
			WorkStatus:           string(record.Response.WorkStatus),
			ResponseDescription:  record.Response.Description,
			CompletionPercentage: record.Response.CompletionPercentage,
		}
	}
	return dto
}

func buildRecordFilter(values url.Values) (application.RecordFilter, error) {
	var filter application.RecordFilter
	if assignee := strings.TrimSpace(values.Get("assignedTo")); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if parent := strings.TrimSpace(values.Get("parentId")); parent != "" {
		filter.ParentID = &parent
	}
	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		date, err := schedule.ParseDate(raw)
		if err != nil {
			return filter, &application.ValidationError{FieldErrors: map[string]string{"date": "must be YYYY-MM-DD"}}
		}
		filter.DeadlineOn = &date
	}
	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		status := application.DelegationStatus(raw)
		filter.Status = &status
	}
	return filter, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
