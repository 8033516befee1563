package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/hr-delegation/internal/application"
)

type departmentService interface {
	CreateDepartment(ctx context.Context, input application.DepartmentInput) (application.Department, error)
	GetDepartment(ctx context.Context, id string) (application.Department, error)
	ListDepartments(ctx context.Context) ([]application.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

type personService interface {
	CreatePerson(ctx context.Context, input application.PersonInput) (application.Person, error)
	GetPerson(ctx context.Context, id string) (application.Person, error)
	ListPeople(ctx context.Context) ([]application.Person, error)
}

// DirectoryHandler exposes departments and people.
type DirectoryHandler struct {
	departments departmentService
	people      personService
	responder   responder
	logger      *slog.Logger
}

func NewDirectoryHandler(departments departmentService, people personService, logger *slog.Logger) *DirectoryHandler {
	base := defaultLogger(logger)
	return &DirectoryHandler{
		departments: departments,
		people:      people,
		responder:   newResponder(base),
		logger:      base,
	}
}

func (h *DirectoryHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.departments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req departmentRequest
	if err := decodeBody(w, r, "department", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	department, err := h.departments.CreateDepartment(r.Context(), application.DepartmentInput{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "DirectoryHandler", "CreateDepartment", "department_id", department.ID).
		InfoContext(r.Context(), "department created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, departmentResponse{Department: toDepartmentDTO(department)})
}

func (h *DirectoryHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.departments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errMissingID)
		return
	}

	department, err := h.departments.GetDepartment(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, departmentResponse{Department: toDepartmentDTO(department)})
}

func (h *DirectoryHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.departments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	departments, err := h.departments.ListDepartments(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]departmentDTO, 0, len(departments))
	for _, department := range departments {
		out = append(out, toDepartmentDTO(department))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDepartmentsResponse{Departments: out})
}

func (h *DirectoryHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.departments == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errMissingID)
		return
	}

	if err := h.departments.DeleteDepartment(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *DirectoryHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.people == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req personRequest
	if err := decodeBody(w, r, "person", &req); err != nil {
		h.responder.writeDecodeError(w, r, err)
		return
	}

	person, err := h.people.CreatePerson(r.Context(), application.PersonInput{
		Name:         req.Name,
		Email:        req.Email,
		Role:         application.Role(req.Role),
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, personResponse{Person: toPersonDTO(person)})
}

func (h *DirectoryHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.people == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errMissingID)
		return
	}

	person, err := h.people.GetPerson(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, personResponse{Person: toPersonDTO(person)})
}

func (h *DirectoryHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.people == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	people, err := h.people.ListPeople(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]personDTO, 0, len(people))
	for _, person := range people {
		out = append(out, toPersonDTO(person))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPeopleResponse{People: out})
}

type departmentRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type personRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	DepartmentID string `json:"departmentId"`
}

type departmentResponse struct {
	Department departmentDTO `json:"department"`
}

type listDepartmentsResponse struct {
	Departments []departmentDTO `json:"departments"`
}

type personResponse struct {
	Person personDTO `json:"person"`
}

type listPeopleResponse struct {
	People []personDTO `json:"people"`
}

type departmentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type personDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	Role         string  `json:"role"`
	DepartmentID *string `json:"departmentId,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toDepartmentDTO(department application.Department) departmentDTO {
	return departmentDTO{
		ID:          department.ID,
		Name:        department.Name,
		Code:        department.Code,
		Description: department.Description,
		CreatedAt:   formatTime(department.CreatedAt),
		UpdatedAt:   formatTime(department.UpdatedAt),
	}
}

func toPersonDTO(person application.Person) personDTO {
	return personDTO{
		ID:           person.ID,
		Name:         person.Name,
		Email:        person.Email,
		Role:         string(person.Role),
		DepartmentID: person.DepartmentID,
		CreatedAt:    formatTime(person.CreatedAt),
		UpdatedAt:    formatTime(person.UpdatedAt),
	}
}
