package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

// PersonRepository captures the persistence operations needed by the person service.
type PersonRepository interface {
	CreatePerson(ctx context.Context, person Person) (Person, error)
	GetPerson(ctx context.Context, id string) (Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
}

// PersonService manages the members of the delegation hierarchy.
type PersonService struct {
	people      PersonRepository
	departments DepartmentCatalog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPersonService wires dependencies for the person service.
func NewPersonService(people PersonRepository, departments DepartmentCatalog, idGenerator func() string, now func() time.Time) *PersonService {
	return NewPersonServiceWithLogger(people, departments, idGenerator, now, nil)
}

// NewPersonServiceWithLogger wires dependencies with a specified logger.
func NewPersonServiceWithLogger(people PersonRepository, departments DepartmentCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PersonService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PersonService{
		people:      people,
		departments: departments,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreatePerson validates input and persists a person.
func (s *PersonService) CreatePerson(ctx context.Context, input PersonInput) (person Person, err error) {
	if s == nil || s.people == nil {
		err = fmt.Errorf("person repository not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "PersonService", "CreatePerson", "role", input.Role)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create person", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("person_id", person.ID).InfoContext(ctx, "person created")
	}()

	normalized := normalizePersonInput(input)
	vErr := validatePersonInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var departmentID *string
	if normalized.DepartmentID != "" {
		if s.departments != nil {
			var exists bool
			exists, err = s.departments.DepartmentExists(ctx, normalized.DepartmentID)
			if err != nil {
				return
			}
			if !exists {
				err = newValidationError("departmentId", "department does not exist")
				return
			}
		}
		id := normalized.DepartmentID
		departmentID = &id
	}

	now := s.now()
	person, err = s.people.CreatePerson(ctx, Person{
		ID:           s.idGenerator(),
		Name:         normalized.Name,
		Email:        normalized.Email,
		Role:         normalized.Role,
		DepartmentID: departmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetPerson implements PersonDirectory.
func (s *PersonService) GetPerson(ctx context.Context, id string) (Person, error) {
	if s == nil || s.people == nil {
		return Person{}, fmt.Errorf("person repository not configured")
	}
	person, err := s.people.GetPerson(ctx, id)
	if err != nil {
		return Person{}, mapRepoError(err)
	}
	return person, nil
}

// ListPeople returns everyone ordered from the top of the hierarchy down, then by name.
func (s *PersonService) ListPeople(ctx context.Context) ([]Person, error) {
	if s == nil || s.people == nil {
		return nil, fmt.Errorf("person repository not configured")
	}
	people, err := s.people.ListPeople(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]Person, len(people))
	copy(out, people)
	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Role.Rank(), out[j].Role.Rank(); ri != rj {
			return ri > rj
		}
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func normalizePersonInput(input PersonInput) PersonInput {
	return PersonInput{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Role:         Role(strings.ToLower(strings.TrimSpace(string(input.Role)))),
		DepartmentID: strings.TrimSpace(input.DepartmentID),
	}
}

func validatePersonInput(input PersonInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}

	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			vErr.add("email", "email is invalid")
		}
	}

	if !input.Role.Valid() {
		vErr.add("role", "must be one of ceo, hr, team_leader, sales_employee")
	}

	return vErr
}
