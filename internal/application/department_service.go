package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// DepartmentRepository captures the persistence operations needed by the department service.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department Department) (Department, error)
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	DeleteDepartment(ctx context.Context, id string) error
}

// DepartmentService manages organization metadata and answers existence checks
// for meetings and calendar entries.
type DepartmentService struct {
	departments DepartmentRepository
	cache       *departmentCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDepartmentService constructs a department service. A non-positive cacheTTL
// uses the cache default of one minute.
func NewDepartmentService(departments DepartmentRepository, idGenerator func() string, now func() time.Time, cacheTTL time.Duration) *DepartmentService {
	return NewDepartmentServiceWithLogger(departments, idGenerator, now, cacheTTL, nil)
}

// NewDepartmentServiceWithLogger constructs a department service with a specified logger.
func NewDepartmentServiceWithLogger(departments DepartmentRepository, idGenerator func() string, now func() time.Time, cacheTTL time.Duration, logger *slog.Logger) *DepartmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DepartmentService{
		departments: departments,
		cache:       newDepartmentCache(cacheTTL, 0, now),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *DepartmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DepartmentService", operation, attrs...)
}

// CreateDepartment validates input and persists a department. Codes are upper-cased
// and must be unique when present.
func (s *DepartmentService) CreateDepartment(ctx context.Context, input DepartmentInput) (department Department, err error) {
	if s == nil || s.departments == nil {
		err = fmt.Errorf("department repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateDepartment", "code", input.Code)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create department", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("department_id", department.ID).InfoContext(ctx, "department created")
	}()

	vErr := &ValidationError{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if strings.ContainsAny(code, " \t") {
		vErr.add("code", "code must not contain whitespace")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	department, err = s.departments.CreateDepartment(ctx, Department{
		ID:          s.idGenerator(),
		Name:        name,
		Code:        code,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}
	s.cache.Store(department.ID, true)
	return
}

// GetDepartment returns a department by id.
func (s *DepartmentService) GetDepartment(ctx context.Context, id string) (Department, error) {
	if s == nil || s.departments == nil {
		return Department{}, fmt.Errorf("department repository not configured")
	}
	department, err := s.departments.GetDepartment(ctx, id)
	if err != nil {
		return Department{}, mapRepoError(err)
	}
	return department, nil
}

// ListDepartments returns all departments ordered by name.
func (s *DepartmentService) ListDepartments(ctx context.Context) ([]Department, error) {
	if s == nil || s.departments == nil {
		return nil, fmt.Errorf("department repository not configured")
	}
	departments, err := s.departments.ListDepartments(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	out := make([]Department, len(departments))
	copy(out, departments)
	sort.SliceStable(out, func(i, j int) bool {
		if strings.EqualFold(out[i].Name, out[j].Name) {
			return out[i].ID < out[j].ID
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// DeleteDepartment removes a department. Meetings and calendar entries drop their
// reference to it; people keep their record with no department.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id string) error {
	if s == nil || s.departments == nil {
		return fmt.Errorf("department repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteDepartment", "department_id", id)
	if err := s.departments.DeleteDepartment(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete department", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	s.cache.Forget(id)

	logger.InfoContext(ctx, "department deleted")
	return nil
}

// DepartmentExists implements DepartmentCatalog. Lookups are cached briefly.
func (s *DepartmentService) DepartmentExists(ctx context.Context, id string) (bool, error) {
	if s == nil || s.departments == nil {
		return false, fmt.Errorf("department repository not configured")
	}
	if exists, ok := s.cache.Get(id); ok {
		return exists, nil
	}

	_, err := s.departments.GetDepartment(ctx, id)
	switch {
	case err == nil:
		s.cache.Store(id, true)
		return true, nil
	case isNotFoundError(err):
		s.cache.Store(id, false)
		return false, nil
	default:
		return false, err
	}
}
