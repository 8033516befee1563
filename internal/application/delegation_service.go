package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/hr-delegation/internal/persistence"
)

// DelegationRepository captures the persistence operations needed by the service.
type DelegationRepository interface {
	CreateRecord(ctx context.Context, record DelegationRecord) (DelegationRecord, error)
	UpdateRecord(ctx context.Context, record DelegationRecord) (DelegationRecord, error)
	GetRecord(ctx context.Context, id string) (DelegationRecord, error)
	ListRecords(ctx context.Context, filter DelegationRepositoryFilter) ([]DelegationRecord, error)
	DeleteRecord(ctx context.Context, id string) error
}

// PersonDirectory resolves assignees. When configured, assignees must exist
// and forwards must move strictly down the hierarchy.
type PersonDirectory interface {
	GetPerson(ctx context.Context, id string) (Person, error)
}

// DelegationService implements the delegation chain: create, forward, edit,
// respond and remove.
type DelegationService struct {
	records     DelegationRepository
	people      PersonDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDelegationService constructs a delegation service with the provided dependencies.
func NewDelegationService(records DelegationRepository, people PersonDirectory, idGenerator func() string, now func() time.Time) *DelegationService {
	return NewDelegationServiceWithLogger(records, people, idGenerator, now, nil)
}

// NewDelegationServiceWithLogger constructs a delegation service with a specified logger.
func NewDelegationServiceWithLogger(records DelegationRepository, people PersonDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DelegationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DelegationService{
		records:     records,
		people:      people,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *DelegationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DelegationService", operation, attrs...)
}

// Now returns the service clock reading used for presentation status.
func (s *DelegationService) Now() time.Time {
	return s.now()
}

// CreateRoot validates input and persists a new record with no parent.
func (s *DelegationService) CreateRoot(ctx context.Context, input DelegationInput) (record DelegationRecord, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("delegation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoot", "assigned_to", input.AssignedTo)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create record", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_id", record.ID).InfoContext(ctx, "record created")
	}()

	vErr := validateDelegationInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.ensureAssignee(ctx, input.AssignedTo); err != nil {
		return
	}

	record, err = s.records.CreateRecord(ctx, s.newRecord(input, nil))
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Forward creates a new record pointing at sourceID. The new record is built
// only from input; the source record is read and never written.
func (s *DelegationService) Forward(ctx context.Context, sourceID string, input DelegationInput) (record DelegationRecord, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("delegation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Forward", "source_id", sourceID, "assigned_to", input.AssignedTo)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to forward record", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("record_id", record.ID).InfoContext(ctx, "record forwarded")
	}()

	var source DelegationRecord
	source, err = s.records.GetRecord(ctx, sourceID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := validateDelegationInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.ensureAssignee(ctx, input.AssignedTo); err != nil {
		return
	}
	if err = s.ensureForwardsDown(ctx, source.AssignedTo, input.AssignedTo); err != nil {
		return
	}

	parentID := source.ID
	record, err = s.records.CreateRecord(ctx, s.newRecord(input, &parentID))
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// EditForwarded applies an in-place status, progress or priority patch.
// Progress may decrease.
func (s *DelegationService) EditForwarded(ctx context.Context, id string, patch RecordPatch) (record DelegationRecord, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("delegation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "EditForwarded", "record_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to edit record", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "record edited", "status", record.Status, "progress", record.Progress)
	}()

	vErr := validatePatch(patch)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing DelegationRecord
	existing, err = s.records.GetRecord(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	updated := existing
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.Progress != nil {
		updated.Progress = *patch.Progress
	}
	if patch.Priority != nil {
		updated.Priority = *patch.Priority
	}
	updated.UpdatedAt = s.now()

	record, err = s.records.UpdateRecord(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Update replaces the descriptive fields, assignee, deadline and priority of a record.
func (s *DelegationService) Update(ctx context.Context, id string, input DelegationInput) (record DelegationRecord, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("delegation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "record_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update record", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "record updated")
	}()

	var existing DelegationRecord
	existing, err = s.records.GetRecord(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := validateDelegationInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.ensureAssignee(ctx, input.AssignedTo); err != nil {
		return
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Description = strings.TrimSpace(input.Description)
	updated.Highlights = filterHighlights(input.Highlights)
	updated.AssignedTo = strings.TrimSpace(input.AssignedTo)
	updated.Deadline = input.Deadline
	updated.Priority = priorityOrDefault(input.Priority)
	updated.UpdatedAt = s.now()

	record, err = s.records.UpdateRecord(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// AttachResponse sets the response on a record. A later call replaces the
// earlier response entirely.
func (s *DelegationService) AttachResponse(ctx context.Context, id string, input ResponseInput) (record DelegationRecord, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("delegation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AttachResponse", "record_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to attach response", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "response attached", "work_status", input.WorkStatus)
	}()

	vErr := validateResponseInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing DelegationRecord
	existing, err = s.records.GetRecord(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	now := s.now()
	submittedAt := now
	if input.SubmittedAt != nil {
		submittedAt = *input.SubmittedAt
	}

	updated := existing
	updated.Response = &Response{
		SubmittedAt:          submittedAt,
		WorkStatus:           input.WorkStatus,
		Description:          strings.TrimSpace(input.Description),
		CompletionPercentage: input.CompletionPercentage,
	}
	updated.UpdatedAt = now

	record, err = s.records.UpdateRecord(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Remove deletes a record. Records forwarded from it keep their parent reference.
func (s *DelegationService) Remove(ctx context.Context, id string) error {
	if s == nil || s.records == nil {
		return fmt.Errorf("delegation repository not configured")
	}

	logger := s.loggerWith(ctx, "Remove", "record_id", id)
	if err := s.records.DeleteRecord(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to remove record", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "record removed")
	return nil
}

// Get returns a record by id.
func (s *DelegationService) Get(ctx context.Context, id string) (DelegationRecord, error) {
	if s == nil || s.records == nil {
		return DelegationRecord{}, fmt.Errorf("delegation repository not configured")
	}
	record, err := s.records.GetRecord(ctx, id)
	if err != nil {
		return DelegationRecord{}, mapRepoError(err)
	}
	return record, nil
}

// List returns records matching filter ordered by deadline. DeadlineOn selects
// records whose deadline falls on that date in the service clock's location.
func (s *DelegationService) List(ctx context.Context, filter RecordFilter) (records []DelegationRecord, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("delegation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "List")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list records", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "records listed", "count", len(records))
	}()

	if filter.Status != nil && !filter.Status.Valid() {
		err = newValidationError("status", "must be one of pending, in-progress, completed, overdue, cancelled")
		return
	}

	repoFilter := DelegationRepositoryFilter{
		AssignedTo: filter.AssignedTo,
		ParentID:   filter.ParentID,
	}
	if filter.DeadlineOn != nil {
		loc := s.now().Location()
		from := filter.DeadlineOn.At(0, loc)
		to := filter.DeadlineOn.AddDays(1).At(0, loc)
		repoFilter.DeadlineFrom = &from
		repoFilter.DeadlineTo = &to
	}
	if filter.Status != nil {
		repoFilter.Statuses = []DelegationStatus{*filter.Status}
	}

	records, err = s.records.ListRecords(ctx, repoFilter)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Children lists the records forwarded from id. The parent must exist.
func (s *DelegationService) Children(ctx context.Context, id string) ([]DelegationRecord, error) {
	if s == nil || s.records == nil {
		return nil, fmt.Errorf("delegation repository not configured")
	}
	if _, err := s.records.GetRecord(ctx, id); err != nil {
		return nil, mapRepoError(err)
	}
	parentID := id
	records, err := s.records.ListRecords(ctx, DelegationRepositoryFilter{ParentID: &parentID})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return records, nil
}

// SweepOverdue marks pending and in-progress records whose deadline has passed
// as overdue and returns how many were changed.
func (s *DelegationService) SweepOverdue(ctx context.Context) (count int, err error) {
	if s == nil || s.records == nil {
		err = fmt.Errorf("delegation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SweepOverdue")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "overdue sweep failed", "error", err, "error_kind", ErrorKind(err), "updated", count)
			return
		}
		if count > 0 {
			logger.InfoContext(ctx, "overdue sweep completed", "updated", count)
		}
	}()

	now := s.now()
	var due []DelegationRecord
	due, err = s.records.ListRecords(ctx, DelegationRepositoryFilter{
		DeadlineTo: &now,
		Statuses:   []DelegationStatus{StatusPending, StatusInProgress},
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	for _, record := range due {
		record.Status = StatusOverdue
		record.UpdatedAt = now
		if _, err = s.records.UpdateRecord(ctx, record); err != nil {
			if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
				err = nil
				continue
			}
			err = mapRepoError(err)
			return
		}
		count++
	}
	return
}

func (s *DelegationService) newRecord(input DelegationInput, parentID *string) DelegationRecord {
	now := s.now()
	return DelegationRecord{
		ID:          s.idGenerator(),
		ParentID:    parentID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Highlights:  filterHighlights(input.Highlights),
		AssignedTo:  strings.TrimSpace(input.AssignedTo),
		Deadline:    input.Deadline,
		Priority:    priorityOrDefault(input.Priority),
		Status:      StatusPending,
		Progress:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *DelegationService) ensureAssignee(ctx context.Context, assignee string) error {
	if s.people == nil {
		return nil
	}
	if _, err := s.people.GetPerson(ctx, strings.TrimSpace(assignee)); err != nil {
		if isNotFoundError(err) {
			return newValidationError("assignedTo", "unknown person")
		}
		return err
	}
	return nil
}

func (s *DelegationService) ensureForwardsDown(ctx context.Context, fromID, toID string) error {
	if s.people == nil {
		return nil
	}
	from, err := s.people.GetPerson(ctx, fromID)
	if err != nil {
		if isNotFoundError(err) {
			return newValidationError("assignedTo", "source assignee is no longer in the directory")
		}
		return err
	}
	to, err := s.people.GetPerson(ctx, strings.TrimSpace(toID))
	if err != nil {
		if isNotFoundError(err) {
			return newValidationError("assignedTo", "unknown person")
		}
		return err
	}
	if to.Role.Rank() >= from.Role.Rank() {
		return newValidationError("assignedTo", fmt.Sprintf("must rank below %s in the hierarchy", from.Role))
	}
	return nil
}

func validateDelegationInput(input DelegationInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		vErr.add("description", "description is required")
	}
	if strings.TrimSpace(input.AssignedTo) == "" {
		vErr.add("assignedTo", "assignee is required")
	}
	if input.Deadline.IsZero() {
		vErr.add("deadline", "deadline is required")
	}
	if input.Priority != "" && !input.Priority.Valid() {
		vErr.add("priority", "must be one of low, medium, high")
	}
	return vErr
}

func validatePatch(patch RecordPatch) *ValidationError {
	vErr := &ValidationError{}
	if patch.IsEmpty() {
		vErr.add("patch", "at least one of status, progress or priority is required")
		return vErr
	}
	if patch.Status != nil && !patch.Status.Valid() {
		vErr.add("status", "must be one of pending, in-progress, completed, overdue, cancelled")
	}
	if patch.Progress != nil && (*patch.Progress < 0 || *patch.Progress > 100) {
		vErr.add("progress", "must be between 0 and 100")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		vErr.add("priority", "must be one of low, medium, high")
	}
	return vErr
}

func validateResponseInput(input ResponseInput) *ValidationError {
	vErr := &ValidationError{}
	if !input.WorkStatus.Valid() {
		vErr.add("workStatus", "must be one of pending, in-progress, completed")
	}
	if input.CompletionPercentage < 0 || input.CompletionPercentage > 100 {
		vErr.add("completionPercentage", "must be between 0 and 100")
	}
	if strings.TrimSpace(input.Description) == "" {
		vErr.add("responseDescription", "response description is required")
	}
	return vErr
}

// filterHighlights keeps non-blank entries in order. A nil list stands for the
// single empty placeholder and therefore yields an empty list.
func filterHighlights(highlights []string) []string {
	if highlights == nil {
		highlights = []string{""}
	}
	out := make([]string, 0, len(highlights))
	for _, h := range highlights {
		if trimmed := strings.TrimSpace(h); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func priorityOrDefault(p Priority) Priority {
	if p == "" {
		return PriorityMedium
	}
	return p
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation):
		return newValidationError("record", "violates a storage constraint")
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return newValidationError("record", "references a missing record")
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
