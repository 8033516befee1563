package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/hr-delegation/internal/persistence"
)

// DelegationRepository implements persistence.DelegationRepository using SQLite
type DelegationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewDelegationRepository creates a new SQLite delegation repository
func NewDelegationRepository(pool *ConnectionPool) *DelegationRepository {
	return &DelegationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const delegationColumns = `
	id, parent_id, title, description, highlights, assigned_to, deadline, priority, status, progress,
	response_submitted_at, response_work_status, response_description, response_completion,
	created_at, updated_at`

// CreateRecord inserts a new delegation record
func (r *DelegationRepository) CreateRecord(ctx context.Context, record persistence.DelegationRecord) error {
	if record.ID == "" {
		return persistence.ErrConstraintViolation
	}

	highlights, err := encodeHighlights(record.Highlights)
	if err != nil {
		return err
	}
	submittedAt, workStatus, responseDescription, completion := responseColumns(record.Response)

	query := `
		INSERT INTO delegation_records (` + delegationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.helper.Exec(ctx, query,
		record.ID,
		nullableString(record.ParentID),
		record.Title,
		record.Description,
		highlights,
		record.AssignedTo,
		formatTime(record.Deadline),
		record.Priority,
		record.Status,
		record.Progress,
		submittedAt,
		workStatus,
		responseDescription,
		completion,
		formatTime(record.CreatedAt),
		formatTime(record.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateRecord overwrites the mutable columns of an existing record
func (r *DelegationRepository) UpdateRecord(ctx context.Context, record persistence.DelegationRecord) error {
	if record.ID == "" {
		return persistence.ErrConstraintViolation
	}

	highlights, err := encodeHighlights(record.Highlights)
	if err != nil {
		return err
	}
	submittedAt, workStatus, responseDescription, completion := responseColumns(record.Response)

	query := `
		UPDATE delegation_records
		SET parent_id = ?, title = ?, description = ?, highlights = ?, assigned_to = ?, deadline = ?,
			priority = ?, status = ?, progress = ?,
			response_submitted_at = ?, response_work_status = ?, response_description = ?, response_completion = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		nullableString(record.ParentID),
		record.Title,
		record.Description,
		highlights,
		record.AssignedTo,
		formatTime(record.Deadline),
		record.Priority,
		record.Status,
		record.Progress,
		submittedAt,
		workStatus,
		responseDescription,
		completion,
		formatTime(record.UpdatedAt),
		record.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// GetRecord retrieves a record by ID
func (r *DelegationRepository) GetRecord(ctx context.Context, id string) (persistence.DelegationRecord, error) {
	if id == "" {
		return persistence.DelegationRecord{}, persistence.ErrNotFound
	}

	query := `SELECT ` + delegationColumns + ` FROM delegation_records WHERE id = ?`
	record, err := scanDelegation(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.DelegationRecord{}, persistence.ErrNotFound
		}
		return persistence.DelegationRecord{}, r.mapper.MapError(err)
	}
	return record, nil
}

// ListRecords returns matching records ordered by deadline then ID
func (r *DelegationRepository) ListRecords(ctx context.Context, filter persistence.DelegationFilter) ([]persistence.DelegationRecord, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.AssignedTo != nil {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, *filter.AssignedTo)
	}
	if filter.ParentID != nil {
		conditions = append(conditions, "parent_id = ?")
		args = append(args, *filter.ParentID)
	}
	if filter.DeadlineFrom != nil {
		conditions = append(conditions, "deadline >= ?")
		args = append(args, formatTime(*filter.DeadlineFrom))
	}
	if filter.DeadlineTo != nil {
		conditions = append(conditions, "deadline < ?")
		args = append(args, formatTime(*filter.DeadlineTo))
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Statuses)), ", ")
		conditions = append(conditions, "status IN ("+placeholders+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}

	query := `SELECT ` + delegationColumns + ` FROM delegation_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY deadline ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	records := make([]persistence.DelegationRecord, 0)
	for rows.Next() {
		record, err := scanDelegation(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return records, nil
}

// DeleteRecord removes a record. Children keep their parent reference.
func (r *DelegationRepository) DeleteRecord(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM delegation_records WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

func scanDelegation(row rowScanner) (persistence.DelegationRecord, error) {
	var (
		record                                   persistence.DelegationRecord
		parentID                                 sql.NullString
		highlights, deadline, createdAt, updated string
		submittedAt, workStatus, responseDesc    sql.NullString
		completion                               sql.NullInt64
	)
	err := row.Scan(
		&record.ID,
		&parentID,
		&record.Title,
		&record.Description,
		&highlights,
		&record.AssignedTo,
		&deadline,
		&record.Priority,
		&record.Status,
		&record.Progress,
		&submittedAt,
		&workStatus,
		&responseDesc,
		&completion,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.DelegationRecord{}, err
	}

	if parentID.Valid {
		record.ParentID = &parentID.String
	}
	if err := json.Unmarshal([]byte(highlights), &record.Highlights); err != nil {
		return persistence.DelegationRecord{}, fmt.Errorf("failed to decode highlights: %w", err)
	}
	if record.Deadline, err = parseTime(deadline); err != nil {
		return persistence.DelegationRecord{}, fmt.Errorf("failed to parse deadline: %w", err)
	}
	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.DelegationRecord{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if record.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.DelegationRecord{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if submittedAt.Valid {
		response := persistence.Response{
			WorkStatus:           workStatus.String,
			Description:          responseDesc.String,
			CompletionPercentage: int(completion.Int64),
		}
		if response.SubmittedAt, err = parseTime(submittedAt.String); err != nil {
			return persistence.DelegationRecord{}, fmt.Errorf("failed to parse response_submitted_at: %w", err)
		}
		record.Response = &response
	}
	return record, nil
}

func encodeHighlights(highlights []string) (string, error) {
	if highlights == nil {
		highlights = []string{}
	}
	data, err := json.Marshal(highlights)
	if err != nil {
		return "", fmt.Errorf("failed to encode highlights: %w", err)
	}
	return string(data), nil
}

func responseColumns(response *persistence.Response) (submittedAt, workStatus, description, completion any) {
	if response == nil {
		return nil, nil, nil, nil
	}
	return formatTime(response.SubmittedAt), response.WorkStatus, response.Description, response.CompletionPercentage
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
