package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/hr-delegation/internal/persistence"
)

// MeetingRepository implements persistence.MeetingRepository using SQLite
type MeetingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewMeetingRepository creates a new SQLite meeting repository
func NewMeetingRepository(pool *ConnectionPool) *MeetingRepository {
	return &MeetingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const meetingColumns = `
	id, title, description, agenda, date, start_seconds, end_seconds, platform, meeting_link, location,
	meeting_type, priority, status, created_at, updated_at`

// CreateMeeting inserts a meeting and its departments in one transaction
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO meetings (` + meetingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query,
			meeting.ID,
			meeting.Title,
			meeting.Description,
			meeting.Agenda,
			meeting.Date,
			meeting.StartSeconds,
			meeting.EndSeconds,
			meeting.Platform,
			nullableString(meeting.MeetingLink),
			nullableString(meeting.Location),
			meeting.MeetingType,
			meeting.Priority,
			meeting.Status,
			formatTime(meeting.CreatedAt),
			formatTime(meeting.UpdatedAt),
		); err != nil {
			return err
		}
		return insertMeetingDepartments(ctx, tx, meeting.ID, meeting.Departments)
	})
}

// UpdateMeeting overwrites a meeting and replaces its department set
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE meetings
			SET title = ?, description = ?, agenda = ?, date = ?, start_seconds = ?, end_seconds = ?,
				platform = ?, meeting_link = ?, location = ?, meeting_type = ?, priority = ?, status = ?,
				updated_at = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			meeting.Title,
			meeting.Description,
			meeting.Agenda,
			meeting.Date,
			meeting.StartSeconds,
			meeting.EndSeconds,
			meeting.Platform,
			nullableString(meeting.MeetingLink),
			nullableString(meeting.Location),
			meeting.MeetingType,
			meeting.Priority,
			meeting.Status,
			formatTime(meeting.UpdatedAt),
			meeting.ID,
		)
		if err != nil {
			return err
		}
		if err := requireRowsAffected(result); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM meeting_departments WHERE meeting_id = ?`, meeting.ID); err != nil {
			return err
		}
		return insertMeetingDepartments(ctx, tx, meeting.ID, meeting.Departments)
	})
}

// GetMeeting retrieves a meeting with its departments
func (r *MeetingRepository) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	if id == "" {
		return persistence.Meeting{}, persistence.ErrNotFound
	}

	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = ?`
	meeting, err := scanMeeting(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Meeting{}, persistence.ErrNotFound
		}
		return persistence.Meeting{}, r.mapper.MapError(err)
	}

	departments, err := r.departmentsFor(ctx, []string{id})
	if err != nil {
		return persistence.Meeting{}, err
	}
	meeting.Departments = departments[id]
	return meeting, nil
}

// ListMeetings returns matching meetings ordered by date, start then ID
func (r *MeetingRepository) ListMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Date != nil {
		conditions = append(conditions, "date = ?")
		args = append(args, *filter.Date)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.DepartmentID != nil {
		conditions = append(conditions, "id IN (SELECT meeting_id FROM meeting_departments WHERE department_id = ?)")
		args = append(args, *filter.DepartmentID)
	}

	query := `SELECT ` + meetingColumns + ` FROM meetings`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, start_seconds ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}

	meetings := make([]persistence.Meeting, 0)
	ids := make([]string, 0)
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			rows.Close()
			return nil, r.mapper.MapError(err)
		}
		meetings = append(meetings, meeting)
		ids = append(ids, meeting.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, r.mapper.MapError(err)
	}
	rows.Close()

	departments, err := r.departmentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range meetings {
		meetings[i].Departments = departments[meetings[i].ID]
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting; its department rows cascade
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

func (r *MeetingRepository) departmentsFor(ctx context.Context, ids []string) (map[string][]persistence.MeetingDepartment, error) {
	byMeeting := make(map[string][]persistence.MeetingDepartment, len(ids))
	if len(ids) == 0 {
		return byMeeting, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `
		SELECT meeting_id, department_id, role
		FROM meeting_departments
		WHERE meeting_id IN (` + placeholders + `)
		ORDER BY meeting_id ASC, position ASC
	`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var meetingID string
		var department persistence.MeetingDepartment
		if err := rows.Scan(&meetingID, &department.DepartmentID, &department.Role); err != nil {
			return nil, r.mapper.MapError(err)
		}
		byMeeting[meetingID] = append(byMeeting[meetingID], department)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return byMeeting, nil
}

func insertMeetingDepartments(ctx context.Context, tx *sql.Tx, meetingID string, departments []persistence.MeetingDepartment) error {
	for i, department := range departments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meeting_departments (meeting_id, department_id, role, position) VALUES (?, ?, ?, ?)`,
			meetingID, department.DepartmentID, department.Role, i,
		); err != nil {
			return fmt.Errorf("failed to insert meeting department %s: %w", department.DepartmentID, err)
		}
	}
	return nil
}

func scanMeeting(row rowScanner) (persistence.Meeting, error) {
	var (
		meeting              persistence.Meeting
		link, location       sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&meeting.ID,
		&meeting.Title,
		&meeting.Description,
		&meeting.Agenda,
		&meeting.Date,
		&meeting.StartSeconds,
		&meeting.EndSeconds,
		&meeting.Platform,
		&link,
		&location,
		&meeting.MeetingType,
		&meeting.Priority,
		&meeting.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Meeting{}, err
	}

	if link.Valid {
		meeting.MeetingLink = &link.String
	}
	if location.Valid {
		meeting.Location = &location.String
	}
	if meeting.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if meeting.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return meeting, nil
}
