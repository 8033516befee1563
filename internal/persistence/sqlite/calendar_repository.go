package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/hr-delegation/internal/persistence"
)

// CalendarEventRepository implements persistence.CalendarEventRepository using SQLite
type CalendarEventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCalendarEventRepository creates a new SQLite calendar repository
func NewCalendarEventRepository(pool *ConnectionPool) *CalendarEventRepository {
	return &CalendarEventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const calendarEventColumns = `
	id, date, status_kind, start_seconds, end_seconds, title, description, recurrence_rule, created_at, updated_at`

// CreateEvent inserts a calendar entry and its departments
func (r *CalendarEventRepository) CreateEvent(ctx context.Context, event persistence.CalendarEvent) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO calendar_events (` + calendarEventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query,
			event.ID,
			event.Date,
			event.StatusKind,
			nullableInt(event.StartSeconds),
			nullableInt(event.EndSeconds),
			event.Title,
			event.Description,
			nullableString(event.RecurrenceRule),
			formatTime(event.CreatedAt),
			formatTime(event.UpdatedAt),
		); err != nil {
			return err
		}

		for i, department := range event.Departments {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO calendar_event_departments (event_id, department_id, position) VALUES (?, ?, ?)`,
				event.ID, department, i,
			); err != nil {
				return fmt.Errorf("failed to insert calendar department %s: %w", department, err)
			}
		}
		return nil
	})
}

// GetEvent retrieves a calendar entry by ID
func (r *CalendarEventRepository) GetEvent(ctx context.Context, id string) (persistence.CalendarEvent, error) {
	if id == "" {
		return persistence.CalendarEvent{}, persistence.ErrNotFound
	}

	query := `SELECT ` + calendarEventColumns + ` FROM calendar_events WHERE id = ?`
	event, err := scanCalendarEvent(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.CalendarEvent{}, persistence.ErrNotFound
		}
		return persistence.CalendarEvent{}, r.mapper.MapError(err)
	}

	departments, err := r.departmentsFor(ctx, []string{id})
	if err != nil {
		return persistence.CalendarEvent{}, err
	}
	event.Departments = departments[id]
	return event, nil
}

// ListEvents returns matching entries ordered by date then ID
func (r *CalendarEventRepository) ListEvents(ctx context.Context, filter persistence.CalendarEventFilter) ([]persistence.CalendarEvent, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.To != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.To)
	}
	if filter.From != nil {
		conditions = append(conditions, "(date >= ? OR recurrence_rule IS NOT NULL)")
		args = append(args, *filter.From)
	}
	if filter.DepartmentID != nil {
		conditions = append(conditions, "id IN (SELECT event_id FROM calendar_event_departments WHERE department_id = ?)")
		args = append(args, *filter.DepartmentID)
	}

	query := `SELECT ` + calendarEventColumns + ` FROM calendar_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}

	events := make([]persistence.CalendarEvent, 0)
	ids := make([]string, 0)
	for rows.Next() {
		event, err := scanCalendarEvent(rows)
		if err != nil {
			rows.Close()
			return nil, r.mapper.MapError(err)
		}
		events = append(events, event)
		ids = append(ids, event.ID)
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
	for i := range events {
		events[i].Departments = departments[events[i].ID]
	}
	return events, nil
}

// DeleteEvent removes a calendar entry by ID
func (r *CalendarEventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

func (r *CalendarEventRepository) departmentsFor(ctx context.Context, ids []string) (map[string][]string, error) {
	byEvent := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return byEvent, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `
		SELECT event_id, department_id
		FROM calendar_event_departments
		WHERE event_id IN (` + placeholders + `)
		ORDER BY event_id ASC, position ASC
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
		var eventID, department string
		if err := rows.Scan(&eventID, &department); err != nil {
			return nil, r.mapper.MapError(err)
		}
		byEvent[eventID] = append(byEvent[eventID], department)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return byEvent, nil
}

func scanCalendarEvent(row rowScanner) (persistence.CalendarEvent, error) {
	var (
		event                persistence.CalendarEvent
		start, end           sql.NullInt64
		rule                 sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&event.ID,
		&event.Date,
		&event.StatusKind,
		&start,
		&end,
		&event.Title,
		&event.Description,
		&rule,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.CalendarEvent{}, err
	}

	if start.Valid {
		v := int(start.Int64)
		event.StartSeconds = &v
	}
	if end.Valid {
		v := int(end.Int64)
		event.EndSeconds = &v
	}
	if rule.Valid {
		event.RecurrenceRule = &rule.String
	}
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.CalendarEvent{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if event.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.CalendarEvent{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return event, nil
}
