package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/hr-delegation/internal/persistence"
)

// DirectoryRepository implements persistence.DepartmentRepository and
// persistence.PersonRepository using SQLite
type DirectoryRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewDirectoryRepository creates a new SQLite directory repository
func NewDirectoryRepository(pool *ConnectionPool) *DirectoryRepository {
	return &DirectoryRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateDepartment inserts a new department
func (r *DirectoryRepository) CreateDepartment(ctx context.Context, department persistence.Department) error {
	if department.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO departments (id, name, code, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		department.ID,
		department.Name,
		department.Code,
		department.Description,
		formatTime(department.CreatedAt),
		formatTime(department.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetDepartment retrieves a department by ID
func (r *DirectoryRepository) GetDepartment(ctx context.Context, id string) (persistence.Department, error) {
	if id == "" {
		return persistence.Department{}, persistence.ErrNotFound
	}

	query := `SELECT id, name, code, description, created_at, updated_at FROM departments WHERE id = ?`
	department, err := scanDepartment(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Department{}, persistence.ErrNotFound
		}
		return persistence.Department{}, r.mapper.MapError(err)
	}
	return department, nil
}

// ListDepartments returns all departments ordered by name then ID
func (r *DirectoryRepository) ListDepartments(ctx context.Context) ([]persistence.Department, error) {
	query := `
		SELECT id, name, code, description, created_at, updated_at
		FROM departments
		ORDER BY name ASC, id ASC
	`
	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	departments := make([]persistence.Department, 0)
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		departments = append(departments, department)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return departments, nil
}

// DeleteDepartment removes a department and its meeting and calendar associations
func (r *DirectoryRepository) DeleteDepartment(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM meeting_departments WHERE department_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_event_departments WHERE department_id = ?`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRowsAffected(result)
	})
}

// CreatePerson inserts a new person
func (r *DirectoryRepository) CreatePerson(ctx context.Context, person persistence.Person) error {
	if person.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO people (id, name, email, role, department_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		person.ID,
		person.Name,
		person.Email,
		person.Role,
		nullableString(person.DepartmentID),
		formatTime(person.CreatedAt),
		formatTime(person.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetPerson retrieves a person by ID
func (r *DirectoryRepository) GetPerson(ctx context.Context, id string) (persistence.Person, error) {
	if id == "" {
		return persistence.Person{}, persistence.ErrNotFound
	}

	query := `SELECT id, name, email, role, department_id, created_at, updated_at FROM people WHERE id = ?`
	person, err := scanPerson(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Person{}, persistence.ErrNotFound
		}
		return persistence.Person{}, r.mapper.MapError(err)
	}
	return person, nil
}

// ListPeople returns all people ordered by name then ID
func (r *DirectoryRepository) ListPeople(ctx context.Context) ([]persistence.Person, error) {
	query := `
		SELECT id, name, email, role, department_id, created_at, updated_at
		FROM people
		ORDER BY name ASC, id ASC
	`
	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	people := make([]persistence.Person, 0)
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return people, nil
}

func scanDepartment(row rowScanner) (persistence.Department, error) {
	var (
		department           persistence.Department
		createdAt, updatedAt string
	)
	err := row.Scan(&department.ID, &department.Name, &department.Code, &department.Description, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Department{}, err
	}
	if department.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Department{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if department.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Department{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return department, nil
}

func scanPerson(row rowScanner) (persistence.Person, error) {
	var (
		person               persistence.Person
		departmentID         sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&person.ID, &person.Name, &person.Email, &person.Role, &departmentID, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Person{}, err
	}
	if departmentID.Valid {
		person.DepartmentID = &departmentID.String
	}
	if person.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Person{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if person.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Person{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return person, nil
}
