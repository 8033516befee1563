// Package adapter translates between the application models and the
// persistence models so any persistence backend can serve the services.
package adapter

import (
	"context"

	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/persistence"
)

// Store is the full set of persistence repositories provided by a backend.
type Store interface {
	persistence.DelegationRepository
	persistence.MeetingRepository
	persistence.CalendarEventRepository
	persistence.DepartmentRepository
	persistence.PersonRepository
}

// Repositories exposes one application-facing adapter per service.
type Repositories struct {
	Delegations *DelegationRepository
	Meetings    *MeetingRepository
	Calendar    *CalendarRepository
	Departments *DepartmentRepository
	People      *PersonRepository
}

// New wraps a persistence backend.
func New(store Store) Repositories {
	return Repositories{
		Delegations: NewDelegationRepository(store),
		Meetings:    NewMeetingRepository(store),
		Calendar:    NewCalendarRepository(store),
		Departments: NewDepartmentRepository(store),
		People:      NewPersonRepository(store),
	}
}

// DelegationRepository implements application.DelegationRepository.
type DelegationRepository struct {
	repo persistence.DelegationRepository
}

func NewDelegationRepository(repo persistence.DelegationRepository) *DelegationRepository {
	return &DelegationRepository{repo: repo}
}

func (a *DelegationRepository) CreateRecord(ctx context.Context, record application.DelegationRecord) (application.DelegationRecord, error) {
	if err := a.repo.CreateRecord(ctx, toPersistenceRecord(record)); err != nil {
		return application.DelegationRecord{}, err
	}
	return a.GetRecord(ctx, record.ID)
}

func (a *DelegationRepository) UpdateRecord(ctx context.Context, record application.DelegationRecord) (application.DelegationRecord, error) {
	if err := a.repo.UpdateRecord(ctx, toPersistenceRecord(record)); err != nil {
		return application.DelegationRecord{}, err
	}
	return a.GetRecord(ctx, record.ID)
}

func (a *DelegationRepository) GetRecord(ctx context.Context, id string) (application.DelegationRecord, error) {
	stored, err := a.repo.GetRecord(ctx, id)
	if err != nil {
		return application.DelegationRecord{}, err
	}
	return toApplicationRecord(stored), nil
}

func (a *DelegationRepository) ListRecords(ctx context.Context, filter application.DelegationRepositoryFilter) ([]application.DelegationRecord, error) {
	models, err := a.repo.ListRecords(ctx, toPersistenceDelegationFilter(filter))
	if err != nil {
		return nil, err
	}
	records := make([]application.DelegationRecord, 0, len(models))
	for _, model := range models {
		records = append(records, toApplicationRecord(model))
	}
	return records, nil
}

func (a *DelegationRepository) DeleteRecord(ctx context.Context, id string) error {
	return a.repo.DeleteRecord(ctx, id)
}

// MeetingRepository implements application.MeetingRepository and application.MeetingLister.
type MeetingRepository struct {
	repo persistence.MeetingRepository
}

func NewMeetingRepository(repo persistence.MeetingRepository) *MeetingRepository {
	return &MeetingRepository{repo: repo}
}

func (a *MeetingRepository) CreateMeeting(ctx context.Context, meeting application.Meeting) (application.Meeting, error) {
	if err := a.repo.CreateMeeting(ctx, toPersistenceMeeting(meeting)); err != nil {
		return application.Meeting{}, err
	}
	return a.GetMeeting(ctx, meeting.ID)
}

func (a *MeetingRepository) UpdateMeeting(ctx context.Context, meeting application.Meeting) (application.Meeting, error) {
	if err := a.repo.UpdateMeeting(ctx, toPersistenceMeeting(meeting)); err != nil {
		return application.Meeting{}, err
	}
	return a.GetMeeting(ctx, meeting.ID)
}

func (a *MeetingRepository) GetMeeting(ctx context.Context, id string) (application.Meeting, error) {
	stored, err := a.repo.GetMeeting(ctx, id)
	if err != nil {
		return application.Meeting{}, err
	}
	return toApplicationMeeting(stored)
}

func (a *MeetingRepository) ListMeetings(ctx context.Context, filter application.MeetingFilter) ([]application.Meeting, error) {
	models, err := a.repo.ListMeetings(ctx, toPersistenceMeetingFilter(filter))
	if err != nil {
		return nil, err
	}
	meetings := make([]application.Meeting, 0, len(models))
	for _, model := range models {
		meeting, err := toApplicationMeeting(model)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	return meetings, nil
}

func (a *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	return a.repo.DeleteMeeting(ctx, id)
}

// CalendarRepository implements application.CalendarRepository.
type CalendarRepository struct {
	repo persistence.CalendarEventRepository
}

func NewCalendarRepository(repo persistence.CalendarEventRepository) *CalendarRepository {
	return &CalendarRepository{repo: repo}
}

func (a *CalendarRepository) CreateEvent(ctx context.Context, event application.CalendarEvent) (application.CalendarEvent, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.CalendarEvent{}, err
	}
	return a.GetEvent(ctx, event.ID)
}

func (a *CalendarRepository) GetEvent(ctx context.Context, id string) (application.CalendarEvent, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.CalendarEvent{}, err
	}
	return toApplicationEvent(stored)
}

func (a *CalendarRepository) ListEvents(ctx context.Context, filter application.CalendarEventFilter) ([]application.CalendarEvent, error) {
	models, err := a.repo.ListEvents(ctx, toPersistenceEventFilter(filter))
	if err != nil {
		return nil, err
	}
	events := make([]application.CalendarEvent, 0, len(models))
	for _, model := range models {
		event, err := toApplicationEvent(model)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (a *CalendarRepository) DeleteEvent(ctx context.Context, id string) error {
	return a.repo.DeleteEvent(ctx, id)
}

// DepartmentRepository implements application.DepartmentRepository.
type DepartmentRepository struct {
	repo persistence.DepartmentRepository
}

func NewDepartmentRepository(repo persistence.DepartmentRepository) *DepartmentRepository {
	return &DepartmentRepository{repo: repo}
}

func (a *DepartmentRepository) CreateDepartment(ctx context.Context, department application.Department) (application.Department, error) {
	if err := a.repo.CreateDepartment(ctx, toPersistenceDepartment(department)); err != nil {
		return application.Department{}, err
	}
	return a.GetDepartment(ctx, department.ID)
}

func (a *DepartmentRepository) GetDepartment(ctx context.Context, id string) (application.Department, error) {
	stored, err := a.repo.GetDepartment(ctx, id)
	if err != nil {
		return application.Department{}, err
	}
	return toApplicationDepartment(stored), nil
}

func (a *DepartmentRepository) ListDepartments(ctx context.Context) ([]application.Department, error) {
	models, err := a.repo.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	departments := make([]application.Department, 0, len(models))
	for _, model := range models {
		departments = append(departments, toApplicationDepartment(model))
	}
	return departments, nil
}

func (a *DepartmentRepository) DeleteDepartment(ctx context.Context, id string) error {
	return a.repo.DeleteDepartment(ctx, id)
}

// PersonRepository implements application.PersonRepository.
type PersonRepository struct {
	repo persistence.PersonRepository
}

func NewPersonRepository(repo persistence.PersonRepository) *PersonRepository {
	return &PersonRepository{repo: repo}
}

func (a *PersonRepository) CreatePerson(ctx context.Context, person application.Person) (application.Person, error) {
	if err := a.repo.CreatePerson(ctx, toPersistencePerson(person)); err != nil {
		return application.Person{}, err
	}
	return a.GetPerson(ctx, person.ID)
}

func (a *PersonRepository) GetPerson(ctx context.Context, id string) (application.Person, error) {
	stored, err := a.repo.GetPerson(ctx, id)
	if err != nil {
		return application.Person{}, err
	}
	return toApplicationPerson(stored), nil
}

func (a *PersonRepository) ListPeople(ctx context.Context) ([]application.Person, error) {
	models, err := a.repo.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	people := make([]application.Person, 0, len(models))
	for _, model := range models {
		people = append(people, toApplicationPerson(model))
	}
	return people, nil
}
