package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/example/hr-delegation/internal/persistence"
)

// Storage is a map-backed implementation of every persistence repository.
// It is safe for concurrent use.
type Storage struct {
	mu          sync.RWMutex
	records     map[string]persistence.DelegationRecord
	meetings    map[string]persistence.Meeting
	events      map[string]persistence.CalendarEvent
	departments map[string]persistence.Department
	people      map[string]persistence.Person
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		records:     make(map[string]persistence.DelegationRecord),
		meetings:    make(map[string]persistence.Meeting),
		events:      make(map[string]persistence.CalendarEvent),
		departments: make(map[string]persistence.Department),
		people:      make(map[string]persistence.Person),
	}
}

// Close is a no-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// --- DelegationRepository implementation ---

// CreateRecord stores a new delegation record.
func (s *Storage) CreateRecord(ctx context.Context, record persistence.DelegationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; ok {
		return fmt.Errorf("memory: record %s: %w", record.ID, persistence.ErrDuplicate)
	}
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// UpdateRecord replaces an existing record, keeping its creation time.
func (s *Storage) UpdateRecord(ctx context.Context, record persistence.DelegationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	record.CreatedAt = existing.CreatedAt
	s.records[record.ID] = cloneRecord(record)
	return nil
}

// GetRecord retrieves a record by ID.
func (s *Storage) GetRecord(ctx context.Context, id string) (persistence.DelegationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return persistence.DelegationRecord{}, persistence.ErrNotFound
	}
	return cloneRecord(record), nil
}

// ListRecords returns matching records ordered by deadline then ID.
func (s *Storage) ListRecords(ctx context.Context, filter persistence.DelegationFilter) ([]persistence.DelegationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]persistence.DelegationRecord, 0)
	for _, record := range s.records {
		if matchesDelegationFilter(record, filter) {
			records = append(records, cloneRecord(record))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Deadline.Equal(records[j].Deadline) {
			return records[i].ID < records[j].ID
		}
		return records[i].Deadline.Before(records[j].Deadline)
	})
	return records, nil
}

// DeleteRecord removes a record. Records forwarded from it are left in place.
func (s *Storage) DeleteRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func matchesDelegationFilter(record persistence.DelegationRecord, filter persistence.DelegationFilter) bool {
	if filter.AssignedTo != nil && record.AssignedTo != *filter.AssignedTo {
		return false
	}
	if filter.ParentID != nil && (record.ParentID == nil || *record.ParentID != *filter.ParentID) {
		return false
	}
	if filter.DeadlineFrom != nil && record.Deadline.Before(*filter.DeadlineFrom) {
		return false
	}
	if filter.DeadlineTo != nil && !record.Deadline.Before(*filter.DeadlineTo) {
		return false
	}
	if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, record.Status) {
		return false
	}
	return true
}

// --- MeetingRepository implementation ---

// CreateMeeting stores a new meeting with its departments.
func (s *Storage) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[meeting.ID]; ok {
		return fmt.Errorf("memory: meeting %s: %w", meeting.ID, persistence.ErrDuplicate)
	}
	s.meetings[meeting.ID] = cloneMeeting(meeting)
	return nil
}

// UpdateMeeting replaces an existing meeting and its department set.
func (s *Storage) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.meetings[meeting.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	meeting.CreatedAt = existing.CreatedAt
	s.meetings[meeting.ID] = cloneMeeting(meeting)
	return nil
}

// GetMeeting retrieves a meeting by ID.
func (s *Storage) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meeting, ok := s.meetings[id]
	if !ok {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	return cloneMeeting(meeting), nil
}

// ListMeetings returns matching meetings ordered by date, start then ID.
func (s *Storage) ListMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meetings := make([]persistence.Meeting, 0)
	for _, meeting := range s.meetings {
		if matchesMeetingFilter(meeting, filter) {
			meetings = append(meetings, cloneMeeting(meeting))
		}
	}

	sort.Slice(meetings, func(i, j int) bool {
		a, b := meetings[i], meetings[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartSeconds != b.StartSeconds {
			return a.StartSeconds < b.StartSeconds
		}
		return a.ID < b.ID
	})
	return meetings, nil
}

// DeleteMeeting removes a meeting by ID.
func (s *Storage) DeleteMeeting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.meetings, id)
	return nil
}

func matchesMeetingFilter(meeting persistence.Meeting, filter persistence.MeetingFilter) bool {
	if filter.Date != nil && meeting.Date != *filter.Date {
		return false
	}
	if filter.Status != nil && meeting.Status != *filter.Status {
		return false
	}
	if filter.DepartmentID != nil {
		found := false
		for _, dept := range meeting.Departments {
			if dept.DepartmentID == *filter.DepartmentID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// --- CalendarEventRepository implementation ---

// CreateEvent stores a new calendar entry.
func (s *Storage) CreateEvent(ctx context.Context, event persistence.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; ok {
		return fmt.Errorf("memory: calendar event %s: %w", event.ID, persistence.ErrDuplicate)
	}
	s.events[event.ID] = cloneEvent(event)
	return nil
}

// GetEvent retrieves a calendar entry by ID.
func (s *Storage) GetEvent(ctx context.Context, id string) (persistence.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return persistence.CalendarEvent{}, persistence.ErrNotFound
	}
	return cloneEvent(event), nil
}

// ListEvents returns matching entries ordered by date then ID.
func (s *Storage) ListEvents(ctx context.Context, filter persistence.CalendarEventFilter) ([]persistence.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]persistence.CalendarEvent, 0)
	for _, event := range s.events {
		if matchesEventFilter(event, filter) {
			events = append(events, cloneEvent(event))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// DeleteEvent removes a calendar entry by ID.
func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func matchesEventFilter(event persistence.CalendarEvent, filter persistence.CalendarEventFilter) bool {
	if filter.To != nil && event.Date > *filter.To {
		return false
	}
	if filter.From != nil && event.RecurrenceRule == nil && event.Date < *filter.From {
		return false
	}
	if filter.DepartmentID != nil && !slices.Contains(event.Departments, *filter.DepartmentID) {
		return false
	}
	return true
}

// --- DepartmentRepository implementation ---

// CreateDepartment stores a new department.
func (s *Storage) CreateDepartment(ctx context.Context, department persistence.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[department.ID]; ok {
		return fmt.Errorf("memory: department %s: %w", department.ID, persistence.ErrDuplicate)
	}
	for _, existing := range s.departments {
		if department.Code != "" && existing.Code == department.Code {
			return fmt.Errorf("memory: department code %s: %w", department.Code, persistence.ErrDuplicate)
		}
	}
	s.departments[department.ID] = department
	return nil
}

// GetDepartment retrieves a department by ID.
func (s *Storage) GetDepartment(ctx context.Context, id string) (persistence.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	department, ok := s.departments[id]
	if !ok {
		return persistence.Department{}, persistence.ErrNotFound
	}
	return department, nil
}

// ListDepartments returns all departments ordered by name then ID.
func (s *Storage) ListDepartments(ctx context.Context) ([]persistence.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	departments := make([]persistence.Department, 0, len(s.departments))
	for _, department := range s.departments {
		departments = append(departments, department)
	}
	sort.Slice(departments, func(i, j int) bool {
		if departments[i].Name == departments[j].Name {
			return departments[i].ID < departments[j].ID
		}
		return departments[i].Name < departments[j].Name
	})
	return departments, nil
}

// DeleteDepartment removes a department and clears it from meetings and calendar entries.
func (s *Storage) DeleteDepartment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.departments, id)

	for meetingID, meeting := range s.meetings {
		kept := slices.DeleteFunc(slices.Clone(meeting.Departments), func(d persistence.MeetingDepartment) bool {
			return d.DepartmentID == id
		})
		if len(kept) != len(meeting.Departments) {
			meeting.Departments = kept
			s.meetings[meetingID] = meeting
		}
	}
	for eventID, event := range s.events {
		kept := slices.DeleteFunc(slices.Clone(event.Departments), func(d string) bool { return d == id })
		if len(kept) != len(event.Departments) {
			event.Departments = kept
			s.events[eventID] = event
		}
	}
	return nil
}

// --- PersonRepository implementation ---

// CreatePerson stores a new person.
func (s *Storage) CreatePerson(ctx context.Context, person persistence.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.people[person.ID]; ok {
		return fmt.Errorf("memory: person %s: %w", person.ID, persistence.ErrDuplicate)
	}
	s.people[person.ID] = clonePerson(person)
	return nil
}

// GetPerson retrieves a person by ID.
func (s *Storage) GetPerson(ctx context.Context, id string) (persistence.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	person, ok := s.people[id]
	if !ok {
		return persistence.Person{}, persistence.ErrNotFound
	}
	return clonePerson(person), nil
}

// ListPeople returns all people ordered by name then ID.
func (s *Storage) ListPeople(ctx context.Context) ([]persistence.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	people := make([]persistence.Person, 0, len(s.people))
	for _, person := range s.people {
		people = append(people, clonePerson(person))
	}
	sort.Slice(people, func(i, j int) bool {
		if people[i].Name == people[j].Name {
			return people[i].ID < people[j].ID
		}
		return people[i].Name < people[j].Name
	})
	return people, nil
}

func cloneRecord(record persistence.DelegationRecord) persistence.DelegationRecord {
	record.ParentID = cloneString(record.ParentID)
	record.Highlights = slices.Clone(record.Highlights)
	if record.Response != nil {
		response := *record.Response
		record.Response = &response
	}
	return record
}

func cloneMeeting(meeting persistence.Meeting) persistence.Meeting {
	meeting.MeetingLink = cloneString(meeting.MeetingLink)
	meeting.Location = cloneString(meeting.Location)
	meeting.Departments = slices.Clone(meeting.Departments)
	return meeting
}

func cloneEvent(event persistence.CalendarEvent) persistence.CalendarEvent {
	event.Departments = slices.Clone(event.Departments)
	event.StartSeconds = cloneInt(event.StartSeconds)
	event.EndSeconds = cloneInt(event.EndSeconds)
	event.RecurrenceRule = cloneString(event.RecurrenceRule)
	return event
}

func clonePerson(person persistence.Person) persistence.Person {
	person.DepartmentID = cloneString(person.DepartmentID)
	return person
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
